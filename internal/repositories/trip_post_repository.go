package repositories

import (
	"context"
	"time"

	"github.com/journeymate/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TripPostRepository defines the interface for trip post data operations.
// Deleted posts are invisible to every read.
type TripPostRepository interface {
	CreateTripPost(ctx context.Context, post *models.TripPost) error
	GetByUID(ctx context.Context, uid string) (*models.TripPost, error)
	ListActive(ctx context.Context, today time.Time) ([]models.TripPost, error)
	ListByOwner(ctx context.Context, userID uint) ([]models.TripPost, error)
	UpdateTripPost(ctx context.Context, post *models.TripPost) error
	SoftDelete(ctx context.Context, id uint) error
}

type PostgresTripPostRepository struct {
	db *gorm.DB
}

func NewPostgresTripPostRepository(db *gorm.DB) *PostgresTripPostRepository {
	return &PostgresTripPostRepository{db: db}
}

func (r *PostgresTripPostRepository) visible(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("User").Where("trip_posts.deleted = ?", false)
}

// CreateTripPost inserts the post row only; images are stored through TripImageRepository.
func (r *PostgresTripPostRepository) CreateTripPost(ctx context.Context, post *models.TripPost) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error
}

// GetByUID loads the post with its creator and images in insertion order.
func (r *PostgresTripPostRepository) GetByUID(ctx context.Context, uid string) (*models.TripPost, error) {
	var post models.TripPost
	err := r.visible(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("trip_images.id") }).
		Where("trip_posts.uid = ?", uid).
		First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// ListActive returns posts whose expiry date is today or later.
func (r *PostgresTripPostRepository) ListActive(ctx context.Context, today time.Time) ([]models.TripPost, error) {
	var posts []models.TripPost
	err := r.visible(ctx).
		Where("trip_posts.post_expire_date >= ?", today).
		Order("trip_posts.id DESC").
		Find(&posts).Error
	return posts, err
}

func (r *PostgresTripPostRepository) ListByOwner(ctx context.Context, userID uint) ([]models.TripPost, error) {
	var posts []models.TripPost
	err := r.visible(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("trip_images.id") }).
		Where("trip_posts.user_id = ?", userID).
		Order("trip_posts.id DESC").
		Find(&posts).Error
	return posts, err
}

func (r *PostgresTripPostRepository) UpdateTripPost(ctx context.Context, post *models.TripPost) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(post).Error
}

func (r *PostgresTripPostRepository) SoftDelete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&models.TripPost{}).
		Where("id = ? AND deleted = ?", id, false).
		Update("deleted", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
