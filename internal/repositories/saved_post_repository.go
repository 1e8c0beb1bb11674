package repositories

import (
	"context"

	"github.com/journeymate/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SavedPostRepository defines the interface for saved post operations
type SavedPostRepository interface {
	SavePost(ctx context.Context, savedPost *models.SavedPost) error
	UnsavePost(ctx context.Context, userID, tripPostID uint) error
	IsPostSaved(ctx context.Context, userID, tripPostID uint) (bool, error)
	GetByID(ctx context.Context, id uint) (*models.SavedPost, error)
	List(ctx context.Context) ([]models.SavedPost, error)
	GetSavedPostsByUser(ctx context.Context, userID uint) ([]models.SavedPost, error)
	GetSavedPostsByTrip(ctx context.Context, tripPostID uint) ([]models.SavedPost, error)
	DeleteByTrip(ctx context.Context, tripPostID uint) error
}

// PostgresSavedPostRepository implements SavedPostRepository
type PostgresSavedPostRepository struct {
	db *gorm.DB
}

func NewPostgresSavedPostRepository(db *gorm.DB) *PostgresSavedPostRepository {
	return &PostgresSavedPostRepository{db: db}
}

func (r *PostgresSavedPostRepository) withRefs(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("User").Preload("TripPost")
}

func (r *PostgresSavedPostRepository) SavePost(ctx context.Context, savedPost *models.SavedPost) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(savedPost).Error
}

func (r *PostgresSavedPostRepository) UnsavePost(ctx context.Context, userID, tripPostID uint) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND trip_post_id = ?", userID, tripPostID).
		Delete(&models.SavedPost{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PostgresSavedPostRepository) IsPostSaved(ctx context.Context, userID, tripPostID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SavedPost{}).
		Where("user_id = ? AND trip_post_id = ?", userID, tripPostID).
		Count(&count).Error
	return count > 0, err
}

func (r *PostgresSavedPostRepository) GetByID(ctx context.Context, id uint) (*models.SavedPost, error) {
	var saved models.SavedPost
	if err := r.withRefs(ctx).First(&saved, id).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *PostgresSavedPostRepository) List(ctx context.Context) ([]models.SavedPost, error) {
	var saved []models.SavedPost
	err := r.withRefs(ctx).Order("saved_at DESC, id DESC").Find(&saved).Error
	return saved, err
}

func (r *PostgresSavedPostRepository) GetSavedPostsByUser(ctx context.Context, userID uint) ([]models.SavedPost, error) {
	var saved []models.SavedPost
	err := r.withRefs(ctx).Where("user_id = ?", userID).Order("saved_at DESC, id DESC").Find(&saved).Error
	return saved, err
}

func (r *PostgresSavedPostRepository) GetSavedPostsByTrip(ctx context.Context, tripPostID uint) ([]models.SavedPost, error) {
	var saved []models.SavedPost
	err := r.withRefs(ctx).Where("trip_post_id = ?", tripPostID).Order("saved_at DESC, id DESC").Find(&saved).Error
	return saved, err
}

func (r *PostgresSavedPostRepository) DeleteByTrip(ctx context.Context, tripPostID uint) error {
	return r.db.WithContext(ctx).Where("trip_post_id = ?", tripPostID).Delete(&models.SavedPost{}).Error
}
