package repositories

import (
	"context"

	"github.com/journeymate/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FeedbackRepository defines the interface for trip feedback operations
type FeedbackRepository interface {
	CreateFeedback(ctx context.Context, fb *models.TripFeedback) error
	GetByID(ctx context.Context, id uint) (*models.TripFeedback, error)
	List(ctx context.Context) ([]models.TripFeedback, error)
	ListByTrip(ctx context.Context, tripPostID uint) ([]models.TripFeedback, error)
	ListByGiver(ctx context.Context, userID uint) ([]models.TripFeedback, error)
	ListByReceiver(ctx context.Context, userID uint) ([]models.TripFeedback, error)
	UpdateFeedback(ctx context.Context, fb *models.TripFeedback) error
	DeleteFeedback(ctx context.Context, id uint) error
	DeleteByTrip(ctx context.Context, tripPostID uint) error
	// Ratings aggregates SUM and COUNT of ratings per post, keyed by post id.
	Ratings(ctx context.Context, tripPostIDs []uint) (map[uint]models.TripRating, error)
}

type PostgresFeedbackRepository struct {
	db *gorm.DB
}

func NewPostgresFeedbackRepository(db *gorm.DB) *PostgresFeedbackRepository {
	return &PostgresFeedbackRepository{db: db}
}

func (r *PostgresFeedbackRepository) withParties(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("TripPost").Preload("FromUser").Preload("ToUser")
}

func (r *PostgresFeedbackRepository) CreateFeedback(ctx context.Context, fb *models.TripFeedback) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(fb).Error
}

func (r *PostgresFeedbackRepository) GetByID(ctx context.Context, id uint) (*models.TripFeedback, error) {
	var fb models.TripFeedback
	if err := r.withParties(ctx).First(&fb, id).Error; err != nil {
		return nil, err
	}
	return &fb, nil
}

func (r *PostgresFeedbackRepository) List(ctx context.Context) ([]models.TripFeedback, error) {
	var fbs []models.TripFeedback
	err := r.withParties(ctx).Order("id").Find(&fbs).Error
	return fbs, err
}

func (r *PostgresFeedbackRepository) ListByTrip(ctx context.Context, tripPostID uint) ([]models.TripFeedback, error) {
	var fbs []models.TripFeedback
	err := r.withParties(ctx).Where("trip_post_id = ?", tripPostID).Order("id").Find(&fbs).Error
	return fbs, err
}

func (r *PostgresFeedbackRepository) ListByGiver(ctx context.Context, userID uint) ([]models.TripFeedback, error) {
	var fbs []models.TripFeedback
	err := r.withParties(ctx).Where("from_user_id = ?", userID).Order("id").Find(&fbs).Error
	return fbs, err
}

func (r *PostgresFeedbackRepository) ListByReceiver(ctx context.Context, userID uint) ([]models.TripFeedback, error) {
	var fbs []models.TripFeedback
	err := r.withParties(ctx).Where("to_user_id = ?", userID).Order("id").Find(&fbs).Error
	return fbs, err
}

func (r *PostgresFeedbackRepository) UpdateFeedback(ctx context.Context, fb *models.TripFeedback) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(fb).Error
}

func (r *PostgresFeedbackRepository) DeleteFeedback(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.TripFeedback{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PostgresFeedbackRepository) DeleteByTrip(ctx context.Context, tripPostID uint) error {
	return r.db.WithContext(ctx).Where("trip_post_id = ?", tripPostID).Delete(&models.TripFeedback{}).Error
}

func (r *PostgresFeedbackRepository) Ratings(ctx context.Context, tripPostIDs []uint) (map[uint]models.TripRating, error) {
	result := make(map[uint]models.TripRating)
	if len(tripPostIDs) == 0 {
		return result, nil
	}

	var rows []models.TripRating
	err := r.db.WithContext(ctx).Model(&models.TripFeedback{}).
		Select("trip_post_id, SUM(rating) AS total, COUNT(*) AS count").
		Where("trip_post_id IN ?", tripPostIDs).
		Group("trip_post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.TripPostID] = row
	}
	return result, nil
}
