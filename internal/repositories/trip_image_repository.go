package repositories

import (
	"context"

	"github.com/journeymate/backend/internal/models"
	"gorm.io/gorm"
)

type TripImageRepository interface {
	CreateImages(ctx context.Context, images []models.TripImage) error
	ListByTrip(ctx context.Context, tripPostID uint) ([]models.TripImage, error)
	// FirstImages returns the lowest-id image of each post, keyed by post id.
	FirstImages(ctx context.Context, tripPostIDs []uint) (map[uint]models.TripImage, error)
	// DeleteByTrip removes the rows and returns them so the caller can remove the files.
	DeleteByTrip(ctx context.Context, tripPostID uint) ([]models.TripImage, error)
}

type PostgresTripImageRepository struct {
	db *gorm.DB
}

func NewPostgresTripImageRepository(db *gorm.DB) *PostgresTripImageRepository {
	return &PostgresTripImageRepository{db: db}
}

func (r *PostgresTripImageRepository) CreateImages(ctx context.Context, images []models.TripImage) error {
	if len(images) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&images).Error
}

func (r *PostgresTripImageRepository) ListByTrip(ctx context.Context, tripPostID uint) ([]models.TripImage, error) {
	var images []models.TripImage
	err := r.db.WithContext(ctx).Where("trip_post_id = ?", tripPostID).Order("id").Find(&images).Error
	return images, err
}

func (r *PostgresTripImageRepository) FirstImages(ctx context.Context, tripPostIDs []uint) (map[uint]models.TripImage, error) {
	result := make(map[uint]models.TripImage)
	if len(tripPostIDs) == 0 {
		return result, nil
	}

	firstIDs := r.db.WithContext(ctx).Model(&models.TripImage{}).
		Select("MIN(id)").
		Where("trip_post_id IN ?", tripPostIDs).
		Group("trip_post_id")

	var images []models.TripImage
	if err := r.db.WithContext(ctx).Where("id IN (?)", firstIDs).Find(&images).Error; err != nil {
		return nil, err
	}
	for _, img := range images {
		result[img.TripPostID] = img
	}
	return result, nil
}

func (r *PostgresTripImageRepository) DeleteByTrip(ctx context.Context, tripPostID uint) ([]models.TripImage, error) {
	images, err := r.ListByTrip(ctx, tripPostID)
	if err != nil || len(images) == 0 {
		return images, err
	}
	if err := r.db.WithContext(ctx).Where("trip_post_id = ?", tripPostID).Delete(&models.TripImage{}).Error; err != nil {
		return nil, err
	}
	return images, nil
}
