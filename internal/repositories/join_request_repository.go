package repositories

import (
	"context"

	"github.com/journeymate/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// JoinRequestRepository defines the interface for join request operations
type JoinRequestRepository interface {
	CreateJoinRequest(ctx context.Context, req *models.JoinRequest) error
	GetByUID(ctx context.Context, uid string) (*models.JoinRequest, error)
	List(ctx context.Context) ([]models.JoinRequest, error)
	ListByTrip(ctx context.Context, tripPostID uint) ([]models.JoinRequest, error)
	ListByUser(ctx context.Context, userID uint) ([]models.JoinRequest, error)
	UpdateJoinRequest(ctx context.Context, req *models.JoinRequest) error
	SoftDelete(ctx context.Context, id uint) error
	SoftDeleteByTrip(ctx context.Context, tripPostID uint) error
}

type PostgresJoinRequestRepository struct {
	db *gorm.DB
}

func NewPostgresJoinRequestRepository(db *gorm.DB) *PostgresJoinRequestRepository {
	return &PostgresJoinRequestRepository{db: db}
}

func (r *PostgresJoinRequestRepository) visible(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("TripPost").
		Preload("User").
		Where("join_requests.deleted = ?", false)
}

func (r *PostgresJoinRequestRepository) CreateJoinRequest(ctx context.Context, req *models.JoinRequest) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(req).Error
}

func (r *PostgresJoinRequestRepository) GetByUID(ctx context.Context, uid string) (*models.JoinRequest, error) {
	var req models.JoinRequest
	if err := r.visible(ctx).Where("join_requests.uid = ?", uid).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *PostgresJoinRequestRepository) List(ctx context.Context) ([]models.JoinRequest, error) {
	var reqs []models.JoinRequest
	err := r.visible(ctx).Order("join_requests.id").Find(&reqs).Error
	return reqs, err
}

func (r *PostgresJoinRequestRepository) ListByTrip(ctx context.Context, tripPostID uint) ([]models.JoinRequest, error) {
	var reqs []models.JoinRequest
	err := r.visible(ctx).Where("join_requests.trip_post_id = ?", tripPostID).Order("join_requests.id").Find(&reqs).Error
	return reqs, err
}

func (r *PostgresJoinRequestRepository) ListByUser(ctx context.Context, userID uint) ([]models.JoinRequest, error) {
	var reqs []models.JoinRequest
	err := r.visible(ctx).Where("join_requests.user_id = ?", userID).Order("join_requests.id").Find(&reqs).Error
	return reqs, err
}

func (r *PostgresJoinRequestRepository) UpdateJoinRequest(ctx context.Context, req *models.JoinRequest) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(req).Error
}

func (r *PostgresJoinRequestRepository) SoftDelete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&models.JoinRequest{}).
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

func (r *PostgresJoinRequestRepository) SoftDeleteByTrip(ctx context.Context, tripPostID uint) error {
	return r.db.WithContext(ctx).Model(&models.JoinRequest{}).
		Where("trip_post_id = ? AND deleted = ?", tripPostID, false).
		Update("deleted", true).Error
}
