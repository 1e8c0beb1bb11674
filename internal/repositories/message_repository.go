package repositories

import (
	"context"

	"github.com/journeymate/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MessageRepository stores direct messages. Listings are in insertion order.
type MessageRepository interface {
	CreateMessage(ctx context.Context, msg *models.Message) error
	GetByID(ctx context.Context, id uint) (*models.Message, error)
	List(ctx context.Context) ([]models.Message, error)
	ListBySender(ctx context.Context, userID uint) ([]models.Message, error)
	ListByReceiver(ctx context.Context, userID uint) ([]models.Message, error)
	ListBetween(ctx context.Context, userA, userB uint) ([]models.Message, error)
	DeleteMessage(ctx context.Context, id uint) error
}

type PostgresMessageRepository struct {
	db *gorm.DB
}

func NewPostgresMessageRepository(db *gorm.DB) *PostgresMessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) withParties(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Sender").Preload("Receiver")
}

func (r *PostgresMessageRepository) CreateMessage(ctx context.Context, msg *models.Message) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(msg).Error
}

func (r *PostgresMessageRepository) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	var msg models.Message
	if err := r.withParties(ctx).First(&msg, id).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *PostgresMessageRepository) List(ctx context.Context) ([]models.Message, error) {
	var msgs []models.Message
	err := r.withParties(ctx).Order("id").Find(&msgs).Error
	return msgs, err
}

func (r *PostgresMessageRepository) ListBySender(ctx context.Context, userID uint) ([]models.Message, error) {
	var msgs []models.Message
	err := r.withParties(ctx).Where("sender_id = ?", userID).Order("id").Find(&msgs).Error
	return msgs, err
}

func (r *PostgresMessageRepository) ListByReceiver(ctx context.Context, userID uint) ([]models.Message, error) {
	var msgs []models.Message
	err := r.withParties(ctx).Where("receiver_id = ?", userID).Order("id").Find(&msgs).Error
	return msgs, err
}

// ListBetween returns the conversation between two users in both directions.
func (r *PostgresMessageRepository) ListBetween(ctx context.Context, userA, userB uint) ([]models.Message, error) {
	var msgs []models.Message
	err := r.withParties(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", userA, userB, userB, userA).
		Order("id").
		Find(&msgs).Error
	return msgs, err
}

func (r *PostgresMessageRepository) DeleteMessage(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Message{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
