package repositories

import (
	"context"
	"fmt"
	"log"

	"github.com/journeymate/backend/internal/authz"
	"github.com/journeymate/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store bundles the repositories that share one *gorm.DB handle. Inside Transaction
// every repository is bound to the same transaction.
type Store struct {
	db *gorm.DB

	Users         UserRepository
	Trips         TripPostRepository
	Images        TripImageRepository
	JoinRequests  JoinRequestRepository
	Feedback      FeedbackRepository
	SavedPosts    SavedPostRepository
	Messages      MessageRepository
	Notifications NotificationRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		Users:         NewPostgresUserRepository(db),
		Trips:         NewPostgresTripPostRepository(db),
		Images:        NewPostgresTripImageRepository(db),
		JoinRequests:  NewPostgresJoinRequestRepository(db),
		Feedback:      NewPostgresFeedbackRepository(db),
		SavedPosts:    NewPostgresSavedPostRepository(db),
		Messages:      NewPostgresMessageRepository(db),
		Notifications: NewPostgresNotificationRepository(db),
	}
}

// Transaction runs fn with a Store bound to a single transaction. Returning an error rolls back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// Migrate creates or updates the schema and seeds the fixed role vocabulary.
func Migrate(ctx context.Context, db *gorm.DB) error {
	err := db.WithContext(ctx).AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.TripPost{},
		&models.TripImage{},
		&models.JoinRequest{},
		&models.TripFeedback{},
		&models.SavedPost{},
		&models.Message{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, name := range []string{authz.RoleUser, authz.RoleAdmin} {
		role := models.Role{Name: name}
		if err := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&role).Error; err != nil {
			return fmt.Errorf("seed role %s: %w", name, err)
		}
	}

	log.Println("Database auto-migrations completed for all models.")
	return nil
}
