package services

import (
	"context"
	"fmt"

	"github.com/journeymate/backend/internal/authz"
	"github.com/journeymate/backend/internal/models"
	"github.com/journeymate/backend/internal/repositories"
)

type NotificationService struct {
	store *repositories.Store
}

func NewNotificationService(store *repositories.Store) *NotificationService {
	return &NotificationService{store: store}
}

func (s *NotificationService) notification(ctx context.Context, store *repositories.Store, id uint) (*models.Notification, error) {
	n, err := store.Notifications.GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "notification %d not found", id)
	}
	return n, nil
}

// recipient resolves userUID and checks the caller may read that user's notifications.
func (s *NotificationService) recipient(ctx context.Context, caller authz.Caller, userUID string) (*models.User, error) {
	user, err := activeUser(ctx, s.store, userUID)
	if err != nil {
		return nil, err
	}
	if err := authz.SelfOrAdmin(caller, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// Create lets an admin push a notification to any user.
func (s *NotificationService) Create(ctx context.Context, caller authz.Caller, req models.CreateNotificationRequest) (*models.NotificationView, error) {
	if err := authz.RequireAdmin(caller); err != nil {
		return nil, err
	}

	var created *models.Notification
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		user, err := activeUser(ctx, tx, req.UserUID)
		if err != nil {
			return err
		}
		n := &models.Notification{UserID: user.ID, Message: req.Message}
		if err := tx.Notifications.CreateNotification(ctx, n); err != nil {
			return fmt.Errorf("create notification: %w", err)
		}
		created, err = s.notification(ctx, tx, n.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	view := models.NewNotificationView(created)
	return &view, nil
}

func (s *NotificationService) ListAll(ctx context.Context, caller authz.Caller) ([]models.NotificationView, error) {
	if err := authz.RequireAdmin(caller); err != nil {
		return nil, err
	}
	ns, err := s.store.Notifications.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return models.NewNotificationViews(ns), nil
}

func (s *NotificationService) Get(ctx context.Context, caller authz.Caller, id uint) (*models.NotificationView, error) {
	n, err := s.notification(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if err := authz.OwnerOrAdmin(caller, n.UserID); err != nil {
		return nil, err
	}
	view := models.NewNotificationView(n)
	return &view, nil
}

// ListByUser returns one page of notifications, newest first, and the total count.
func (s *NotificationService) ListByUser(ctx context.Context, caller authz.Caller, userUID string, page, limit int) ([]models.NotificationView, int64, error) {
	user, err := s.recipient(ctx, caller, userUID)
	if err != nil {
		return nil, 0, err
	}
	ns, total, err := s.store.Notifications.GetByUserID(ctx, user.ID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	return models.NewNotificationViews(ns), total, nil
}

func (s *NotificationService) ListUnreadByUser(ctx context.Context, caller authz.Caller, userUID string) ([]models.NotificationView, error) {
	user, err := s.recipient(ctx, caller, userUID)
	if err != nil {
		return nil, err
	}
	ns, err := s.store.Notifications.GetUnreadByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list unread notifications: %w", err)
	}
	return models.NewNotificationViews(ns), nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, caller authz.Caller, userUID string) (int64, error) {
	user, err := s.recipient(ctx, caller, userUID)
	if err != nil {
		return 0, err
	}
	count, err := s.store.Notifications.GetUnreadCount(ctx, user.ID)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, caller authz.Caller, id uint) error {
	return s.store.Transaction(ctx, func(tx *repositories.Store) error {
		n, err := s.notification(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := authz.OwnerOrAdmin(caller, n.UserID); err != nil {
			return err
		}
		if err := tx.Notifications.MarkAsRead(ctx, n.ID); err != nil {
			return lookup(err, "notification %d not found", id)
		}
		return nil
	})
}

// MarkAllRead returns how many notifications changed state.
func (s *NotificationService) MarkAllRead(ctx context.Context, caller authz.Caller, userUID string) (int64, error) {
	user, err := s.recipient(ctx, caller, userUID)
	if err != nil {
		return 0, err
	}
	n, err := s.store.Notifications.MarkAllAsRead(ctx, user.ID)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, caller authz.Caller, id uint) error {
	return s.store.Transaction(ctx, func(tx *repositories.Store) error {
		n, err := s.notification(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := authz.OwnerOrAdmin(caller, n.UserID); err != nil {
			return err
		}
		if err := tx.Notifications.DeleteNotification(ctx, n.ID); err != nil {
			return lookup(err, "notification %d not found", id)
		}
		return nil
	})
}
