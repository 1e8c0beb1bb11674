// Package services implements the use cases behind the HTTP API. Each mutating method runs
// its reads, authorization check and writes inside one transaction.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/journeymate/backend/internal/apperrors"
	"github.com/journeymate/backend/internal/models"
	"github.com/journeymate/backend/internal/repositories"
	"github.com/journeymate/backend/pkg/filestore"
	"github.com/labstack/gommon/log"
	"gorm.io/gorm"
)

// lookup turns a missing row into NotFound and anything else into a wrapped error.
func lookup(err error, format string, args ...any) error {
	if isNotFound(err) {
		return apperrors.NotFound(format, args...)
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// isDuplicate reports a unique index violation that slipped past the pre-check.
func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func activeUser(ctx context.Context, store *repositories.Store, uid string) (*models.User, error) {
	user, err := store.Users.GetActiveByUID(ctx, uid)
	if err != nil {
		return nil, lookup(err, "user %s not found", uid)
	}
	return user, nil
}

func tripPost(ctx context.Context, store *repositories.Store, uid string) (*models.TripPost, error) {
	post, err := store.Trips.GetByUID(ctx, uid)
	if err != nil {
		return nil, lookup(err, "trip post %s not found", uid)
	}
	return post, nil
}

// notify stores a notification for userID inside the caller's transaction.
func notify(ctx context.Context, tx *repositories.Store, userID uint, message string) error {
	if err := tx.Notifications.CreateNotification(ctx, &models.Notification{UserID: userID, Message: message}); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// stageAll stages every upload; on failure the ones already staged are discarded.
func stageAll(files *filestore.Store, uploads []filestore.Upload) ([]string, error) {
	names := make([]string, 0, len(uploads))
	for _, u := range uploads {
		name, err := files.Stage(u)
		if err != nil {
			files.Discard(names...)
			return nil, apperrors.Internal("failed to store uploaded file", err)
		}
		names = append(names, name)
	}
	return names, nil
}

// promoteAll runs after commit. A failed move leaves a row without a file, which reads as
// an empty image, so it is logged rather than returned.
func promoteAll(files *filestore.Store, names []string) {
	for _, name := range names {
		if err := files.Promote(name); err != nil {
			log.Errorf("filestore: promote %s: %v", name, err)
		}
	}
}

func removeAll(files *filestore.Store, names []string) {
	for _, name := range names {
		if err := files.Remove(name); err != nil {
			log.Warnf("filestore: remove %s: %v", name, err)
		}
	}
}
