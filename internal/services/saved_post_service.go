package services

import (
	"context"
	"fmt"

	"github.com/journeymate/backend/internal/apperrors"
	"github.com/journeymate/backend/internal/authz"
	"github.com/journeymate/backend/internal/models"
	"github.com/journeymate/backend/internal/repositories"
)

type SavedPostService struct {
	store *repositories.Store
}

func NewSavedPostService(store *repositories.Store) *SavedPostService {
	return &SavedPostService{store: store}
}

// Save bookmarks a trip post for the caller.
func (s *SavedPostService) Save(ctx context.Context, caller authz.Caller, tripUID string) (*models.SavedPostView, error) {
	var saved *models.SavedPost
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		post, err := tripPost(ctx, tx, tripUID)
		if err != nil {
			return err
		}

		exists, err := tx.SavedPosts.IsPostSaved(ctx, caller.ID, post.ID)
		if err != nil {
			return fmt.Errorf("check saved post: %w", err)
		}
		if exists {
			return apperrors.Duplicate("post already saved by user")
		}

		sp := &models.SavedPost{UserID: caller.ID, TripPostID: post.ID}
		if err := tx.SavedPosts.SavePost(ctx, sp); err != nil {
			if isDuplicate(err) {
				return apperrors.Duplicate("post already saved by user")
			}
			return fmt.Errorf("save post: %w", err)
		}
		if saved, err = tx.SavedPosts.GetByID(ctx, sp.ID); err != nil {
			return fmt.Errorf("load saved post: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	view := models.NewSavedPostView(saved)
	return &view, nil
}

// Unsave removes the bookmark of userUID on tripUID.
func (s *SavedPostService) Unsave(ctx context.Context, caller authz.Caller, userUID, tripUID string) error {
	return s.store.Transaction(ctx, func(tx *repositories.Store) error {
		user, err := activeUser(ctx, tx, userUID)
		if err != nil {
			return err
		}
		if err := authz.SelfOrAdmin(caller, user.ID); err != nil {
			return err
		}
		post, err := tripPost(ctx, tx, tripUID)
		if err != nil {
			return err
		}
		if err := tx.SavedPosts.UnsavePost(ctx, user.ID, post.ID); err != nil {
			return lookup(err, "post %s is not saved", tripUID)
		}
		return nil
	})
}

func (s *SavedPostService) IsSaved(ctx context.Context, caller authz.Caller, userUID, tripUID string) (bool, error) {
	user, err := activeUser(ctx, s.store, userUID)
	if err != nil {
		return false, err
	}
	if err := authz.SelfOrAdmin(caller, user.ID); err != nil {
		return false, err
	}
	post, err := tripPost(ctx, s.store, tripUID)
	if err != nil {
		return false, err
	}
	saved, err := s.store.SavedPosts.IsPostSaved(ctx, user.ID, post.ID)
	if err != nil {
		return false, fmt.Errorf("check saved post: %w", err)
	}
	return saved, nil
}

func (s *SavedPostService) ListByUser(ctx context.Context, caller authz.Caller, userUID string) ([]models.SavedPostView, error) {
	user, err := activeUser(ctx, s.store, userUID)
	if err != nil {
		return nil, err
	}
	if err := authz.SelfOrAdmin(caller, user.ID); err != nil {
		return nil, err
	}
	saved, err := s.store.SavedPosts.GetSavedPostsByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list saved posts: %w", err)
	}
	return models.NewSavedPostViews(saved), nil
}

func (s *SavedPostService) ListByTrip(ctx context.Context, caller authz.Caller, tripUID string) ([]models.SavedPostView, error) {
	post, err := tripPost(ctx, s.store, tripUID)
	if err != nil {
		return nil, err
	}
	if err := authz.OwnerOrAdmin(caller, post.UserID); err != nil {
		return nil, err
	}
	saved, err := s.store.SavedPosts.GetSavedPostsByTrip(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("list saved posts: %w", err)
	}
	return models.NewSavedPostViews(saved), nil
}

func (s *SavedPostService) ListAll(ctx context.Context, caller authz.Caller) ([]models.SavedPostView, error) {
	if err := authz.RequireAdmin(caller); err != nil {
		return nil, err
	}
	saved, err := s.store.SavedPosts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list saved posts: %w", err)
	}
	return models.NewSavedPostViews(saved), nil
}
