package services

import (
	"context"
	"fmt"

	"github.com/journeymate/backend/internal/apperrors"
	"github.com/journeymate/backend/internal/authz"
	"github.com/journeymate/backend/internal/events"
	"github.com/journeymate/backend/internal/models"
	"github.com/journeymate/backend/internal/repositories"
)

type FeedbackService struct {
	store  *repositories.Store
	events *events.Recorder
}

func NewFeedbackService(store *repositories.Store, recorder *events.Recorder) *FeedbackService {
	return &FeedbackService{store: store, events: recorder}
}

func validateRating(rating int) error {
	if rating < models.MinRating || rating > models.MaxRating {
		return apperrors.Validation("rating must be between %d and %d", models.MinRating, models.MaxRating)
	}
	return nil
}

func (s *FeedbackService) feedback(ctx context.Context, store *repositories.Store, id uint) (*models.TripFeedback, error) {
	fb, err := store.Feedback.GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "feedback %d not found", id)
	}
	return fb, nil
}

// Create records the caller's rating of another participant on a trip.
func (s *FeedbackService) Create(ctx context.Context, caller authz.Caller, req models.CreateFeedbackRequest) (*models.FeedbackView, error) {
	if err := validateRating(req.Rating); err != nil {
		return nil, err
	}

	var created *models.TripFeedback
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		post, err := tripPost(ctx, tx, req.TripPostUID)
		if err != nil {
			return err
		}
		receiver, err := activeUser(ctx, tx, req.ToUserUID)
		if err != nil {
			return err
		}

		fb := &models.TripFeedback{
			TripPostID: post.ID,
			FromUserID: caller.ID,
			ToUserID:   receiver.ID,
			Rating:     req.Rating,
			Comment:    req.Comment,
		}
		if err := tx.Feedback.CreateFeedback(ctx, fb); err != nil {
			return fmt.Errorf("create feedback: %w", err)
		}
		if receiver.ID != caller.ID {
			msg := fmt.Sprintf("%s rated you %d/%d for %q", caller.Username, req.Rating, models.MaxRating, post.Title)
			if err := notify(ctx, tx, receiver.ID, msg); err != nil {
				return err
			}
		}

		created, err = s.feedback(ctx, tx, fb.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.events.Record(ctx, events.Event{Type: events.FeedbackCreated, ActorUID: caller.UID, SubjectUID: req.TripPostUID,
		Payload: map[string]any{"rating": req.Rating, "to_user_uid": req.ToUserUID}})
	view := models.NewFeedbackView(created)
	return &view, nil
}

func (s *FeedbackService) Update(ctx context.Context, caller authz.Caller, id uint, req models.UpdateFeedbackRequest) (*models.FeedbackView, error) {
	if req.Rating != nil {
		if err := validateRating(*req.Rating); err != nil {
			return nil, err
		}
	}

	var updated *models.TripFeedback
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		fb, err := s.feedback(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := authz.OwnerOrAdmin(caller, fb.FromUserID); err != nil {
			return err
		}

		if req.Rating != nil {
			fb.Rating = *req.Rating
		}
		if req.Comment != nil {
			fb.Comment = *req.Comment
		}
		if err := tx.Feedback.UpdateFeedback(ctx, fb); err != nil {
			return fmt.Errorf("update feedback: %w", err)
		}
		updated = fb
		return nil
	})
	if err != nil {
		return nil, err
	}
	view := models.NewFeedbackView(updated)
	return &view, nil
}

func (s *FeedbackService) Get(ctx context.Context, caller authz.Caller, id uint) (*models.FeedbackView, error) {
	fb, err := s.feedback(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if err := authz.AnyOf(caller, fb.FromUserID, fb.ToUserID); err != nil {
		return nil, err
	}
	view := models.NewFeedbackView(fb)
	return &view, nil
}

func (s *FeedbackService) ListAll(ctx context.Context, caller authz.Caller) ([]models.FeedbackView, error) {
	if err := authz.RequireAdmin(caller); err != nil {
		return nil, err
	}
	fbs, err := s.store.Feedback.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return models.NewFeedbackViews(fbs), nil
}

// ListByTrip is open to any authenticated user.
func (s *FeedbackService) ListByTrip(ctx context.Context, tripUID string) ([]models.FeedbackView, error) {
	post, err := tripPost(ctx, s.store, tripUID)
	if err != nil {
		return nil, err
	}
	fbs, err := s.store.Feedback.ListByTrip(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return models.NewFeedbackViews(fbs), nil
}

func (s *FeedbackService) ListByGiver(ctx context.Context, caller authz.Caller, userUID string) ([]models.FeedbackView, error) {
	user, err := activeUser(ctx, s.store, userUID)
	if err != nil {
		return nil, err
	}
	if err := authz.SelfOrAdmin(caller, user.ID); err != nil {
		return nil, err
	}
	fbs, err := s.store.Feedback.ListByGiver(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return models.NewFeedbackViews(fbs), nil
}

func (s *FeedbackService) ListByReceiver(ctx context.Context, caller authz.Caller, userUID string) ([]models.FeedbackView, error) {
	user, err := activeUser(ctx, s.store, userUID)
	if err != nil {
		return nil, err
	}
	if err := authz.SelfOrAdmin(caller, user.ID); err != nil {
		return nil, err
	}
	fbs, err := s.store.Feedback.ListByReceiver(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return models.NewFeedbackViews(fbs), nil
}

func (s *FeedbackService) Delete(ctx context.Context, caller authz.Caller, id uint) error {
	return s.store.Transaction(ctx, func(tx *repositories.Store) error {
		fb, err := s.feedback(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := authz.OwnerOrAdmin(caller, fb.FromUserID); err != nil {
			return err
		}
		if err := tx.Feedback.DeleteFeedback(ctx, fb.ID); err != nil {
			return lookup(err, "feedback %d not found", id)
		}
		return nil
	})
}
