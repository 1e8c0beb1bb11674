package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/journeymate/backend/internal/authz"
	"github.com/journeymate/backend/internal/events"
	"github.com/journeymate/backend/internal/models"
	"github.com/journeymate/backend/internal/repositories"
)

type JoinRequestService struct {
	store  *repositories.Store
	events *events.Recorder
}

func NewJoinRequestService(store *repositories.Store, recorder *events.Recorder) *JoinRequestService {
	return &JoinRequestService{store: store, events: recorder}
}

func (s *JoinRequestService) joinRequest(ctx context.Context, store *repositories.Store, uid string) (*models.JoinRequest, error) {
	req, err := store.JoinRequests.GetByUID(ctx, uid)
	if err != nil {
		return nil, lookup(err, "join request %s not found", uid)
	}
	return req, nil
}

// Create files a PENDING request from the caller and notifies the post owner.
func (s *JoinRequestService) Create(ctx context.Context, caller authz.Caller, req models.CreateJoinRequest) (*models.JoinRequestView, error) {
	var created *models.JoinRequest
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		post, err := tripPost(ctx, tx, req.TripPostUID)
		if err != nil {
			return err
		}

		jr := &models.JoinRequest{
			UID:            uuid.NewString(),
			TripPostID:     post.ID,
			UserID:         caller.ID,
			RequesterName:  req.RequesterName,
			ContactInfo:    req.ContactInfo,
			Occupation:     req.Occupation,
			Address:        req.Address,
			Age:            req.Age,
			Gender:         req.Gender,
			PersonQuantity: req.PersonQuantity,
			Status:         models.JoinRequestPending,
		}
		if err := tx.JoinRequests.CreateJoinRequest(ctx, jr); err != nil {
			return fmt.Errorf("create join request: %w", err)
		}

		if post.UserID != caller.ID {
			msg := fmt.Sprintf("%s requested to join your trip %q", req.RequesterName, post.Title)
			if err := notify(ctx, tx, post.UserID, msg); err != nil {
				return err
			}
		}

		created, err = s.joinRequest(ctx, tx, jr.UID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.events.Record(ctx, events.Event{Type: events.JoinRequestCreated, ActorUID: caller.UID, SubjectUID: created.UID,
		Payload: map[string]any{"trip_post_uid": req.TripPostUID}})
	view := models.NewJoinRequestView(created)
	return &view, nil
}

func (s *JoinRequestService) ListAll(ctx context.Context, caller authz.Caller) ([]models.JoinRequestView, error) {
	if err := authz.RequireAdmin(caller); err != nil {
		return nil, err
	}
	reqs, err := s.store.JoinRequests.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list join requests: %w", err)
	}
	return models.NewJoinRequestViews(reqs), nil
}

// Get is visible to the requester, the post owner and admins.
func (s *JoinRequestService) Get(ctx context.Context, caller authz.Caller, uid string) (*models.JoinRequestView, error) {
	req, err := s.joinRequest(ctx, s.store, uid)
	if err != nil {
		return nil, err
	}
	if err := authz.AnyOf(caller, req.UserID, req.TripPost.UserID); err != nil {
		return nil, err
	}
	view := models.NewJoinRequestView(req)
	return &view, nil
}

func (s *JoinRequestService) ListByTrip(ctx context.Context, caller authz.Caller, tripUID string) ([]models.JoinRequestView, error) {
	post, err := tripPost(ctx, s.store, tripUID)
	if err != nil {
		return nil, err
	}
	if err := authz.OwnerOrAdmin(caller, post.UserID); err != nil {
		return nil, err
	}
	reqs, err := s.store.JoinRequests.ListByTrip(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("list join requests: %w", err)
	}
	return models.NewJoinRequestViews(reqs), nil
}

func (s *JoinRequestService) ListByUser(ctx context.Context, caller authz.Caller, userUID string) ([]models.JoinRequestView, error) {
	user, err := activeUser(ctx, s.store, userUID)
	if err != nil {
		return nil, err
	}
	if err := authz.SelfOrAdmin(caller, user.ID); err != nil {
		return nil, err
	}
	reqs, err := s.store.JoinRequests.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list join requests: %w", err)
	}
	return models.NewJoinRequestViews(reqs), nil
}

// Update lets the requester amend the details of their request. Status is not touched.
func (s *JoinRequestService) Update(ctx context.Context, caller authz.Caller, uid string, req models.UpdateJoinRequest) (*models.JoinRequestView, error) {
	var updated *models.JoinRequest
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		jr, err := s.joinRequest(ctx, tx, uid)
		if err != nil {
			return err
		}
		if err := authz.OwnerOrAdmin(caller, jr.UserID); err != nil {
			return err
		}

		if req.RequesterName != nil {
			jr.RequesterName = *req.RequesterName
		}
		if req.ContactInfo != nil {
			jr.ContactInfo = *req.ContactInfo
		}
		if req.Occupation != nil {
			jr.Occupation = *req.Occupation
		}
		if req.Address != nil {
			jr.Address = *req.Address
		}
		if req.Age != nil {
			jr.Age = *req.Age
		}
		if req.Gender != nil {
			jr.Gender = *req.Gender
		}
		if req.PersonQuantity != nil {
			jr.PersonQuantity = *req.PersonQuantity
		}

		if err := tx.JoinRequests.UpdateJoinRequest(ctx, jr); err != nil {
			return fmt.Errorf("update join request: %w", err)
		}
		updated = jr
		return nil
	})
	if err != nil {
		return nil, err
	}
	view := models.NewJoinRequestView(updated)
	return &view, nil
}

// UpdateStatus is reserved to the post owner. The value is stored upper-cased and the
// requester is notified.
func (s *JoinRequestService) UpdateStatus(ctx context.Context, caller authz.Caller, uid string, req models.UpdateJoinRequestStatus) (*models.JoinRequestView, error) {
	status := strings.ToUpper(strings.TrimSpace(req.Status))

	var updated *models.JoinRequest
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		jr, err := s.joinRequest(ctx, tx, uid)
		if err != nil {
			return err
		}
		if err := authz.OwnerOrAdmin(caller, jr.TripPost.UserID); err != nil {
			return err
		}

		jr.Status = status
		if err := tx.JoinRequests.UpdateJoinRequest(ctx, jr); err != nil {
			return fmt.Errorf("update join request status: %w", err)
		}
		if jr.UserID != caller.ID {
			msg := fmt.Sprintf("Your request to join %q is now %s", jr.TripPost.Title, status)
			if err := notify(ctx, tx, jr.UserID, msg); err != nil {
				return err
			}
		}
		updated = jr
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Record(ctx, events.Event{Type: events.JoinRequestStatusChanged, ActorUID: caller.UID, SubjectUID: uid,
		Payload: map[string]any{"status": status}})
	view := models.NewJoinRequestView(updated)
	return &view, nil
}

func (s *JoinRequestService) Delete(ctx context.Context, caller authz.Caller, uid string) error {
	return s.store.Transaction(ctx, func(tx *repositories.Store) error {
		jr, err := s.joinRequest(ctx, tx, uid)
		if err != nil {
			return err
		}
		if err := authz.OwnerOrAdmin(caller, jr.UserID); err != nil {
			return err
		}
		if err := tx.JoinRequests.SoftDelete(ctx, jr.ID); err != nil {
			return lookup(err, "join request %s not found", uid)
		}
		return nil
	})
}
