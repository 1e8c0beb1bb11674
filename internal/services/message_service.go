package services

import (
	"context"
	"fmt"

	"github.com/journeymate/backend/internal/authz"
	"github.com/journeymate/backend/internal/events"
	"github.com/journeymate/backend/internal/models"
	"github.com/journeymate/backend/internal/repositories"
)

type MessageService struct {
	store  *repositories.Store
	events *events.Recorder
}

func NewMessageService(store *repositories.Store, recorder *events.Recorder) *MessageService {
	return &MessageService{store: store, events: recorder}
}

func (s *MessageService) message(ctx context.Context, store *repositories.Store, id uint) (*models.Message, error) {
	msg, err := store.Messages.GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "message %d not found", id)
	}
	return msg, nil
}

func (s *MessageService) Send(ctx context.Context, caller authz.Caller, req models.SendMessageRequest) (*models.MessageView, error) {
	var sent *models.Message
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		receiver, err := activeUser(ctx, tx, req.ReceiverUID)
		if err != nil {
			return err
		}
		msg := &models.Message{SenderID: caller.ID, ReceiverID: receiver.ID, Content: req.Content}
		if err := tx.Messages.CreateMessage(ctx, msg); err != nil {
			return fmt.Errorf("create message: %w", err)
		}
		sent, err = s.message(ctx, tx, msg.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	// content stays out of the activity log
	s.events.Record(ctx, events.Event{Type: events.MessageSent, ActorUID: caller.UID, SubjectUID: req.ReceiverUID})
	view := models.NewMessageView(sent)
	return &view, nil
}

func (s *MessageService) Get(ctx context.Context, caller authz.Caller, id uint) (*models.MessageView, error) {
	msg, err := s.message(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if err := authz.AnyOf(caller, msg.SenderID, msg.ReceiverID); err != nil {
		return nil, err
	}
	view := models.NewMessageView(msg)
	return &view, nil
}

func (s *MessageService) ListAll(ctx context.Context, caller authz.Caller) ([]models.MessageView, error) {
	if err := authz.RequireAdmin(caller); err != nil {
		return nil, err
	}
	msgs, err := s.store.Messages.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return models.NewMessageViews(msgs), nil
}

func (s *MessageService) ListSent(ctx context.Context, caller authz.Caller, userUID string) ([]models.MessageView, error) {
	user, err := activeUser(ctx, s.store, userUID)
	if err != nil {
		return nil, err
	}
	if err := authz.SelfOrAdmin(caller, user.ID); err != nil {
		return nil, err
	}
	msgs, err := s.store.Messages.ListBySender(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return models.NewMessageViews(msgs), nil
}

func (s *MessageService) ListReceived(ctx context.Context, caller authz.Caller, userUID string) ([]models.MessageView, error) {
	user, err := activeUser(ctx, s.store, userUID)
	if err != nil {
		return nil, err
	}
	if err := authz.SelfOrAdmin(caller, user.ID); err != nil {
		return nil, err
	}
	msgs, err := s.store.Messages.ListByReceiver(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return models.NewMessageViews(msgs), nil
}

// ListBetween returns the conversation of two users, oldest first.
func (s *MessageService) ListBetween(ctx context.Context, caller authz.Caller, userA, userB string) ([]models.MessageView, error) {
	a, err := activeUser(ctx, s.store, userA)
	if err != nil {
		return nil, err
	}
	b, err := activeUser(ctx, s.store, userB)
	if err != nil {
		return nil, err
	}
	if err := authz.AnyOf(caller, a.ID, b.ID); err != nil {
		return nil, err
	}
	msgs, err := s.store.Messages.ListBetween(ctx, a.ID, b.ID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return models.NewMessageViews(msgs), nil
}

func (s *MessageService) Delete(ctx context.Context, caller authz.Caller, id uint) error {
	return s.store.Transaction(ctx, func(tx *repositories.Store) error {
		msg, err := s.message(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := authz.OwnerOrAdmin(caller, msg.SenderID); err != nil {
			return err
		}
		if err := tx.Messages.DeleteMessage(ctx, msg.ID); err != nil {
			return lookup(err, "message %d not found", id)
		}
		return nil
	})
}
