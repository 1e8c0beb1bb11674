package events

import (
	"context"
	"time"

	"github.com/journeymate/backend/internal/models"
	"github.com/journeymate/backend/internal/repositories"
)

// ActivitySink stores events as activities through the Mongo activity repository.
type ActivitySink struct {
	activities repositories.ActivityRepository
	timeout    time.Duration
}

func NewActivitySink(activities repositories.ActivityRepository) *ActivitySink {
	return &ActivitySink{activities: activities, timeout: 3 * time.Second}
}

func (s *ActivitySink) Name() string { return "activity" }

func (s *ActivitySink) Record(ctx context.Context, event Event) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	return s.activities.InsertActivity(ctx, &models.Activity{
		Type:       event.Type,
		ActorUID:   event.ActorUID,
		SubjectUID: event.SubjectUID,
		Payload:    event.Payload,
		OccurredAt: event.OccurredAt,
	})
}
