// Package events records what happened after a change has been committed. Recording is
// best effort: sink failures are logged and never reach the caller.
package events

import (
	"context"
	"time"

	"github.com/labstack/gommon/log"
)

const (
	UserRegistered           = "user.registered"
	UserDeleted              = "user.deleted"
	TripCreated              = "trip.created"
	TripUpdated              = "trip.updated"
	TripDeleted              = "trip.deleted"
	JoinRequestCreated       = "join_request.created"
	JoinRequestStatusChanged = "join_request.status_changed"
	FeedbackCreated          = "feedback.created"
	MessageSent              = "message.sent"
)

type Event struct {
	Type       string         `json:"type"`
	ActorUID   string         `json:"actor_uid,omitempty"`
	SubjectUID string         `json:"subject_uid,omitempty"`
	Payload    map[string]any `json:"payload,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Sink receives every recorded event.
type Sink interface {
	Record(ctx context.Context, event Event) error
	Name() string
}

type Recorder struct {
	sinks []Sink
}

func NewRecorder(sinks ...Sink) *Recorder {
	return &Recorder{sinks: sinks}
}

// Record fans the event out to every sink. A nil Recorder drops events.
func (r *Recorder) Record(ctx context.Context, event Event) {
	if r == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	for _, sink := range r.sinks {
		if err := sink.Record(ctx, event); err != nil {
			log.Warnf("events: %s sink failed for %s: %v", sink.Name(), event.Type, err)
		}
	}
}

// LogSink writes events to the application log.
type LogSink struct{}

func (LogSink) Name() string { return "log" }

func (LogSink) Record(_ context.Context, event Event) error {
	log.Infof("event %s actor=%s subject=%s", event.Type, event.ActorUID, event.SubjectUID)
	return nil
}
