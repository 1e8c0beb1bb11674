package events

import (
	"context"
	"errors"
	"testing"

	"github.com/journeymate/backend/internal/models"
)

type captureSink struct {
	name   string
	err    error
	events []Event
}

func (s *captureSink) Name() string { return s.name }

func (s *captureSink) Record(_ context.Context, e Event) error {
	s.events = append(s.events, e)
	return s.err
}

func TestRecorderFansOutPastFailures(t *testing.T) {
	failing := &captureSink{name: "failing", err: errors.New("broker down")}
	ok := &captureSink{name: "ok"}
	rec := NewRecorder(failing, ok, LogSink{})

	rec.Record(context.Background(), Event{Type: TripCreated, ActorUID: "u1", SubjectUID: "t1"})

	if len(failing.events) != 1 || len(ok.events) != 1 {
		t.Fatalf("expected both sinks to receive the event, got %d and %d", len(failing.events), len(ok.events))
	}
	if ok.events[0].OccurredAt.IsZero() {
		t.Fatalf("expected occurred_at to be stamped")
	}
}

func TestNilRecorderIsNoop(t *testing.T) {
	var rec *Recorder
	rec.Record(context.Background(), Event{Type: MessageSent})
}

type memoryActivities struct {
	inserted []models.Activity
}

func (m *memoryActivities) InsertActivity(_ context.Context, a *models.Activity) error {
	m.inserted = append(m.inserted, *a)
	return nil
}

func (m *memoryActivities) ListRecent(context.Context, int64) ([]models.Activity, error) {
	return m.inserted, nil
}

func (m *memoryActivities) ListBySubject(context.Context, string, int64) ([]models.Activity, error) {
	return m.inserted, nil
}

func TestActivitySinkMapsEvent(t *testing.T) {
	store := &memoryActivities{}
	sink := NewActivitySink(store)

	NewRecorder(sink).Record(context.Background(), Event{
		Type:       FeedbackCreated,
		ActorUID:   "giver",
		SubjectUID: "trip",
		Payload:    map[string]any{"rating": 5},
	})

	if len(store.inserted) != 1 {
		t.Fatalf("expected one activity, got %d", len(store.inserted))
	}
	got := store.inserted[0]
	if got.Type != FeedbackCreated || got.ActorUID != "giver" || got.SubjectUID != "trip" {
		t.Fatalf("unexpected activity %+v", got)
	}
	if got.Payload["rating"] != 5 {
		t.Fatalf("expected payload to be carried, got %v", got.Payload)
	}
}
