package services

import (
	"context"
	"strings"
	"testing"

	"github.com/journeymate/backend/internal/apperrors"
	"github.com/journeymate/backend/internal/authz"
	"github.com/journeymate/backend/internal/models"
)

// trip creates an open post owned by a fresh user and returns both.
func (env *testEnv) trip(t *testing.T) (*models.User, authz.Caller, *models.TripPostView) {
	t.Helper()
	owner, caller := env.register(t, "Trip Owner")
	view, err := env.trips.Create(context.Background(), caller, tripRequest("Coast", "2025-07-01"), nil)
	if err != nil {
		t.Fatalf("create trip: %v", err)
	}
	return owner, caller, view
}

func TestFeedbackRatingBounds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, _, trip := env.trip(t)
	_, guest := env.register(t, "Guest Person")

	for _, rating := range []int{0, 6, -1} {
		_, err := env.feedback.Create(ctx, guest, models.CreateFeedbackRequest{TripPostUID: trip.UID, ToUserUID: owner.UID, Rating: rating})
		if !apperrors.Is(err, apperrors.KindValidation) {
			t.Fatalf("rating %d: expected validation error, got %v", rating, err)
		}
	}

	var last *models.FeedbackView
	for _, rating := range []int{1, 5} {
		fb, err := env.feedback.Create(ctx, guest, models.CreateFeedbackRequest{TripPostUID: trip.UID, ToUserUID: owner.UID, Rating: rating})
		if err != nil {
			t.Fatalf("rating %d: %v", rating, err)
		}
		last = fb
	}

	tooHigh := 6
	if _, err := env.feedback.Update(ctx, guest, last.ID, models.UpdateFeedbackRequest{Rating: &tooHigh}); !apperrors.Is(err, apperrors.KindValidation) {
		t.Fatalf("expected validation error on update, got %v", err)
	}
	three := 3
	updated, err := env.feedback.Update(ctx, guest, last.ID, models.UpdateFeedbackRequest{Rating: &three})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Rating != 3 {
		t.Fatalf("expected rating 3, got %d", updated.Rating)
	}
}

func TestFeedbackVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, ownerCaller, trip := env.trip(t)
	_, guest := env.register(t, "Guest Person")
	_, stranger := env.register(t, "Some Stranger")

	fb, err := env.feedback.Create(ctx, guest, models.CreateFeedbackRequest{TripPostUID: trip.UID, ToUserUID: owner.UID, Rating: 4, Comment: "great"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := env.feedback.Get(ctx, ownerCaller, fb.ID); err != nil {
		t.Fatalf("receiver should see feedback: %v", err)
	}
	if _, err := env.feedback.Get(ctx, stranger, fb.ID); !apperrors.Is(err, apperrors.KindForbidden) {
		t.Fatalf("expected forbidden for stranger, got %v", err)
	}
	if _, err := env.feedback.ListByGiver(ctx, stranger, guest.UID); !apperrors.Is(err, apperrors.KindForbidden) {
		t.Fatalf("expected forbidden listing someone else's feedback, got %v", err)
	}
	if list, err := env.feedback.ListByTrip(ctx, trip.UID); err != nil || len(list) != 1 {
		t.Fatalf("expected one feedback on trip, got %d (%v)", len(list), err)
	}
	if err := env.feedback.Delete(ctx, ownerCaller, fb.ID); !apperrors.Is(err, apperrors.KindForbidden) {
		t.Fatalf("only the giver deletes feedback, got %v", err)
	}
	if err := env.feedback.Delete(ctx, guest, fb.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	notes, err := env.notifications.ListUnreadByUser(ctx, ownerCaller, owner.UID)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("expected the receiver to be notified once, got %d", len(notes))
	}
}

func TestSavePostTwiceIsDuplicate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, ownerCaller, trip := env.trip(t)
	guestUser, guest := env.register(t, "Guest Person")

	if _, err := env.saved.Save(ctx, guest, trip.UID); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := env.saved.Save(ctx, guest, trip.UID); !apperrors.Is(err, apperrors.KindDuplicate) {
		t.Fatalf("expected duplicate, got %v", err)
	}

	saved, err := env.saved.IsSaved(ctx, guest, guestUser.UID, trip.UID)
	if err != nil || !saved {
		t.Fatalf("expected saved, got %v (%v)", saved, err)
	}
	if byTrip, err := env.saved.ListByTrip(ctx, ownerCaller, trip.UID); err != nil || len(byTrip) != 1 {
		t.Fatalf("owner should see one bookmark, got %d (%v)", len(byTrip), err)
	}
	if _, err := env.saved.ListByTrip(ctx, guest, trip.UID); !apperrors.Is(err, apperrors.KindForbidden) {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}

	if err := env.saved.Unsave(ctx, guest, guestUser.UID, trip.UID); err != nil {
		t.Fatalf("unsave: %v", err)
	}
	if err := env.saved.Unsave(ctx, guest, guestUser.UID, trip.UID); !apperrors.Is(err, apperrors.KindNotFound) {
		t.Fatalf("expected not found on second unsave, got %v", err)
	}
}

func TestSavePostLosingInsertRaceIsDuplicate(t *testing.T) {
	env := newTestEnv(t)
	_, _, trip := env.trip(t)
	_, guest := env.register(t, "Guest Person")
	env.rejectInserts(t, "saved_posts")

	if _, err := env.saved.Save(context.Background(), guest, trip.UID); !apperrors.Is(err, apperrors.KindDuplicate) {
		t.Fatalf("expected duplicate when the unique index rejects the insert, got %v", err)
	}
}

func TestJoinRequestLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, ownerCaller, trip := env.trip(t)
	guestUser, guest := env.register(t, "Guest Person")
	_, stranger := env.register(t, "Some Stranger")

	jr, err := env.joins.Create(ctx, guest, models.CreateJoinRequest{
		TripPostUID:    trip.UID,
		RequesterName:  "Guest Person",
		ContactInfo:    "guest@example.com",
		PersonQuantity: 2,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if jr.Status != models.JoinRequestPending {
		t.Fatalf("expected PENDING, got %s", jr.Status)
	}

	if count, _ := env.notifications.UnreadCount(ctx, ownerCaller, owner.UID); count != 1 {
		t.Fatalf("expected owner to be notified, got %d", count)
	}

	if _, err := env.joins.Get(ctx, stranger, jr.UID); !apperrors.Is(err, apperrors.KindForbidden) {
		t.Fatalf("expected forbidden for stranger, got %v", err)
	}
	if _, err := env.joins.UpdateStatus(ctx, guest, jr.UID, models.UpdateJoinRequestStatus{Status: "ACCEPTED"}); !apperrors.Is(err, apperrors.KindForbidden) {
		t.Fatalf("requester must not change the status, got %v", err)
	}

	accepted, err := env.joins.UpdateStatus(ctx, ownerCaller, jr.UID, models.UpdateJoinRequestStatus{Status: "accepted"})
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if accepted.Status != "ACCEPTED" {
		t.Fatalf("expected ACCEPTED, got %s", accepted.Status)
	}

	notes, err := env.notifications.ListUnreadByUser(ctx, guest, guestUser.UID)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(notes) != 1 || !strings.Contains(notes[0].Message, "ACCEPTED") {
		t.Fatalf("expected the requester to be told about ACCEPTED, got %+v", notes)
	}

	if byTrip, err := env.joins.ListByTrip(ctx, ownerCaller, trip.UID); err != nil || len(byTrip) != 1 {
		t.Fatalf("expected one request on trip, got %d (%v)", len(byTrip), err)
	}
	if err := env.joins.Delete(ctx, guest, jr.UID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if byTrip, _ := env.joins.ListByTrip(ctx, ownerCaller, trip.UID); len(byTrip) != 0 {
		t.Fatalf("deleted requests must be hidden, got %d", len(byTrip))
	}
}

func TestMessagesBetweenUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	aliceUser, alice := env.register(t, "Alice Walker")
	bobUser, bob := env.register(t, "Bob Stone")
	_, carol := env.register(t, "Carol King")

	send := func(from authz.Caller, to *models.User, content string) *models.MessageView {
		t.Helper()
		m, err := env.messages.Send(ctx, from, models.SendMessageRequest{ReceiverUID: to.UID, Content: content})
		if err != nil {
			t.Fatalf("send %q: %v", content, err)
		}
		return m
	}
	first := send(alice, bobUser, "hi bob")
	send(bob, aliceUser, "hi alice")
	send(alice, bobUser, "see you in Lisbon")

	convo, err := env.messages.ListBetween(ctx, bob, aliceUser.UID, bobUser.UID)
	if err != nil {
		t.Fatalf("list between: %v", err)
	}
	want := []string{"hi bob", "hi alice", "see you in Lisbon"}
	if len(convo) != len(want) {
		t.Fatalf("expected %d messages, got %d", len(want), len(convo))
	}
	for i, m := range convo {
		if m.Content != want[i] {
			t.Fatalf("message %d: expected %q, got %q", i, want[i], m.Content)
		}
	}

	if _, err := env.messages.ListBetween(ctx, carol, aliceUser.UID, bobUser.UID); !apperrors.Is(err, apperrors.KindForbidden) {
		t.Fatalf("expected forbidden for a third party, got %v", err)
	}
	if _, err := env.messages.Get(ctx, carol, first.ID); !apperrors.Is(err, apperrors.KindForbidden) {
		t.Fatalf("expected forbidden get, got %v", err)
	}
	if err := env.messages.Delete(ctx, bob, first.ID); !apperrors.Is(err, apperrors.KindForbidden) {
		t.Fatalf("only the sender deletes, got %v", err)
	}
	if err := env.messages.Delete(ctx, alice, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if sent, _ := env.messages.ListSent(ctx, alice, aliceUser.UID); len(sent) != 1 {
		t.Fatalf("expected one sent message left, got %d", len(sent))
	}
}

func TestNotificationReadState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.admin(t)
	user, caller := env.register(t, "Note Reader")
	_, other := env.register(t, "Other Reader")

	if _, err := env.notifications.Create(ctx, caller, models.CreateNotificationRequest{UserUID: user.UID, Message: "x"}); !apperrors.Is(err, apperrors.KindForbidden) {
		t.Fatalf("only admins create notifications, got %v", err)
	}

	var ids []uint
	for _, msg := range []string{"one", "two", "three"} {
		n, err := env.notifications.Create(ctx, admin, models.CreateNotificationRequest{UserUID: user.UID, Message: msg})
		if err != nil {
			t.Fatalf("create %s: %v", msg, err)
		}
		ids = append(ids, n.ID)
	}

	page, total, err := env.notifications.ListByUser(ctx, caller, user.UID, 1, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || len(page) != 2 {
		t.Fatalf("expected 2 of 3, got %d of %d", len(page), total)
	}
	if _, _, err := env.notifications.ListByUser(ctx, other, user.UID, 1, 10); !apperrors.Is(err, apperrors.KindForbidden) {
		t.Fatalf("expected forbidden for someone else's notifications, got %v", err)
	}

	if err := env.notifications.MarkRead(ctx, caller, ids[0]); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if count, _ := env.notifications.UnreadCount(ctx, caller, user.UID); count != 2 {
		t.Fatalf("expected 2 unread, got %d", count)
	}
	changed, err := env.notifications.MarkAllRead(ctx, caller, user.UID)
	if err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	if changed != 2 {
		t.Fatalf("expected 2 changed, got %d", changed)
	}
	if count, _ := env.notifications.UnreadCount(ctx, caller, user.UID); count != 0 {
		t.Fatalf("expected 0 unread, got %d", count)
	}
}
