package services

import (
	"context"
	"strings"
	"testing"

	"github.com/journeymate/backend/internal/apperrors"
	"github.com/journeymate/backend/internal/models"
)

func TestCreateTripRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	_, caller := env.register(t, "Trip Owner")

	tests := []struct {
		name   string
		mutate func(*models.TripPostRequest)
	}{
		{"bad start date", func(r *models.TripPostRequest) { r.TripStartingDate = "01/07/2025" }},
		{"end before start", func(r *models.TripPostRequest) { r.TripEndingDate = "2025-06-30" }},
		{"min age above max age", func(r *models.TripPostRequest) { r.MinAge = 50 }},
		{"negative amount", func(r *models.TripPostRequest) { r.Amount = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tripRequest("Coast", "2025-07-01")
			tt.mutate(&req)
			if _, err := env.trips.Create(context.Background(), caller, req, images(1)); !apperrors.Is(err, apperrors.KindValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateTripWithImages(t *testing.T) {
	env := newTestEnv(t)
	owner, caller := env.register(t, "Trip Owner")

	view, err := env.trips.Create(context.Background(), caller, tripRequest("Coast", "2025-07-01"), images(2))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if view.Duration != 14 {
		t.Fatalf("expected duration 14, got %d", view.Duration)
	}
	if view.CreatorUID != owner.UID {
		t.Fatalf("expected creator %s, got %s", owner.UID, view.CreatorUID)
	}
	if len(view.Images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(view.Images))
	}
	for _, img := range view.Images {
		if !strings.HasPrefix(img, "data:image/png;base64,") {
			t.Fatalf("expected png data uri, got %q", img)
		}
	}
	if view.Rating != 0 {
		t.Fatalf("expected rating 0 without feedback, got %v", view.Rating)
	}
}

func TestListActiveHidesExpiredPosts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, caller := env.register(t, "Trip Owner")

	if _, err := env.trips.Create(ctx, caller, tripRequest("Expired", "2025-06-14"), nil); err != nil {
		t.Fatalf("create expired: %v", err)
	}
	if _, err := env.trips.Create(ctx, caller, tripRequest("Today", "2025-06-15"), nil); err != nil {
		t.Fatalf("create today: %v", err)
	}
	if _, err := env.trips.Create(ctx, caller, tripRequest("Open", "2025-07-01"), images(2)); err != nil {
		t.Fatalf("create open: %v", err)
	}

	views, err := env.trips.ListActive(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	titles := map[string]models.TripPostView{}
	for _, v := range views {
		titles[v.Title] = v
	}
	if _, ok := titles["Expired"]; ok {
		t.Fatalf("expired post must not be listed")
	}
	if _, ok := titles["Today"]; !ok {
		t.Fatalf("post expiring today must be listed")
	}
	open, ok := titles["Open"]
	if !ok {
		t.Fatalf("open post must be listed")
	}
	if open.Image == "" || len(open.Images) != 0 {
		t.Fatalf("expected exactly one representative image, got image=%q images=%d", open.Image, len(open.Images))
	}

	mine, err := env.trips.ListByOwner(ctx, caller)
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(mine) != 3 {
		t.Fatalf("owner listing includes expired posts, expected 3 got %d", len(mine))
	}
}

func TestTripRatingAverage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, ownerCaller := env.register(t, "Trip Owner")
	_, alice := env.register(t, "Alice Walker")
	_, bob := env.register(t, "Bob Stone")

	trip, err := env.trips.Create(ctx, ownerCaller, tripRequest("Coast", "2025-07-01"), nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := env.feedback.Create(ctx, alice, models.CreateFeedbackRequest{TripPostUID: trip.UID, ToUserUID: owner.UID, Rating: 4}); err != nil {
		t.Fatalf("feedback alice: %v", err)
	}
	if _, err := env.feedback.Create(ctx, bob, models.CreateFeedbackRequest{TripPostUID: trip.UID, ToUserUID: owner.UID, Rating: 5}); err != nil {
		t.Fatalf("feedback bob: %v", err)
	}

	view, err := env.trips.GetByUID(ctx, trip.UID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.Rating != 4.5 {
		t.Fatalf("expected rating 4.5, got %v", view.Rating)
	}
}

func TestTripOwnershipChecks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, owner := env.register(t, "Trip Owner")
	_, stranger := env.register(t, "Some Stranger")
	admin := env.admin(t)

	trip, err := env.trips.Create(ctx, owner, tripRequest("Coast", "2025-07-01"), nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := env.trips.Update(ctx, stranger, trip.UID, tripRequest("Hijacked", "2025-07-01"), nil); !apperrors.Is(err, apperrors.KindForbidden) {
		t.Fatalf("expected forbidden update, got %v", err)
	}
	if err := env.trips.Delete(ctx, stranger, trip.UID); !apperrors.Is(err, apperrors.KindForbidden) {
		t.Fatalf("expected forbidden delete, got %v", err)
	}

	updated, err := env.trips.Update(ctx, admin, trip.UID, tripRequest("Renamed", "2025-07-01"), nil)
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if updated.Title != "Renamed" {
		t.Fatalf("expected Renamed, got %q", updated.Title)
	}
	if err := env.trips.Delete(ctx, admin, trip.UID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if _, err := env.trips.GetByUID(ctx, trip.UID); !apperrors.Is(err, apperrors.KindNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestUpdateTripReplacesImagesOnlyWhenGiven(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, owner := env.register(t, "Trip Owner")

	trip, err := env.trips.Create(ctx, owner, tripRequest("Coast", "2025-07-01"), images(2))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	post, err := env.store.Trips.GetByUID(ctx, trip.UID)
	if err != nil {
		t.Fatalf("load post: %v", err)
	}
	original, _ := env.store.Images.ListByTrip(ctx, post.ID)

	kept, err := env.trips.Update(ctx, owner, trip.UID, tripRequest("Coast", "2025-07-01"), nil)
	if err != nil {
		t.Fatalf("update without images: %v", err)
	}
	if len(kept.Images) != 2 {
		t.Fatalf("images must survive an update without uploads, got %d", len(kept.Images))
	}

	replaced, err := env.trips.Update(ctx, owner, trip.UID, tripRequest("Coast", "2025-07-01"), images(1))
	if err != nil {
		t.Fatalf("update with images: %v", err)
	}
	if len(replaced.Images) != 1 {
		t.Fatalf("expected the image set to be replaced, got %d", len(replaced.Images))
	}
	for _, img := range original {
		if env.files.Exists(img.ImageURL) {
			t.Fatalf("replaced file %s still on disk", img.ImageURL)
		}
	}

	var rows int64
	if err := env.db.Model(&models.TripImage{}).Where("trip_post_id = ?", post.ID).Count(&rows).Error; err != nil {
		t.Fatalf("count image rows: %v", err)
	}
	if rows != 1 {
		t.Fatalf("replaced image rows must be removed, not flagged, got %d rows", rows)
	}
	if env.db.Migrator().HasColumn(&models.TripImage{}, "deleted") {
		t.Fatalf("trip_images must not carry a deleted flag")
	}
}

func TestDeleteTripCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, ownerCaller := env.register(t, "Trip Owner")
	_, guest := env.register(t, "Guest Person")

	trip, err := env.trips.Create(ctx, ownerCaller, tripRequest("Coast", "2025-07-01"), images(2))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	post, _ := env.store.Trips.GetByUID(ctx, trip.UID)
	files, _ := env.store.Images.ListByTrip(ctx, post.ID)

	if _, err := env.feedback.Create(ctx, guest, models.CreateFeedbackRequest{TripPostUID: trip.UID, ToUserUID: owner.UID, Rating: 5}); err != nil {
		t.Fatalf("feedback: %v", err)
	}
	if _, err := env.saved.Save(ctx, guest, trip.UID); err != nil {
		t.Fatalf("save: %v", err)
	}
	jr, err := env.joins.Create(ctx, guest, models.CreateJoinRequest{TripPostUID: trip.UID, RequesterName: "Guest", ContactInfo: "guest@example.com", PersonQuantity: 1})
	if err != nil {
		t.Fatalf("join request: %v", err)
	}

	if err := env.trips.Delete(ctx, ownerCaller, trip.UID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if rows, _ := env.store.Images.ListByTrip(ctx, post.ID); len(rows) != 0 {
		t.Fatalf("expected image rows removed, got %d", len(rows))
	}
	for _, img := range files {
		if env.files.Exists(img.ImageURL) {
			t.Fatalf("image file %s still on disk", img.ImageURL)
		}
	}
	if fb, _ := env.store.Feedback.ListByTrip(ctx, post.ID); len(fb) != 0 {
		t.Fatalf("expected feedback removed, got %d", len(fb))
	}
	if saved, _ := env.store.SavedPosts.GetSavedPostsByTrip(ctx, post.ID); len(saved) != 0 {
		t.Fatalf("expected saved posts removed, got %d", len(saved))
	}
	if _, err := env.joins.Get(ctx, guest, jr.UID); !apperrors.Is(err, apperrors.KindNotFound) {
		t.Fatalf("expected join request hidden, got %v", err)
	}
}
