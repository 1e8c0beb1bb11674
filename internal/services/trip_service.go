package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/journeymate/backend/internal/apperrors"
	"github.com/journeymate/backend/internal/authz"
	"github.com/journeymate/backend/internal/events"
	"github.com/journeymate/backend/internal/models"
	"github.com/journeymate/backend/internal/repositories"
	"github.com/journeymate/backend/pkg/filestore"
)

type TripService struct {
	store  *repositories.Store
	files  *filestore.Store
	events *events.Recorder
	now    func() time.Time
}

func NewTripService(store *repositories.Store, files *filestore.Store, recorder *events.Recorder) *TripService {
	return &TripService{store: store, files: files, events: recorder, now: time.Now}
}

// WithClock replaces the time source used to decide which posts have expired.
func (s *TripService) WithClock(now func() time.Time) *TripService {
	s.now = now
	return s
}

type tripDates struct {
	start, end, expire time.Time
}

func parseTripRequest(req models.TripPostRequest) (tripDates, error) {
	var d tripDates
	var err error
	if d.start, err = time.Parse(models.DateLayout, req.TripStartingDate); err != nil {
		return d, apperrors.Validation("trip_starting_date must be YYYY-MM-DD")
	}
	if d.end, err = time.Parse(models.DateLayout, req.TripEndingDate); err != nil {
		return d, apperrors.Validation("trip_ending_date must be YYYY-MM-DD")
	}
	if d.expire, err = time.Parse(models.DateLayout, req.PostExpireDate); err != nil {
		return d, apperrors.Validation("post_expire_date must be YYYY-MM-DD")
	}
	if d.end.Before(d.start) {
		return d, apperrors.Validation("trip_ending_date must not be before trip_starting_date")
	}
	if req.MaxAge > 0 && req.MinAge > req.MaxAge {
		return d, apperrors.Validation("min_age must not exceed max_age")
	}
	if req.Amount < 0 {
		return d, apperrors.Validation("amount must not be negative")
	}
	return d, nil
}

func applyTripRequest(post *models.TripPost, req models.TripPostRequest, d tripDates) {
	post.Title = req.Title
	post.Description = req.Description
	post.Destination = req.Destination
	post.Price = req.Amount
	post.Preference = req.Preference
	post.MinAge = req.MinAge
	post.MaxAge = req.MaxAge
	post.Gender = req.Gender
	post.PersonType = req.PersonType
	post.PersonCount = req.PersonCount
	post.TripStartingDate = d.start
	post.TripEndingDate = d.end
	post.PostExpireDate = d.expire
	post.TripDuration = int(d.end.Sub(d.start).Hours() / 24)
	post.TripTransportation = req.TripTransportation
}

func newImages(tripPostID uint, names []string) []models.TripImage {
	images := make([]models.TripImage, len(names))
	for i, name := range names {
		images[i] = models.TripImage{UID: uuid.NewString(), TripPostID: tripPostID, ImageURL: name}
	}
	return images
}

// Create stores a post owned by the caller together with its images.
func (s *TripService) Create(ctx context.Context, caller authz.Caller, req models.TripPostRequest, uploads []filestore.Upload) (*models.TripPostView, error) {
	dates, err := parseTripRequest(req)
	if err != nil {
		return nil, err
	}
	staged, err := stageAll(s.files, uploads)
	if err != nil {
		return nil, err
	}

	post := &models.TripPost{UID: uuid.NewString(), UserID: caller.ID}
	applyTripRequest(post, req, dates)

	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if err := tx.Trips.CreateTripPost(ctx, post); err != nil {
			return fmt.Errorf("create trip post: %w", err)
		}
		if err := tx.Images.CreateImages(ctx, newImages(post.ID, staged)); err != nil {
			return fmt.Errorf("create trip images: %w", err)
		}
		return nil
	})
	if err != nil {
		s.files.Discard(staged...)
		return nil, err
	}
	promoteAll(s.files, staged)

	s.events.Record(ctx, events.Event{Type: events.TripCreated, ActorUID: caller.UID, SubjectUID: post.UID,
		Payload: map[string]any{"title": post.Title, "images": len(staged)}})
	return s.GetByUID(ctx, post.UID)
}

// Update replaces the post fields. When images are supplied they replace the whole set.
func (s *TripService) Update(ctx context.Context, caller authz.Caller, uid string, req models.TripPostRequest, uploads []filestore.Upload) (*models.TripPostView, error) {
	dates, err := parseTripRequest(req)
	if err != nil {
		return nil, err
	}
	staged, err := stageAll(s.files, uploads)
	if err != nil {
		return nil, err
	}

	var removed []models.TripImage
	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		post, err := tripPost(ctx, tx, uid)
		if err != nil {
			return err
		}
		if err := authz.OwnerOrAdmin(caller, post.UserID); err != nil {
			return err
		}

		applyTripRequest(post, req, dates)
		if err := tx.Trips.UpdateTripPost(ctx, post); err != nil {
			return fmt.Errorf("update trip post: %w", err)
		}

		if len(staged) == 0 {
			return nil
		}
		if removed, err = tx.Images.DeleteByTrip(ctx, post.ID); err != nil {
			return fmt.Errorf("delete trip images: %w", err)
		}
		if err := tx.Images.CreateImages(ctx, newImages(post.ID, staged)); err != nil {
			return fmt.Errorf("create trip images: %w", err)
		}
		return nil
	})
	if err != nil {
		s.files.Discard(staged...)
		return nil, err
	}
	promoteAll(s.files, staged)
	removeAll(s.files, imageNames(removed))

	s.events.Record(ctx, events.Event{Type: events.TripUpdated, ActorUID: caller.UID, SubjectUID: uid})
	return s.GetByUID(ctx, uid)
}

// ListActive returns non-deleted posts that expire today or later, each with one
// representative image and its average rating.
func (s *TripService) ListActive(ctx context.Context) ([]models.TripPostView, error) {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	posts, err := s.store.Trips.ListActive(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("list active trip posts: %w", err)
	}

	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	ratings, err := s.store.Feedback.Ratings(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("aggregate ratings: %w", err)
	}
	firstImages, err := s.store.Images.FirstImages(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load representative images: %w", err)
	}

	views := make([]models.TripPostView, len(posts))
	for i := range posts {
		views[i] = models.NewTripPostView(&posts[i], ratings[posts[i].ID].Average())
		if img, ok := firstImages[posts[i].ID]; ok {
			views[i].Image = s.files.DataURI(img.ImageURL)
		}
	}
	return views, nil
}

// GetByUID returns a post with all of its images.
func (s *TripService) GetByUID(ctx context.Context, uid string) (*models.TripPostView, error) {
	post, err := tripPost(ctx, s.store, uid)
	if err != nil {
		return nil, err
	}
	views, err := s.fullViews(ctx, []models.TripPost{*post})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListByOwner returns the caller's posts, expired ones included.
func (s *TripService) ListByOwner(ctx context.Context, caller authz.Caller) ([]models.TripPostView, error) {
	posts, err := s.store.Trips.ListByOwner(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("list trip posts: %w", err)
	}
	return s.fullViews(ctx, posts)
}

// fullViews expects Images preloaded.
func (s *TripService) fullViews(ctx context.Context, posts []models.TripPost) ([]models.TripPostView, error) {
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	ratings, err := s.store.Feedback.Ratings(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("aggregate ratings: %w", err)
	}

	views := make([]models.TripPostView, len(posts))
	for i := range posts {
		views[i] = models.NewTripPostView(&posts[i], ratings[posts[i].ID].Average())
		for _, img := range posts[i].Images {
			views[i].Images = append(views[i].Images, s.files.DataURI(img.ImageURL))
		}
		if len(views[i].Images) > 0 {
			views[i].Image = views[i].Images[0]
		}
	}
	return views, nil
}

// Delete flags the post deleted and removes everything hanging off it: feedback, saved
// entries and images are deleted, join requests are flagged.
func (s *TripService) Delete(ctx context.Context, caller authz.Caller, uid string) error {
	var removed []models.TripImage
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		post, err := tripPost(ctx, tx, uid)
		if err != nil {
			return err
		}
		if err := authz.OwnerOrAdmin(caller, post.UserID); err != nil {
			return err
		}

		if err := tx.Feedback.DeleteByTrip(ctx, post.ID); err != nil {
			return fmt.Errorf("delete trip feedback: %w", err)
		}
		if err := tx.SavedPosts.DeleteByTrip(ctx, post.ID); err != nil {
			return fmt.Errorf("delete saved posts: %w", err)
		}
		if err := tx.JoinRequests.SoftDeleteByTrip(ctx, post.ID); err != nil {
			return fmt.Errorf("delete join requests: %w", err)
		}
		if removed, err = tx.Images.DeleteByTrip(ctx, post.ID); err != nil {
			return fmt.Errorf("delete trip images: %w", err)
		}
		if err := tx.Trips.SoftDelete(ctx, post.ID); err != nil {
			return lookup(err, "trip post %s not found", uid)
		}
		return nil
	})
	if err != nil {
		return err
	}
	removeAll(s.files, imageNames(removed))

	s.events.Record(ctx, events.Event{Type: events.TripDeleted, ActorUID: caller.UID, SubjectUID: uid})
	return nil
}

func imageNames(images []models.TripImage) []string {
	names := make([]string, len(images))
	for i, img := range images {
		names[i] = img.ImageURL
	}
	return names
}
