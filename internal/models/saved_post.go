package models

import "time"

// SavedPost represents a trip post bookmarked by a user
type SavedPost struct {
	ID         uint      `gorm:"primaryKey"`
	UserID     uint      `gorm:"index;uniqueIndex:idx_user_trip_post_save;not null"`
	User       User      `gorm:"foreignKey:UserID"`
	TripPostID uint      `gorm:"index;uniqueIndex:idx_user_trip_post_save;not null"`
	TripPost   TripPost  `gorm:"foreignKey:TripPostID"`
	SavedAt    time.Time `gorm:"autoCreateTime"`
}

type SavePostRequest struct {
	TripPostUID string `json:"trip_post_uid" validate:"required,uuid"`
}

type SavedPostView struct {
	ID          uint        `json:"id"`
	User        UserCompact `json:"user"`
	TripPostUID string      `json:"trip_post_uid"`
	TripTitle   string      `json:"trip_title"`
	Destination string      `json:"destination"`
	SavedAt     time.Time   `json:"saved_at"`
}

func NewSavedPostView(s *SavedPost) SavedPostView {
	return SavedPostView{
		ID:          s.ID,
		User:        s.User.ToCompact(),
		TripPostUID: s.TripPost.UID,
		TripTitle:   s.TripPost.Title,
		Destination: s.TripPost.Destination,
		SavedAt:     s.SavedAt,
	}
}

func NewSavedPostViews(ss []SavedPost) []SavedPostView {
	views := make([]SavedPostView, len(ss))
	for i := range ss {
		views[i] = NewSavedPostView(&ss[i])
	}
	return views
}
