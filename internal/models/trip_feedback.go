package models

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// TripFeedback is a rating one participant gives another for a trip.
type TripFeedback struct {
	ID           uint      `gorm:"primaryKey"`
	TripPostID   uint      `gorm:"index;not null"`
	TripPost     TripPost  `gorm:"foreignKey:TripPostID"`
	FromUserID   uint      `gorm:"index;not null"`
	FromUser     User      `gorm:"foreignKey:FromUserID"`
	ToUserID     uint      `gorm:"index;not null"`
	ToUser       User      `gorm:"foreignKey:ToUserID"`
	Rating       int       `gorm:"not null"`
	Comment      string    `gorm:"type:text"`
	CreatedDate  time.Time `gorm:"column:created_date;autoCreateTime"`
	ModifiedDate time.Time `gorm:"column:modified_date;autoUpdateTime"`
}

func (TripFeedback) TableName() string { return "trip_feedback" }

// CreateFeedbackRequest leaves the rating range check to the service.
type CreateFeedbackRequest struct {
	TripPostUID string `json:"trip_post_uid" validate:"required,uuid"`
	ToUserUID   string `json:"to_user_uid" validate:"required,uuid"`
	Rating      int    `json:"rating"`
	Comment     string `json:"comment" validate:"max=1000"`
}

type UpdateFeedbackRequest struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment" validate:"omitempty,max=1000"`
}

type FeedbackView struct {
	ID           uint        `json:"id"`
	TripPostUID  string      `json:"trip_post_uid"`
	TripTitle    string      `json:"trip_title"`
	From         UserCompact `json:"from"`
	To           UserCompact `json:"to"`
	Rating       int         `json:"rating"`
	Comment      string      `json:"comment"`
	CreatedDate  time.Time   `json:"created_date"`
	ModifiedDate time.Time   `json:"modified_date"`
}

func NewFeedbackView(f *TripFeedback) FeedbackView {
	return FeedbackView{
		ID:           f.ID,
		TripPostUID:  f.TripPost.UID,
		TripTitle:    f.TripPost.Title,
		From:         f.FromUser.ToCompact(),
		To:           f.ToUser.ToCompact(),
		Rating:       f.Rating,
		Comment:      f.Comment,
		CreatedDate:  f.CreatedDate,
		ModifiedDate: f.ModifiedDate,
	}
}

func NewFeedbackViews(fs []TripFeedback) []FeedbackView {
	views := make([]FeedbackView, len(fs))
	for i := range fs {
		views[i] = NewFeedbackView(&fs[i])
	}
	return views
}
