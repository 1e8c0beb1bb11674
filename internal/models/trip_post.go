package models

import "time"

// DateLayout is the wire format of every calendar date.
const DateLayout = "2006-01-02"

// TripPost is a trip offered by its creator for others to join.
type TripPost struct {
	ID                 uint        `gorm:"primaryKey"`
	UID                string      `gorm:"size:36;uniqueIndex;not null"`
	UserID             uint        `gorm:"index;not null"`
	User               User        `gorm:"foreignKey:UserID"`
	Title              string      `gorm:"size:100;not null"`
	Description        string      `gorm:"type:text;not null"`
	Destination        string      `gorm:"size:150"`
	Price              float64     `gorm:"type:numeric(12,2)"`
	Preference         string      `gorm:"size:100"`
	MinAge             int
	MaxAge             int
	Gender             string `gorm:"size:20"`
	PersonType         string `gorm:"size:50"`
	PersonCount        int
	TripStartingDate   time.Time
	TripEndingDate     time.Time
	PostExpireDate     time.Time `gorm:"index"`
	TripDuration       int
	TripTransportation string      `gorm:"size:100"`
	Deleted            bool        `gorm:"not null;default:false;index"`
	Images             []TripImage `gorm:"foreignKey:TripPostID"`
	CreatedDate        time.Time   `gorm:"column:created_date;autoCreateTime"`
	ModifiedDate       time.Time   `gorm:"column:modified_date;autoUpdateTime"`
}

// TripImage points at a file in the upload directory.
type TripImage struct {
	ID           uint      `gorm:"primaryKey"`
	UID          string    `gorm:"size:36;uniqueIndex;not null"`
	TripPostID   uint      `gorm:"index;not null"`
	ImageURL     string    `gorm:"not null"`
	UploadedDate time.Time `gorm:"column:uploaded_date;autoCreateTime"`
}

// TripPostRequest arrives either as JSON or as multipart form fields next to the "images" files.
type TripPostRequest struct {
	Title              string  `json:"title" form:"title" validate:"required,max=100"`
	Description        string  `json:"description" form:"description" validate:"required"`
	Destination        string  `json:"destination" form:"destination" validate:"required,max=150"`
	Amount             float64 `json:"amount" form:"amount" validate:"gte=0"`
	Preference         string  `json:"preference" form:"preference" validate:"max=100"`
	MinAge             int     `json:"min_age" form:"min_age" validate:"gte=0,lte=150"`
	MaxAge             int     `json:"max_age" form:"max_age" validate:"gte=0,lte=150"`
	Gender             string  `json:"gender" form:"gender" validate:"max=20"`
	PersonType         string  `json:"person_type" form:"person_type" validate:"max=50"`
	PersonCount        int     `json:"person_count" form:"person_count" validate:"gte=0"`
	PostExpireDate     string  `json:"post_expire_date" form:"post_expire_date" validate:"required,datetime=2006-01-02"`
	TripStartingDate   string  `json:"trip_starting_date" form:"trip_starting_date" validate:"required,datetime=2006-01-02"`
	TripEndingDate     string  `json:"trip_ending_date" form:"trip_ending_date" validate:"required,datetime=2006-01-02"`
	TripTransportation string  `json:"trip_transportation" form:"trip_transportation" validate:"max=100"`
}

// TripPostView is the projection returned by every trip endpoint.
type TripPostView struct {
	UID                string   `json:"uid"`
	CreatorUID         string   `json:"creator_uid"`
	CreatorName        string   `json:"creator_name"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Destination        string   `json:"destination"`
	Amount             float64  `json:"amount"`
	Duration           int      `json:"duration"`
	Preference         string   `json:"preference"`
	MinAge             int      `json:"min_age"`
	MaxAge             int      `json:"max_age"`
	Gender             string   `json:"gender"`
	PersonType         string   `json:"person_type"`
	PersonCount        int      `json:"person_count"`
	PostExpireDate     string   `json:"post_expire_date"`
	TripStartingDate   string   `json:"trip_starting_date"`
	TripEndingDate     string   `json:"trip_ending_date"`
	TripTransportation string   `json:"trip_transportation"`
	Images             []string `json:"images,omitempty"`
	Image              string   `json:"image,omitempty"`
	Rating             float64  `json:"rating"`
}

// NewTripPostView maps a post with its creator preloaded.
func NewTripPostView(p *TripPost, rating float64) TripPostView {
	return TripPostView{
		UID:                p.UID,
		CreatorUID:         p.User.UID,
		CreatorName:        p.User.FullName,
		Title:              p.Title,
		Description:        p.Description,
		Destination:        p.Destination,
		Amount:             p.Price,
		Duration:           p.TripDuration,
		Preference:         p.Preference,
		MinAge:             p.MinAge,
		MaxAge:             p.MaxAge,
		Gender:             p.Gender,
		PersonType:         p.PersonType,
		PersonCount:        p.PersonCount,
		PostExpireDate:     p.PostExpireDate.Format(DateLayout),
		TripStartingDate:   p.TripStartingDate.Format(DateLayout),
		TripEndingDate:     p.TripEndingDate.Format(DateLayout),
		TripTransportation: p.TripTransportation,
		Rating:             rating,
	}
}

// TripRating is the feedback aggregate of one post.
type TripRating struct {
	TripPostID uint
	Total      int64
	Count      int64
}

// Average is 0 for posts without feedback.
func (r TripRating) Average() float64 {
	if r.Count == 0 {
		return 0
	}
	return float64(r.Total) / float64(r.Count)
}
