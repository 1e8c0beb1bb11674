package models

import "time"

const JoinRequestPending = "PENDING"

// JoinRequest is a user's request to join a trip post. Status is free-form.
type JoinRequest struct {
	ID             uint      `gorm:"primaryKey"`
	UID            string    `gorm:"size:36;uniqueIndex;not null"`
	TripPostID     uint      `gorm:"index;not null"`
	TripPost       TripPost  `gorm:"foreignKey:TripPostID"`
	UserID         uint      `gorm:"index;not null"`
	User           User      `gorm:"foreignKey:UserID"`
	RequesterName  string    `gorm:"size:100"`
	ContactInfo    string    `gorm:"size:100"`
	Occupation     string    `gorm:"size:100"`
	Address        string
	Age            int
	Gender         string    `gorm:"size:20"`
	PersonQuantity int
	Status         string    `gorm:"type:varchar(20);not null;default:'PENDING'"`
	Deleted        bool      `gorm:"not null;default:false;index"`
	CreatedDate    time.Time `gorm:"column:created_date;autoCreateTime"`
	ModifiedDate   time.Time `gorm:"column:modified_date;autoUpdateTime"`
}

type CreateJoinRequest struct {
	TripPostUID    string `json:"trip_post_uid" validate:"required,uuid"`
	RequesterName  string `json:"requester_name" validate:"required,max=100"`
	ContactInfo    string `json:"contact_info" validate:"required,max=100"`
	Occupation     string `json:"occupation" validate:"max=100"`
	Address        string `json:"address" validate:"max=255"`
	Age            int    `json:"age" validate:"gte=0,lte=150"`
	Gender         string `json:"gender" validate:"max=20"`
	PersonQuantity int    `json:"person_quantity" validate:"gte=1"`
}

type UpdateJoinRequest struct {
	RequesterName  *string `json:"requester_name" validate:"omitempty,max=100"`
	ContactInfo    *string `json:"contact_info" validate:"omitempty,max=100"`
	Occupation     *string `json:"occupation" validate:"omitempty,max=100"`
	Address        *string `json:"address" validate:"omitempty,max=255"`
	Age            *int    `json:"age" validate:"omitempty,gte=0,lte=150"`
	Gender         *string `json:"gender" validate:"omitempty,max=20"`
	PersonQuantity *int    `json:"person_quantity" validate:"omitempty,gte=1"`
}

type UpdateJoinRequestStatus struct {
	Status string `json:"status" validate:"required,max=20"`
}

type JoinRequestView struct {
	UID            string      `json:"uid"`
	TripPostUID    string      `json:"trip_post_uid"`
	TripTitle      string      `json:"trip_title"`
	Requester      UserCompact `json:"requester"`
	RequesterName  string      `json:"requester_name"`
	ContactInfo    string      `json:"contact_info"`
	Occupation     string      `json:"occupation"`
	Address        string      `json:"address"`
	Age            int         `json:"age"`
	Gender         string      `json:"gender"`
	PersonQuantity int         `json:"person_quantity"`
	Status         string      `json:"status"`
	CreatedDate    time.Time   `json:"created_date"`
	ModifiedDate   time.Time   `json:"modified_date"`
}

// NewJoinRequestView expects TripPost and User preloaded.
func NewJoinRequestView(r *JoinRequest) JoinRequestView {
	return JoinRequestView{
		UID:            r.UID,
		TripPostUID:    r.TripPost.UID,
		TripTitle:      r.TripPost.Title,
		Requester:      r.User.ToCompact(),
		RequesterName:  r.RequesterName,
		ContactInfo:    r.ContactInfo,
		Occupation:     r.Occupation,
		Address:        r.Address,
		Age:            r.Age,
		Gender:         r.Gender,
		PersonQuantity: r.PersonQuantity,
		Status:         r.Status,
		CreatedDate:    r.CreatedDate,
		ModifiedDate:   r.ModifiedDate,
	}
}

func NewJoinRequestViews(rs []JoinRequest) []JoinRequestView {
	views := make([]JoinRequestView, len(rs))
	for i := range rs {
		views[i] = NewJoinRequestView(&rs[i])
	}
	return views
}
