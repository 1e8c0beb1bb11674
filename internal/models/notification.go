package models

import "time"

// Notification represents a user notification
type Notification struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"index;not null"`
	User      User      `gorm:"foreignKey:UserID"`
	Message   string    `gorm:"type:text;not null"`
	IsRead    bool      `gorm:"not null;default:false;index"`
	CreatedAt time.Time `gorm:"index"`
}

type CreateNotificationRequest struct {
	UserUID string `json:"user_uid" validate:"required,uuid"`
	Message string `json:"message" validate:"required,max=1000"`
}

type NotificationView struct {
	ID        uint      `json:"id"`
	UserUID   string    `json:"user_uid"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func NewNotificationView(n *Notification) NotificationView {
	return NotificationView{
		ID:        n.ID,
		UserUID:   n.User.UID,
		Message:   n.Message,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

func NewNotificationViews(ns []Notification) []NotificationView {
	views := make([]NotificationView, len(ns))
	for i := range ns {
		views[i] = NewNotificationView(&ns[i])
	}
	return views
}
