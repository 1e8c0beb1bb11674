package models

import "time"

// Message is a stored direct message. Delivery is by polling only.
type Message struct {
	ID         uint      `gorm:"primaryKey"`
	SenderID   uint      `gorm:"index;not null"`
	Sender     User      `gorm:"foreignKey:SenderID"`
	ReceiverID uint      `gorm:"index;not null"`
	Receiver   User      `gorm:"foreignKey:ReceiverID"`
	Content    string    `gorm:"type:text;not null"`
	SentAt     time.Time `gorm:"autoCreateTime"`
}

type SendMessageRequest struct {
	ReceiverUID string `json:"receiver_uid" validate:"required,uuid"`
	Content     string `json:"content" validate:"required,max=2000"`
}

type MessageView struct {
	ID       uint        `json:"id"`
	Sender   UserCompact `json:"sender"`
	Receiver UserCompact `json:"receiver"`
	Content  string      `json:"content"`
	SentAt   time.Time   `json:"sent_at"`
}

func NewMessageView(m *Message) MessageView {
	return MessageView{
		ID:       m.ID,
		Sender:   m.Sender.ToCompact(),
		Receiver: m.Receiver.ToCompact(),
		Content:  m.Content,
		SentAt:   m.SentAt,
	}
}

func NewMessageViews(ms []Message) []MessageView {
	views := make([]MessageView, len(ms))
	for i := range ms {
		views[i] = NewMessageView(&ms[i])
	}
	return views
}
