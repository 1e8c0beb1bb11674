package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Activity is one entry of the audit trail stored in MongoDB
type Activity struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Type       string             `json:"type" bson:"type"`
	ActorUID   string             `json:"actor_uid,omitempty" bson:"actor_uid,omitempty"`
	SubjectUID string             `json:"subject_uid,omitempty" bson:"subject_uid,omitempty"`
	Payload    map[string]any     `json:"payload,omitempty" bson:"payload,omitempty"`
	OccurredAt time.Time          `json:"occurred_at" bson:"occurred_at"`
}
