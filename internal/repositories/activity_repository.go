package repositories

import (
	"context"
	"time"

	"github.com/journeymate/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ActivityRepository persists the audit trail of mutating actions
type ActivityRepository interface {
	InsertActivity(ctx context.Context, activity *models.Activity) error
	ListRecent(ctx context.Context, limit int64) ([]models.Activity, error)
	ListBySubject(ctx context.Context, subjectUID string, limit int64) ([]models.Activity, error)
}

// MongoActivityRepository implements ActivityRepository for MongoDB
type MongoActivityRepository struct {
	collection *mongo.Collection
}

// NewMongoActivityRepository creates a new MongoActivityRepository
func NewMongoActivityRepository(db *mongo.Database) *MongoActivityRepository {
	return &MongoActivityRepository{collection: db.Collection("activities")}
}

func (r *MongoActivityRepository) InsertActivity(ctx context.Context, activity *models.Activity) error {
	activity.ID = primitive.NewObjectID()
	if activity.OccurredAt.IsZero() {
		activity.OccurredAt = time.Now().UTC()
	}
	_, err := r.collection.InsertOne(ctx, activity)
	return err
}

// ListRecent returns the newest activities first
func (r *MongoActivityRepository) ListRecent(ctx context.Context, limit int64) ([]models.Activity, error) {
	return r.find(ctx, bson.M{}, limit)
}

// ListBySubject returns the newest activities about one resource
func (r *MongoActivityRepository) ListBySubject(ctx context.Context, subjectUID string, limit int64) ([]models.Activity, error) {
	return r.find(ctx, bson.M{"subject_uid": subjectUID}, limit)
}

func (r *MongoActivityRepository) find(ctx context.Context, filter bson.M, limit int64) ([]models.Activity, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "occurred_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	activities := []models.Activity{}
	if err = cursor.All(ctx, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}
