// internal/repositories/eventlog_mongo_repository.go
// Optional Mongo mirror of the Audit & Log Sink, for long-retention overflow
// storage. Only wired up when MONGO_URI is configured (see
// internal/database/connections.go); nil-safe throughout so callers can
// skip mirroring entirely in deployments without Mongo.
//
// Grounded on internal/repositories/user_preferences_repository.go's
// bson.M query + upsert idiom.

package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eventengine/internal/models"
)

type EventLogMongoRepository struct {
	collection *mongo.Collection
}

func NewEventLogMongoRepository(db *mongo.Database) *EventLogMongoRepository {
	if db == nil {
		return nil
	}
	return &EventLogMongoRepository{collection: db.Collection("event_logs_mirror")}
}

type eventLogDocument struct {
	EventSlug  string                 `bson:"event_slug"`
	EventID    *int                   `bson:"event_id,omitempty"`
	AdminID    int                    `bson:"admin_id"`
	AdminRegno string                 `bson:"admin_regno"`
	AdminName  string                 `bson:"admin_name"`
	Action     string                 `bson:"action"`
	Method     string                 `bson:"method"`
	Path       string                 `bson:"path"`
	Meta       map[string]interface{} `bson:"meta"`
	MirroredAt time.Time              `bson:"mirrored_at"`
}

// Mirror appends a copy of a MySQL event_logs row. Best-effort: callers
// should log and continue on error rather than fail the admin action.
func (r *EventLogMongoRepository) Mirror(ctx context.Context, l *models.EventLog) error {
	if r == nil {
		return nil
	}
	doc := eventLogDocument{
		EventSlug:  l.EventSlug,
		EventID:    l.EventID,
		AdminID:    l.AdminID,
		AdminRegno: l.AdminRegno,
		AdminName:  l.AdminName,
		Action:     l.Action,
		Method:     l.Method,
		Path:       l.Path,
		Meta:       l.Meta,
		MirroredAt: l.CreatedAt,
	}
	_, err := r.collection.InsertOne(ctx, doc)
	return err
}

// ListByEventSince supports long-window audit queries beyond what the
// primary store retains.
func (r *EventLogMongoRepository) ListByEventSince(ctx context.Context, eventSlug string, since time.Time) ([]map[string]interface{}, error) {
	if r == nil {
		return nil, nil
	}
	filter := bson.M{
		"event_slug": eventSlug,
		"mirrored_at": bson.M{"$gte": since},
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.M{"mirrored_at": -1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []map[string]interface{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}
