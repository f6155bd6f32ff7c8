package shiftRepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"officescheduler/models"
)

type mongoShiftRepo struct {
	coll *mongo.Collection
}

// NewMongoShiftRepo stores shifts in the shifts collection; targetID is kept
// on every document so several teams can share the collection.
func NewMongoShiftRepo(db *mongo.Database) ShiftRepository {
	return &mongoShiftRepo{coll: db.Collection("shifts")}
}

type shiftDocument struct {
	models.ShiftRecord `bson:",inline"`
	Target             string     `bson:"target"`
	ArchivedAt         *time.Time `bson:"archivedAt,omitempty"`
}

func (r *mongoShiftRepo) FindByDate(ctx context.Context, targetID, date string) ([]models.ShiftRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"target": targetID, "date": date, "archived": false}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []shiftDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	records := make([]models.ShiftRecord, 0, len(docs))
	for _, d := range docs {
		records = append(records, d.ShiftRecord)
	}
	return records, nil
}

func (r *mongoShiftRepo) Archive(ctx context.Context, targetID, recordID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": recordID, "target": targetID},
		bson.M{"$set": bson.M{"archived": true, "archivedAt": now}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *mongoShiftRepo) Create(ctx context.Context, targetID string, record models.ShiftRecord) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	record.Archived = false
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	if _, err := r.coll.InsertOne(ctx, shiftDocument{ShiftRecord: record, Target: targetID}); err != nil {
		return "", err
	}
	return record.ID, nil
}

// EnsureIndexes creates the necessary indexes on the shifts collection.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// Duplicate lookup at submit time.
		{
			Keys:    bson.D{{Key: "target", Value: 1}, {Key: "date", Value: 1}, {Key: "archived", Value: 1}},
			Options: options.Index().SetName("target_date_archived_idx"),
		},
	}
	if _, err := db.Collection("shifts").Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create shift indexes: %w", err)
	}
	return nil
}
