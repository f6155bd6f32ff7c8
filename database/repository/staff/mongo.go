package staffRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"officescheduler/models"
)

type mongoStaffRepo struct {
	coll *mongo.Collection
}

// NewMongoStaffRepo constructs a StaffRepository over the staff collection.
func NewMongoStaffRepo(db *mongo.Database) StaffRepository {
	return &mongoStaffRepo{coll: db.Collection("staff")}
}

func (r *mongoStaffRepo) List(ctx context.Context) ([]models.StaffRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var staff []models.StaffRecord
	if err := cursor.All(ctx, &staff); err != nil {
		return nil, err
	}
	for i := range staff {
		if staff[i].Name == "" {
			staff[i].Name = models.UnknownStaffName
		}
	}
	return staff, nil
}

// EnsureIndexes creates the membership index on the staff collection.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := db.Collection("staff").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "teams", Value: 1}},
			Options: options.Index().SetName("teams_idx"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email_idx"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create staff indexes: %w", err)
	}
	return nil
}
