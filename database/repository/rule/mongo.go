package ruleRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"officescheduler/models"
)

// RuleDocument mirrors a configuration row; Source is the team's config id.
type RuleDocument struct {
	Source   string `bson:"source"`
	Position int    `bson:"position"`
	Day      string `bson:"day"`
	TimeSlot string `bson:"timeSlot"`
	Type     string `bson:"type"`
	Label    string `bson:"label"`
}

type mongoRuleRepo struct {
	coll *mongo.Collection
}

// NewMongoRuleRepo constructs a RuleRepository over the block_rules collection.
func NewMongoRuleRepo(db *mongo.Database) RuleRepository {
	return &mongoRuleRepo{coll: db.Collection("block_rules")}
}

func (r *mongoRuleRepo) GetBySource(ctx context.Context, sourceID string) ([]models.BlockRule, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "position", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"source": sourceID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []RuleDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	rules := make([]models.BlockRule, 0, len(docs))
	for _, d := range docs {
		if rule, ok := toRule(d.Day, d.TimeSlot, d.Type, d.Label); ok {
			rules = append(rules, rule)
		}
	}
	return rules, nil
}

// EnsureIndexes creates the lookup index on the block_rules collection.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := db.Collection("block_rules").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "source", Value: 1}, {Key: "position", Value: 1}},
		Options: options.Index().SetName("source_position_idx"),
	})
	if err != nil {
		return fmt.Errorf("failed to create block_rules indexes: %w", err)
	}
	return nil
}
