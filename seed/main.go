// Command seed fills a MongoDB backend with sample block rules and staff so
// the server can be run locally with STORE_BACKEND=mongo.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"officescheduler/config"
	"officescheduler/database"
	ruleRepo "officescheduler/database/repository/rule"
	shiftRepo "officescheduler/database/repository/shift"
	staffRepo "officescheduler/database/repository/staff"
	"officescheduler/models"
)

// sampleRules builds one team's week: the given mandatory blocks, Sunday off
// and everything else left to the grid default.
func sampleRules(source string, mandatory map[models.DayLabel][]models.TimeSlot) []interface{} {
	var docs []interface{}
	position := 0
	for _, day := range models.Days {
		for _, slot := range mandatory[day] {
			docs = append(docs, ruleRepo.RuleDocument{
				Source:   source,
				Position: position,
				Day:      string(day),
				TimeSlot: string(slot),
				Type:     string(models.KindMandatory),
				Label:    "Ca trực " + string(slot),
			})
			position++
		}
	}
	for _, slot := range models.TimeSlots {
		docs = append(docs, ruleRepo.RuleDocument{
			Source:   source,
			Position: position,
			Day:      string(models.Sunday),
			TimeSlot: string(slot),
			Type:     string(models.KindOff),
		})
		position++
	}
	return docs
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	db := client.Database(cfg.DatabaseName)

	teams := cfg.TeamDirectory()
	var rules []interface{}
	var staff []interface{}
	for i, name := range teams.Names() {
		entry, _ := teams.Lookup(name)
		if entry.ConfigID == "" {
			log.Printf("%s has no config id, skipping its block rules", name)
		} else {
			mandatory := map[models.DayLabel][]models.TimeSlot{
				models.Days[i%5]:     {models.TimeSlots[0]},
				models.Days[(i+2)%5]: {models.TimeSlots[2], models.TimeSlots[3]},
			}
			rules = append(rules, sampleRules(entry.ConfigID, mandatory)...)
		}

		for n := 1; n <= 3; n++ {
			staff = append(staff, models.StaffRecord{
				Name:        fmt.Sprintf("Nhân viên %d.%d", i+1, n),
				Email:       fmt.Sprintf("staff%d.%d@example.com", i+1, n),
				CommitHours: 10 * n,
				Teams:       []string{name},
			})
		}
	}

	if err := reset(ctx, db.Collection("block_rules"), rules); err != nil {
		log.Fatalf("Failed to seed block_rules: %v", err)
	}
	if err := reset(ctx, db.Collection("staff"), staff); err != nil {
		log.Fatalf("Failed to seed staff: %v", err)
	}

	for _, ensure := range []func(context.Context, *mongo.Database) error{
		ruleRepo.EnsureIndexes,
		staffRepo.EnsureIndexes,
		shiftRepo.EnsureIndexes,
	} {
		if err := ensure(ctx, db); err != nil {
			log.Fatalf("Failed to create indexes: %v", err)
		}
	}

	fmt.Printf("Seeded %d block rules and %d staff records for %d teams\n", len(rules), len(staff), len(teams.Names()))
}

// reset clears coll and inserts docs.
func reset(ctx context.Context, coll *mongo.Collection, docs []interface{}) error {
	if _, err := coll.DeleteMany(ctx, bson.M{}); err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}
	_, err := coll.InsertMany(ctx, docs)
	return err
}
