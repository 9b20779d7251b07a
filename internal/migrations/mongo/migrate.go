package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hostbook/internal/migrations/mongo/validators"
	"hostbook/pkg/logger"
	"hostbook/pkg/model"
)

const (
	ReservationsCollection = "Reservations"

	batchSize = 500
)

var ReservationsIndexes = []mongo.IndexModel{
	{Keys: bson.D{
		{Key: "host_id", Value: 1},
		{Key: "start_date", Value: 1},
	}},
	{Keys: bson.D{
		{Key: "guest_id", Value: 1},
		{Key: "start_date", Value: 1},
	}},
}

// ReservationDocument is one calendar record in Mongo. _id is the global
// reservation id, so re-running the export replaces instead of duplicating.
type ReservationDocument struct {
	ID         int                  `bson:"_id"`
	HostID     string               `bson:"host_id"`
	GuestID    string               `bson:"guest_id"`
	StartDate  time.Time            `bson:"start_date"`
	EndDate    time.Time            `bson:"end_date"`
	Nights     int                  `bson:"nights"`
	Total      primitive.Decimal128 `bson:"total"`
	ExportedAt time.Time            `bson:"exported_at"`
}

// CalendarSource is the read side of the calendar store.
type CalendarSource interface {
	HostIDs() ([]string, error)
	FindByHost(hostID string) ([]model.Reservation, error)
}

// ReservationWriter is the subset of *mongo.Collection the export needs.
type ReservationWriter interface {
	BulkWrite(ctx context.Context, models []mongo.WriteModel, opts ...*options.BulkWriteOptions) (*mongo.BulkWriteResult, error)
	DeleteMany(ctx context.Context, filter any, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

type ExportResult struct {
	Hosts        int
	Reservations int
	Upserted     int64
	Modified     int64
	Deleted      int64
}

// RunMigration ensures the Reservations collection, its schema validator and
// indexes exist.
func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	if err := ensureCollection(ctx, db, ReservationsCollection, validators.ReservationValidator, log); err != nil {
		return fmt.Errorf("failed to ensure collection %s: %w", ReservationsCollection, err)
	}
	if err := ensureIndexes(ctx, db, ReservationsCollection, ReservationsIndexes, log); err != nil {
		return fmt.Errorf("failed to ensure indexes for %s: %w", ReservationsCollection, err)
	}

	log.Info("All migrations applied successfully")
	return nil
}

// ExportCalendars upserts every reservation of every calendar into writer,
// then deletes documents whose reservation no longer exists.
func ExportCalendars(ctx context.Context, source CalendarSource, writer ReservationWriter, exportedAt time.Time, log *logger.Logger) (ExportResult, error) {
	var result ExportResult
	exported := make([]int, 0)

	hostIDs, err := source.HostIDs()
	if err != nil {
		return result, fmt.Errorf("list calendars: %w", err)
	}

	batch := make([]mongo.WriteModel, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		res, err := writer.BulkWrite(ctx, batch, options.BulkWrite().SetOrdered(false))
		if err != nil {
			return fmt.Errorf("write %d reservations: %w", len(batch), err)
		}
		result.Upserted += res.UpsertedCount
		result.Modified += res.ModifiedCount
		batch = batch[:0]
		return nil
	}

	for _, hostID := range hostIDs {
		reservations, err := source.FindByHost(hostID)
		if err != nil {
			return result, fmt.Errorf("read calendar for host %s: %w", hostID, err)
		}
		result.Hosts++

		for _, r := range reservations {
			doc, err := ToDocument(r, exportedAt)
			if err != nil {
				log.Warn("Skipping reservation that cannot be exported",
					"host_id", hostID,
					"id", r.ID,
					"error", err,
				)
				continue
			}
			batch = append(batch, mongo.NewReplaceOneModel().
				SetFilter(bson.D{{Key: "_id", Value: doc.ID}}).
				SetReplacement(doc).
				SetUpsert(true))
			exported = append(exported, doc.ID)
			result.Reservations++

			if len(batch) == batchSize {
				if err := flush(); err != nil {
					return result, err
				}
			}
		}
	}

	if err := flush(); err != nil {
		return result, err
	}

	deleted, err := writer.DeleteMany(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$nin", Value: exported}}}})
	if err != nil {
		return result, fmt.Errorf("prune cancelled reservations: %w", err)
	}
	result.Deleted = deleted.DeletedCount

	log.Info("Calendar export completed",
		"hosts", result.Hosts,
		"reservations", result.Reservations,
		"upserted", result.Upserted,
		"modified", result.Modified,
		"deleted", result.Deleted,
	)
	return result, nil
}

func ToDocument(r model.Reservation, exportedAt time.Time) (ReservationDocument, error) {
	total, err := primitive.ParseDecimal128(r.Total.String())
	if err != nil {
		return ReservationDocument{}, fmt.Errorf("total %s: %w", r.Total, err)
	}
	return ReservationDocument{
		ID:         r.ID,
		HostID:     r.HostID,
		GuestID:    r.GuestID,
		StartDate:  r.StartDate,
		EndDate:    r.EndDate,
		Nights:     r.Nights(),
		Total:      total,
		ExportedAt: exportedAt.UTC(),
	}, nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
	} else {
		log.Info("Collection already exists, updating validator", "collection", name)
		command := bson.D{
			{Key: "collMod", Value: name},
			{Key: "validator", Value: validator},
		}
		if err := db.RunCommand(ctx, command).Err(); err != nil {
			log.Warn("Failed updating validator", "collection", name, "error", err)
		}
	}

	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	coll := db.Collection(name)
	if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
