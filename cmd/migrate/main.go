package main

import (
	"context"
	"time"

	"hostbook/internal/calendar/repository"
	mongoMigration "hostbook/internal/migrations/mongo"
	"hostbook/pkg/config"
	dbmongo "hostbook/pkg/db/mongo"
)

const JobName = "mongo-export"

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	if err := cfg.SetMongo(); err != nil {
		cfg.Log.Fatal("Failed to connect to MongoDB", "error", err)
	}
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Mongo export job")
	if err := exportCalendars(ctx, cfg); err != nil {
		cfg.GracefulShutdown()
		cfg.Log.Fatal("Export failed", "error", err)
	}
	cfg.Log.Info("Export completed successfully")
}

func exportCalendars(ctx context.Context, cfg *config.Config) error {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	if err := mongoMigration.RunMigration(ctx, db, cfg.Log); err != nil {
		return err
	}

	repo := repository.NewFileReservationRepository(cfg.ReservationsDir, cfg.Log)
	coll := db.Collection(mongoMigration.ReservationsCollection)
	tx := dbmongo.NewManager(cfg.Client.Mongo, cfg.MongoTransactions)

	return tx.ExecuteTransaction(ctx, func(ctx context.Context) error {
		_, err := mongoMigration.ExportCalendars(ctx, repo, coll, time.Now(), cfg.Log)
		return err
	})
}
