package main

import (
	"context"

	"hostbook/internal/bookings/events"
	"hostbook/internal/bookings/handler"
	"hostbook/internal/bookings/service"
	"hostbook/internal/bookings/validator"
	calendarhandler "hostbook/internal/calendar/handler"
	"hostbook/internal/calendar/repository"
	guestrepository "hostbook/internal/guests/repository"
	hostrepository "hostbook/internal/hosts/repository"
	"hostbook/pkg/app"
	"hostbook/pkg/config"
	"hostbook/pkg/kafka"
	kafka_config "hostbook/pkg/kafka/config"
	kafka_middleware "hostbook/pkg/kafka/middleware"
	"hostbook/pkg/model"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)

	cfg.Log.Info("Starting Bookings service")
	metrics := kafka_middleware.NewMetrics()
	publisher := initPublisher(cfg, metrics)
	reservationService := initServices(cfg, publisher)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewReservationHandler(reservationService, cfg.Log),
		calendarhandler.NewHealthHandler(cfg.ReservationsDir, cfg.Log),
	)
	serverApp.OnShutdown(func(context.Context) {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
		if cfg.EventsEnabled {
			metrics.LogSummary(cfg.Log)
		}
	})
	serverApp.Run()
}

func initServices(cfg *config.Config, publisher events.Publisher) service.ReservationService {
	validate, err := model.NewValidator()
	if err != nil {
		cfg.Log.Fatal("Failed to build validator", "error", err)
	}

	reservationRepo := repository.NewFileReservationRepository(cfg.ReservationsDir, cfg.Log)
	hostRepo := hostrepository.NewFileHostRepository(cfg.HostsFile, validate, cfg.Log)
	guestRepo := guestrepository.NewFileGuestRepository(cfg.GuestsFile, validate, cfg.Log)

	reservationService := service.NewReservationService(
		reservationRepo,
		hostRepo,
		guestRepo,
		validator.NewReservationValidator(validate, cfg.Log),
		publisher,
		cfg,
	)

	cfg.Log.Info("Reservation service initialized", "reservations_dir", cfg.ReservationsDir)
	return reservationService
}

func initPublisher(cfg *config.Config, metrics *kafka_middleware.Metrics) events.Publisher {
	if !cfg.EventsEnabled {
		cfg.Log.Info("Reservation events disabled")
		return events.NewNopPublisher()
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.EventsTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(kafka_middleware.MetricsProducerMiddleware(metrics))

	cfg.Log.Info("Reservation events enabled", "topic", cfg.EventsTopic, "brokers", kafkaCfg.Brokers)
	return events.NewKafkaPublisher(producer)
}
