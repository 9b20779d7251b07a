package cli

import (
	"github.com/spf13/cobra"

	"hostbook/internal/bookings/events"
	"hostbook/internal/bookings/service"
	"hostbook/internal/bookings/validator"
	"hostbook/internal/calendar/repository"
	guestrepository "hostbook/internal/guests/repository"
	hostrepository "hostbook/internal/hosts/repository"
	"hostbook/pkg/config"
	"hostbook/pkg/kafka"
	kafka_config "hostbook/pkg/kafka/config"
	kafka_middleware "hostbook/pkg/kafka/middleware"
	"hostbook/pkg/model"
)

const ServiceName = "hostbook-cli"

// ServiceFactory builds the booking engine for one command invocation. The
// returned func releases whatever the engine holds open.
type ServiceFactory func(cmd *cobra.Command) (service.ReservationService, func(), error)

// FileServiceFactory wires the engine to the flat-file store named by the
// environment. Logs go to stderr so command output stays clean.
func FileServiceFactory(cmd *cobra.Command) (service.ReservationService, func(), error) {
	cfg, err := config.LoadCLI(ServiceName, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}

	validate, err := model.NewValidator()
	if err != nil {
		return nil, nil, err
	}

	metrics := kafka_middleware.NewMetrics()
	publisher, err := newPublisher(cfg, metrics)
	if err != nil {
		return nil, nil, err
	}

	svc := service.NewReservationService(
		repository.NewFileReservationRepository(cfg.ReservationsDir, cfg.Log),
		hostrepository.NewFileHostRepository(cfg.HostsFile, validate, cfg.Log),
		guestrepository.NewFileGuestRepository(cfg.GuestsFile, validate, cfg.Log),
		validator.NewReservationValidator(validate, cfg.Log),
		publisher,
		cfg,
	)

	cleanup := func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Warn("Failed to close event publisher", "error", err)
		}
		if cfg.EventsEnabled {
			metrics.LogSummary(cfg.Log)
		}
	}
	return svc, cleanup, nil
}

func newPublisher(cfg *config.Config, metrics *kafka_middleware.Metrics) (events.Publisher, error) {
	if !cfg.EventsEnabled {
		return events.NewNopPublisher(), nil
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		return nil, err
	}
	producer, err := kafka.NewProducer(kafkaCfg, cfg.EventsTopic, cfg.Log)
	if err != nil {
		return nil, err
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(kafka_middleware.MetricsProducerMiddleware(metrics))
	return events.NewKafkaPublisher(producer), nil
}
