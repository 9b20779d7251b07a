package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"hostbook/internal/bookings/events"
	"hostbook/pkg/config"
	"hostbook/pkg/kafka"
	kafka_config "hostbook/pkg/kafka/config"
	kafka_middleware "hostbook/pkg/kafka/middleware"
)

func NewEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Reservation change events",
	}
	cmd.AddCommand(newWatchCmd())
	return cmd
}

func newWatchCmd() *cobra.Command {
	var groupID string
	var fromBeginning bool
	c := &cobra.Command{
		Use:   "watch",
		Short: "Print reservation events as they are published",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadCLI(ServiceName, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			kafkaCfg, err := kafka_config.Load()
			if err != nil {
				return err
			}
			if groupID == "" {
				groupID = kafkaCfg.ConsumerGroupID
			}
			if fromBeginning {
				kafkaCfg.ConsumerStartOffset = -2
			}

			consumer, err := kafka.NewConsumer(kafkaCfg, cfg.EventsTopic, groupID, NewEventPrinter(cmd.OutOrStdout()), cfg.Log)
			if err != nil {
				return err
			}
			metrics := kafka_middleware.NewMetrics()
			consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
			consumer.Use(kafka_middleware.MetricsConsumerMiddleware(metrics))

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg.Log.Info("Watching reservation events", "topic", cfg.EventsTopic, "group_id", groupID)
			err = consumer.Start(ctx)
			if closeErr := consumer.Close(); closeErr != nil {
				cfg.Log.Warn("Failed to close consumer", "error", closeErr)
			}
			metrics.LogSummary(cfg.Log)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	c.Flags().StringVar(&groupID, "group", "", "consumer group id (default from KAFKA_CONSUMER_GROUP_ID)")
	c.Flags().BoolVar(&fromBeginning, "from-beginning", false, "read the topic from the oldest retained event")
	return c
}

// NewEventPrinter writes one line per decoded event. Records that are not
// reservation events fail the handler and are skipped by the consumer.
func NewEventPrinter(out io.Writer) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		event, err := events.Decode(msg)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "%s %s\n", event.OccurredAt.Format(time.RFC3339), event)
		return err
	}
}
