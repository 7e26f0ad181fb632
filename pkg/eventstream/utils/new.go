package eventstreamutils

import (
	"fmt"
	"log/slog"

	"github.com/chatspace-app/chatspace/pkg/config"
	"github.com/chatspace-app/chatspace/pkg/eventstream"
	"github.com/chatspace-app/chatspace/pkg/eventstream/async"
	"github.com/chatspace-app/chatspace/pkg/eventstream/kafka"
	"github.com/chatspace-app/chatspace/pkg/eventstream/nop"
)

// NewPublisher builds the publisher named by cfg.Provider. Network-backed
// publishers are wrapped in an async pool.
func NewPublisher(cfg config.EventsConfig, logger *slog.Logger) (eventstream.Publisher, error) {
	switch cfg.Provider {
	case config.EventsProviderNone, "":
		return nop.NewPublisher(), nil

	case config.EventsProviderKafka:
		kp, err := kafka.NewPublisher(kafka.Config{
			Brokers: cfg.BrokerList(),
			Topic:   cfg.Topic,
		})
		if err != nil {
			return nil, fmt.Errorf("creating kafka publisher: %w", err)
		}

		return async.NewPool(&async.Config{
			Publisher: kp,
			Logger:    logger.With("component", "eventstream", "provider", config.EventsProviderKafka),
		})

	default:
		return nil, fmt.Errorf("unsupported events provider: %s", cfg.Provider)
	}
}
