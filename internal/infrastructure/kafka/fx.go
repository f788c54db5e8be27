package kafka

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Conte777/NewsFlow/services/music-service/config"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/music/deps"
	"github.com/Conte777/NewsFlow/services/music-service/internal/infrastructure/metrics"
)

// Module provides the ingest event publisher for fx DI
var Module = fx.Module("kafka",
	fx.Provide(NewPublisherFx),
)

// NewPublisherFx creates the Kafka publisher, or a no-op one when Kafka is disabled
func NewPublisherFx(
	lc fx.Lifecycle,
	kafkaCfg *config.KafkaConfig,
	m *metrics.Metrics,
	logger zerolog.Logger,
) (deps.EventPublisher, error) {
	if !kafkaCfg.Enabled {
		logger.Info().Msg("Kafka disabled, music ingested events are not published")
		return NoopPublisher{}, nil
	}

	publisher, err := NewPublisher(PublisherConfig{
		Brokers: kafkaCfg.Brokers,
		Topic:   kafkaCfg.TopicMusicIngested,
		Metrics: m,
		Logger:  logger.With().Str("component", "kafka-publisher").Logger(),
	})
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return publisher.Close()
		},
	})

	return publisher, nil
}
