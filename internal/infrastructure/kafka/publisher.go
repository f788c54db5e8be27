package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/music/dto"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/music/entities"
	"github.com/Conte777/NewsFlow/services/music-service/internal/infrastructure/metrics"
)

// maxStoredErrors bounds the delivery errors kept for Close and IsHealthy
const maxStoredErrors = 100

// PublisherConfig holds configuration for the ingest event publisher
type PublisherConfig struct {
	Brokers         []string
	Topic           string
	MaxMessageBytes int
	MaxRetries      int
	Metrics         *metrics.Metrics
	Logger          zerolog.Logger
}

// Publisher sends music ingested events through an asynchronous producer
type Publisher struct {
	producer  sarama.AsyncProducer
	topic     string
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeMu   sync.Mutex
	closed    bool
	closeErr  error
	errorsMu  sync.Mutex
	errors    []error
}

// NewPublisher connects an idempotent async producer partitioned by chat id
func NewPublisher(cfg PublisherConfig) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers specified")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}
	if cfg.MaxMessageBytes <= 0 {
		cfg.MaxMessageBytes = 1000000
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}

	config := sarama.NewConfig()
	config.ClientID = "music-service-publisher"
	config.Version = sarama.V2_6_0_0
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Idempotent = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Net.MaxOpenRequests = 1
	config.Producer.MaxMessageBytes = cfg.MaxMessageBytes
	config.Producer.Retry.Max = cfg.MaxRetries
	config.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewAsyncProducer(cfg.Brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	p := newPublisher(producer, cfg.Topic, cfg.Metrics, cfg.Logger)

	cfg.Logger.Info().
		Strs("brokers", cfg.Brokers).
		Str("topic", cfg.Topic).
		Msg("Kafka publisher initialized")

	return p, nil
}

func newPublisher(producer sarama.AsyncProducer, topic string, m *metrics.Metrics, logger zerolog.Logger) *Publisher {
	p := &Publisher{
		producer: producer,
		topic:    topic,
		metrics:  m,
		logger:   logger,
		errors:   make([]error, 0),
	}

	p.wg.Add(2)
	go p.handleSuccesses()
	go p.handleErrors()

	return p
}

// PublishMusicIngested queues the event of a stored message; delivery is reported asynchronously
func (p *Publisher) PublishMusicIngested(ctx context.Context, message entities.MusicMessage) error {
	if message.ChatID == 0 || message.MessageID <= 0 {
		return fmt.Errorf("invalid music message %d/%d", message.ChatID, message.MessageID)
	}

	p.closeMu.Lock()
	closed := p.closed
	p.closeMu.Unlock()
	if closed {
		return errors.New("kafka publisher is closed")
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("context cancelled before sending: %w", ctx.Err())
	default:
	}

	value, err := json.Marshal(dto.NewMusicIngestedEvent(message))
	if err != nil {
		return fmt.Errorf("failed to marshal music ingested event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(strconv.FormatInt(message.ChatID, 10)),
		Value:     sarama.ByteEncoder(value),
		Timestamp: message.SentAt,
		Metadata:  time.Now(),
	}

	select {
	case p.producer.Input() <- msg:
		p.logger.Debug().
			Int64("chat_id", message.ChatID).
			Int64("message_id", message.MessageID).
			Msg("Music ingested event queued")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context cancelled while sending message: %w", ctx.Err())
	}
}

func (p *Publisher) handleSuccesses() {
	defer p.wg.Done()

	for msg := range p.producer.Successes() {
		if queuedAt, ok := msg.Metadata.(time.Time); ok {
			p.metrics.RecordKafkaMessage(time.Since(queuedAt).Seconds())
		}
		p.logger.Debug().
			Str("topic", msg.Topic).
			Int32("partition", msg.Partition).
			Int64("offset", msg.Offset).
			Msg("Message sent to Kafka")
	}
}

func (p *Publisher) handleErrors() {
	defer p.wg.Done()

	for producerErr := range p.producer.Errors() {
		p.metrics.RecordKafkaError("send")
		p.logger.Error().
			Err(producerErr.Err).
			Str("topic", producerErr.Msg.Topic).
			Interface("key", producerErr.Msg.Key).
			Msg("Failed to send message to Kafka")

		p.errorsMu.Lock()
		if len(p.errors) < maxStoredErrors {
			p.errors = append(p.errors, producerErr.Err)
		}
		p.errorsMu.Unlock()
	}
}

// IsHealthy reports whether the publisher is open and has not hit the error limit
func (p *Publisher) IsHealthy() bool {
	p.closeMu.Lock()
	closed := p.closed
	p.closeMu.Unlock()
	if closed {
		return false
	}

	p.errorsMu.Lock()
	defer p.errorsMu.Unlock()
	return len(p.errors) < maxStoredErrors
}

// Close flushes pending messages with a 10 second limit
func (p *Publisher) Close() error {
	return p.CloseWithTimeout(10 * time.Second)
}

// CloseWithTimeout flushes pending messages and reports delivery errors seen during operation
func (p *Publisher) CloseWithTimeout(timeout time.Duration) error {
	p.closeOnce.Do(func() {
		p.logger.Info().Dur("timeout", timeout).Msg("Closing Kafka publisher")

		p.closeMu.Lock()
		p.closed = true
		p.closeMu.Unlock()

		var errs []error
		if err := p.producer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("producer close failed: %w", err))
		}

		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(timeout):
			errs = append(errs, fmt.Errorf("close timeout after %s: handlers did not finish in time", timeout))
		}

		p.errorsMu.Lock()
		if n := len(p.errors); n > 0 {
			errs = append(errs, fmt.Errorf("publisher had %d send errors during operation", n))
		}
		p.errorsMu.Unlock()

		p.closeMu.Lock()
		p.closeErr = errors.Join(errs...)
		p.closeMu.Unlock()

		if p.closeErr != nil {
			p.logger.Error().Err(p.closeErr).Msg("Kafka publisher closed with errors")
		} else {
			p.logger.Info().Msg("Kafka publisher closed")
		}
	})

	p.closeMu.Lock()
	defer p.closeMu.Unlock()
	return p.closeErr
}

// NoopPublisher drops events when Kafka is disabled
type NoopPublisher struct{}

// PublishMusicIngested does nothing
func (NoopPublisher) PublishMusicIngested(ctx context.Context, message entities.MusicMessage) error {
	return nil
}
