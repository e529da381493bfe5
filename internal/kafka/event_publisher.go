package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"go.uber.org/fx"

	"log-query-translator/config"
	"log-query-translator/internal/model"
)

// EventPublisher ships translation outcomes for offline evaluation.
type EventPublisher interface {
	Publish(ctx context.Context, event model.TranslationEvent) error
	Close() error
}

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaEventPublisher struct {
	writer messageWriter
	topic  string
}

type noopEventPublisher struct{}

func (noopEventPublisher) Publish(context.Context, model.TranslationEvent) error { return nil }
func (noopEventPublisher) Close() error                                          { return nil }

// NewEventPublisher returns a no-op publisher when no brokers are configured.
func NewEventPublisher(lc fx.Lifecycle, cfg *config.Config) EventPublisher {
	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.EventTopic == "" {
		log.Info().Msg("Kafka brokers not configured, translation events disabled")
		return noopEventPublisher{}
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.Brokers...),
		Topic:        cfg.Kafka.EventTopic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 500 * time.Millisecond,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				log.Error().Err(err).Int("message_count", len(messages)).Msg("Failed to deliver translation events")
			}
		},
	}
	p := newKafkaEventPublisher(writer, cfg.Kafka.EventTopic)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Closing Kafka event publisher")
			return p.Close()
		},
	})
	log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.EventTopic).Msg("Kafka event publisher initialized")
	return p
}

func newKafkaEventPublisher(writer messageWriter, topic string) *kafkaEventPublisher {
	return &kafkaEventPublisher{writer: writer, topic: topic}
}

func (p *kafkaEventPublisher) Publish(ctx context.Context, event model.TranslationEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("request_id", event.RequestID).Msg("Failed to marshal translation event")
		return err
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.RequestID),
		Value: value,
	})
	if err != nil {
		log.Error().Err(err).Str("topic", p.topic).Msg("Failed to write translation event to Kafka")
		return err
	}

	log.Debug().Str("request_id", event.RequestID).Str("topic", p.topic).Msg("Produced translation event")
	return nil
}

func (p *kafkaEventPublisher) Close() error {
	return p.writer.Close()
}
