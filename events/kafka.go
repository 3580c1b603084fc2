package events

import (
	"context"
	"fmt"
	"strings"

	"github.com/segmentio/kafka-go"

	"github.com/Kariqs/amexan-wallet/models"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
}

// ParseBrokers splits a comma separated broker list.
func ParseBrokers(brokersCSV string) []string {
	brokers := []string{}
	for _, b := range strings.Split(brokersCSV, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// NewKafkaPublisher writes to the topic stored on each event, keyed by order.
func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}}
}

func (p *KafkaPublisher) Name() string { return "kafka" }

func (p *KafkaPublisher) Publish(ctx context.Context, evt models.OutboxEvent) error {
	err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: evt.Topic,
		Key:   []byte(evt.Key),
		Value: []byte(evt.Payload),
		Time:  evt.CreatedAt.UTC(),
		Headers: []kafka.Header{
			{Key: "event-id", Value: []byte(evt.EventID)},
		},
	})
	if err != nil {
		return fmt.Errorf("kafka publish %s: %w", evt.EventID, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
