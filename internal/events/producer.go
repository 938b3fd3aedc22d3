package events

import (
	"encoding/json"
	"fmt"
	"time"

	"foodcourt/internal/model"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Producer publishes order lifecycle events. Publishing is fire-and-forget
// from the caller's point of view: implementations log failures and never
// surface them, so a broker outage cannot abort an order or payment
// operation.
type Producer interface {
	OrderCreated(order *model.Order)
	OrderStatusChanged(order *model.Order, from, to model.OrderStatus, actor string)
	PaymentCompleted(order *model.Order)
	PaymentFailed(order *model.Order)
	Close() error
}

// kafkaProducer implements Producer on top of a sarama sync producer.
type kafkaProducer struct {
	producer sarama.SyncProducer
	topic    string
	logger   zerolog.Logger
}

// NewKafkaProducer creates a Kafka-backed event producer.
func NewKafkaProducer(brokers []string, topic string, logger zerolog.Logger) (Producer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	p, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	logger.Info().
		Strs("brokers", brokers).
		Str("topic", topic).
		Msg("kafka event producer initialised")

	return &kafkaProducer{
		producer: p,
		topic:    topic,
		logger:   logger.With().Str("component", "event-producer").Logger(),
	}, nil
}

func (p *kafkaProducer) publish(kind string, order *model.Order, payload any) {
	envelope := Envelope{
		EventID:   uuid.New(),
		Kind:      kind,
		OrderID:   order.ID,
		UserID:    order.UserID,
		Timestamp: time.Now(),
		Payload:   payload,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		p.logger.Error().Err(err).Str("kind", kind).Msg("failed to marshal event")
		return
	}

	// Keyed by order id so all events of one order land on one partition.
	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(order.ID.String()),
		Value: sarama.ByteEncoder(data),
	})
	if err != nil {
		p.logger.Error().
			Err(err).
			Str("kind", kind).
			Str("order_id", order.ID.String()).
			Msg("failed to publish event")
		return
	}

	p.logger.Debug().
		Str("kind", kind).
		Str("order_id", order.ID.String()).
		Msg("event published")
}

func (p *kafkaProducer) OrderCreated(order *model.Order) {
	p.publish(KindOrderCreated, order, OrderCreatedPayload{
		OrderNumber: order.OrderNumber,
		Total:       order.Total,
		Items:       order.Items,
	})
}

func (p *kafkaProducer) OrderStatusChanged(order *model.Order, from, to model.OrderStatus, actor string) {
	p.publish(KindOrderStatusChanged, order, StatusChangedPayload{
		From:  from,
		To:    to,
		Actor: actor,
	})
}

func (p *kafkaProducer) PaymentCompleted(order *model.Order) {
	p.publish(KindPaymentCompleted, order, PaymentPayload{
		OrderNumber: order.OrderNumber,
		Amount:      order.Total,
	})
}

func (p *kafkaProducer) PaymentFailed(order *model.Order) {
	p.publish(KindPaymentFailed, order, PaymentPayload{
		OrderNumber: order.OrderNumber,
		Amount:      order.Total,
	})
}

func (p *kafkaProducer) Close() error {
	return p.producer.Close()
}

// nopProducer is used when event publishing is disabled.
type nopProducer struct{}

// NewNopProducer creates a producer that drops every event.
func NewNopProducer() Producer {
	return nopProducer{}
}

func (nopProducer) OrderCreated(*model.Order) {}

func (nopProducer) OrderStatusChanged(*model.Order, model.OrderStatus, model.OrderStatus, string) {}

func (nopProducer) PaymentCompleted(*model.Order) {}

func (nopProducer) PaymentFailed(*model.Order) {}

func (nopProducer) Close() error { return nil }
