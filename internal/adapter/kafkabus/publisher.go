package kafkabus

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/example/commerce-service/internal/domain"
)

const EventTypeOrderCreated = "OrderCreated"

type Producer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Publisher пишет события OrderCreated в Kafka; ключ сообщения orderId.
type Publisher struct {
	Producer Producer
	Topic    string
}

func NewWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
	}
}

func (p *Publisher) PublishOrderCreated(ctx context.Context, o domain.Order) error {
	raw, err := json.Marshal(domain.OrderCreated{Kind: o.Kind, Order: o})
	if err != nil {
		return err
	}
	headers := []kafka.Header{
		{Key: "event_type", Value: []byte(EventTypeOrderCreated)},
		{Key: "order_kind", Value: []byte(o.Kind)},
	}
	return p.Producer.WriteMessages(ctx, kafka.Message{
		Topic:   p.Topic,
		Key:     []byte(o.OrderID),
		Value:   raw,
		Headers: InjectTraceHeaders(ctx, headers),
	})
}

// InjectTraceHeaders добавляет в заголовки текущий контекст трассировки (traceparent).
func InjectTraceHeaders(ctx context.Context, headers []kafka.Header) []kafka.Header {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for k, v := range carrier {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	return headers
}

var _ domain.OrderEventPublisher = (*Publisher)(nil)
