package natsstan

import (
	"context"
	"encoding/json"

	stan "github.com/nats-io/stan.go"

	"github.com/example/commerce-service/internal/domain"
)

// Conn часть stan.Conn, нужная для публикации.
type Conn interface {
	Publish(subject string, data []byte) error
	Close() error
}

// Publisher публикует события OrderCreated в канал NATS Streaming.
type Publisher struct {
	Conn    Conn
	Subject string
}

func Connect(clusterID, clientID, url string) (stan.Conn, error) {
	return stan.Connect(clusterID, clientID, stan.NatsURL(url))
}

func (p *Publisher) PublishOrderCreated(_ context.Context, o domain.Order) error {
	raw, err := json.Marshal(domain.OrderCreated{Kind: o.Kind, Order: o})
	if err != nil {
		return err
	}
	return p.Conn.Publish(p.Subject, raw)
}

func (p *Publisher) Close() error {
	return p.Conn.Close()
}

var _ domain.OrderEventPublisher = (*Publisher)(nil)
