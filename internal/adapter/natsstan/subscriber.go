package natsstan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	stan "github.com/nats-io/stan.go"

	"github.com/example/commerce-service/internal/domain"
)

// Subscriber принимает заявки на заказы из канала NATS Streaming.
type Subscriber struct {
	ClusterID  string
	ClientID   string
	URL        string
	Subject    string
	QueueGroup string
	Durable    string
	AckWait    time.Duration
	Log        *slog.Logger
}

func (s *Subscriber) Subscribe(ctx context.Context, handler func(ctx context.Context, raw []byte) error) error {
	clientID := s.ClientID
	if clientID == "" {
		clientID = fmt.Sprintf("commerce-svc-%d", time.Now().UnixNano())
	}
	ackWait := s.AckWait
	if ackWait <= 0 {
		ackWait = 10 * time.Second
	}
	sc, err := stan.Connect(s.ClusterID, clientID, stan.NatsURL(s.URL))
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		sc.Close()
	}()
	_, err = sc.QueueSubscribe(s.Subject, s.QueueGroup, func(m *stan.Msg) {
		hCtx, cancel := context.WithTimeout(ctx, ackWait/2)
		defer cancel()
		if err := handler(hCtx, m.Data); err != nil {
			// не подтверждаем, даём сообщению переотправиться
			s.Log.Error("order intake handler failed", "seq", m.Sequence, "err", err)
			return
		}
		if err := m.Ack(); err != nil {
			s.Log.Error("ack failed", "seq", m.Sequence, "err", err)
		}
	}, stan.DurableName(s.Durable), stan.SetManualAckMode(), stan.AckWait(ackWait), stan.DeliverAllAvailable())
	if err != nil {
		sc.Close()
		return err
	}
	s.Log.Info("order intake subscribed", "subject", s.Subject, "queue", s.QueueGroup)
	return nil
}

var _ domain.MessageSubscriber = (*Subscriber)(nil)
