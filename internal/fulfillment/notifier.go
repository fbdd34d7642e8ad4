package fulfillment

import (
	"context"
	"encoding/json"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

const (
	fulfilledTopic      = "order-fulfilled"
	reconciliationTopic = "fulfillment-reconciliation"
)

// Notifier publishes fulfillment outcomes out-of-band. Business failures on
// the webhook path are swallowed at the request boundary, so this is the
// channel operators reconcile against.
type Notifier interface {
	OrderFulfilled(ctx context.Context, n FulfilledNotification)
	ReconciliationNeeded(ctx context.Context, n ReconciliationAlert)
}

type FulfilledNotification struct {
	SessionID    string    `json:"session_id"`
	EventID      string    `json:"event_id"`
	LinesApplied int       `json:"lines_applied"`
	LinesSkipped int       `json:"lines_skipped"`
	FulfilledAt  time.Time `json:"fulfilled_at"`
}

type ReconciliationAlert struct {
	SessionID string    `json:"session_id"`
	EventID   string    `json:"event_id"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

type KafkaNotifier struct {
	fulfilled      *kafkaGo.Writer
	reconciliation *kafkaGo.Writer
	log            *logrus.Logger
}

func NewKafkaNotifier(brokers []string, log *logrus.Logger) *KafkaNotifier {
	return &KafkaNotifier{
		fulfilled:      newWriter(brokers, fulfilledTopic),
		reconciliation: newWriter(brokers, reconciliationTopic),
		log:            log,
	}
}

func newWriter(brokers []string, topic string) *kafkaGo.Writer {
	return &kafkaGo.Writer{
		Addr:         kafkaGo.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkaGo.Hash{},
		RequiredAcks: kafkaGo.RequireOne,
	}
}

func (n *KafkaNotifier) OrderFulfilled(ctx context.Context, notification FulfilledNotification) {
	n.publish(ctx, n.fulfilled, notification.SessionID, notification)
}

func (n *KafkaNotifier) ReconciliationNeeded(ctx context.Context, alert ReconciliationAlert) {
	n.publish(ctx, n.reconciliation, alert.SessionID, alert)
}

// publish is best-effort: the webhook ack must not wait on the broker.
func (n *KafkaNotifier) publish(ctx context.Context, w *kafkaGo.Writer, key string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		n.log.WithError(err).Error("failed to marshal notification")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	err = w.WriteMessages(ctx, kafkaGo.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now().UTC(),
	})
	if err != nil {
		n.log.WithError(err).WithField("topic", w.Topic).Error("failed to publish notification")
	}
}

func (n *KafkaNotifier) Close() {
	if err := n.fulfilled.Close(); err != nil {
		n.log.WithError(err).Error("error closing kafka writer")
	}
	if err := n.reconciliation.Close(); err != nil {
		n.log.WithError(err).Error("error closing kafka writer")
	}
}

// NopNotifier is used when no brokers are configured; outcomes are still in
// the structured logs.
type NopNotifier struct{}

func (NopNotifier) OrderFulfilled(context.Context, FulfilledNotification) {}

func (NopNotifier) ReconciliationNeeded(context.Context, ReconciliationAlert) {}
