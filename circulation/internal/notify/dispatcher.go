package notify

import (
	"context"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-circulation/circulation/internal/metrics"
	"github.com/Astemirdum/library-circulation/pkg/circuit_breaker"
)

var json = jsoniter.ConfigFastest

// Dispatcher is fire-and-forget: delivery failures are logged, never returned.
type Dispatcher interface {
	Emit(ctx context.Context, eventType EventType, payload Payload)
}

// Flush emits every event of the batch in insertion order.
func Flush(ctx context.Context, d Dispatcher, b *Batch) {
	if b == nil {
		return
	}
	for _, e := range b.events {
		d.Emit(ctx, e.eventType, e.payload)
	}
}

type logDispatcher struct {
	log *zap.Logger
}

func NewLogDispatcher(log *zap.Logger) Dispatcher {
	return &logDispatcher{log: log.Named("notify")}
}

func (d *logDispatcher) Emit(_ context.Context, eventType EventType, p Payload) {
	d.log.Info("event",
		zap.String("type", string(eventType)),
		zap.String("item_id", p.ItemID),
		zap.String("member_id", p.MemberID),
		zap.String("loan_id", p.LoanID),
		zap.String("reservation_id", p.ReservationID),
	)
}

type kafkaDispatcher struct {
	producer sarama.SyncProducer
	cb       circuit_breaker.CircuitBreaker
	topic    string
	log      *zap.Logger
	metrics  *metrics.Metrics
}

// NewKafkaDispatcher publishes events keyed by item id so one item's events stay ordered
// within a partition. The breaker stops a dead broker from stalling circulation requests.
func NewKafkaDispatcher(producer sarama.SyncProducer, cb circuit_breaker.CircuitBreaker, topic string, log *zap.Logger, m *metrics.Metrics) Dispatcher {
	return &kafkaDispatcher{
		producer: producer,
		cb:       cb,
		topic:    topic,
		log:      log.Named("notify"),
		metrics:  m,
	}
}

func (d *kafkaDispatcher) Emit(_ context.Context, eventType EventType, p Payload) {
	data, err := json.Marshal(Event{
		ID:      uuid.NewString(),
		Type:    eventType,
		Payload: p,
	})
	if err != nil {
		d.log.Error("marshal event", zap.String("type", string(eventType)), zap.Error(err))
		d.metrics.Event(string(eventType), "failed")
		return
	}

	msg := &sarama.ProducerMessage{
		Topic: d.topic,
		Key:   sarama.StringEncoder(p.ItemID),
		Value: sarama.ByteEncoder(data),
	}
	err = d.cb.Call(func() error {
		_, _, err := d.producer.SendMessage(msg)
		return err
	})
	switch {
	case errors.Is(err, circuit_breaker.ErrOpenCB):
		d.metrics.BreakerReject()
		d.metrics.Event(string(eventType), "dropped")
		d.log.Warn("publisher breaker open, event dropped", zap.String("type", string(eventType)), zap.String("item_id", p.ItemID))
	case err != nil:
		d.metrics.Event(string(eventType), "failed")
		d.log.Error("SendMessage", zap.String("type", string(eventType)), zap.Error(err))
	default:
		d.metrics.Event(string(eventType), "sent")
	}
}
