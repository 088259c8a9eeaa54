package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-circulation/circulation/internal/notify"
	"github.com/Astemirdum/library-circulation/pkg/circuit_breaker"
)

func TestKafkaDispatcher_Emit(t *testing.T) {
	producer := mocks.NewSyncProducer(t, sarama.NewConfig())
	defer func() { require.NoError(t, producer.Close()) }()

	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var e notify.Event
		if err := json.Unmarshal(val, &e); err != nil {
			return err
		}
		if e.Type != notify.EventHoldReady || e.Payload.ReservationID != "r1" || e.ID == "" {
			return errors.New("unexpected event")
		}
		return nil
	})

	cb := circuit_breaker.New(10, time.Second, 0.5, 1)
	d := notify.NewKafkaDispatcher(producer, cb, "circulation-notifications", zap.NewNop(), nil)
	d.Emit(context.Background(), notify.EventHoldReady, notify.Payload{
		ItemID: "i1", MemberID: "m1", ReservationID: "r1", OccurredAt: now,
	})
}

func TestKafkaDispatcher_KeysByItem(t *testing.T) {
	producer := mocks.NewSyncProducer(t, sarama.NewConfig())
	defer func() { require.NoError(t, producer.Close()) }()

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "i1" {
			return errors.New("event not keyed by item id: " + string(key))
		}
		return nil
	})

	cb := circuit_breaker.New(10, time.Second, 0.5, 1)
	d := notify.NewKafkaDispatcher(producer, cb, "circulation-notifications", zap.NewNop(), nil)
	d.Emit(context.Background(), notify.EventDueSoon, notify.Payload{ItemID: "i1", MemberID: "m1", LoanID: "l1"})
}

func TestKafkaDispatcher_BreakerOpens(t *testing.T) {
	producer := mocks.NewSyncProducer(t, sarama.NewConfig())
	defer func() { require.NoError(t, producer.Close()) }()

	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	cb := circuit_breaker.New(2, time.Minute, 1, 1)
	d := notify.NewKafkaDispatcher(producer, cb, "circulation-notifications", zap.NewNop(), nil)
	for i := 0; i < 4; i++ {
		d.Emit(context.Background(), notify.EventOverdue, notify.Payload{ItemID: "i1", LoanID: "l1"})
	}
	// two failures open the breaker, the remaining emits never reach the producer
	require.Equal(t, circuit_breaker.Open, cb.State())
}

type recorder struct {
	types []notify.EventType
}

func (r *recorder) Emit(_ context.Context, eventType notify.EventType, _ notify.Payload) {
	r.types = append(r.types, eventType)
}

func TestFlush_KeepsOrder(t *testing.T) {
	var b notify.Batch
	b.Add(notify.EventHoldExpired, notify.Payload{ItemID: "i1"})
	b.Add(notify.EventHoldReady, notify.Payload{ItemID: "i1"})

	rec := &recorder{}
	notify.Flush(context.Background(), rec, &b)
	require.Equal(t, []notify.EventType{notify.EventHoldExpired, notify.EventHoldReady}, rec.types)

	b.Reset()
	require.Zero(t, b.Len())
	notify.Flush(context.Background(), rec, nil)
	require.Len(t, rec.types, 2)
}
