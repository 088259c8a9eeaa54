package handler_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-circulation/circulation/internal/errs"
	"github.com/Astemirdum/library-circulation/circulation/internal/handler"
	"github.com/Astemirdum/library-circulation/circulation/internal/model"

	service_mocks "github.com/Astemirdum/library-circulation/circulation/internal/handler/mocks"
)

type session struct {
	sarama.ConsumerGroupSession
	ctx context.Context

	mu     sync.Mutex
	marked []int64
}

func (s *session) Context() context.Context { return s.ctx }

func (s *session) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.mu.Lock()
	s.marked = append(s.marked, msg.Offset)
	s.mu.Unlock()
}

type claim struct {
	sarama.ConsumerGroupClaim
	messages chan *sarama.ConsumerMessage
}

func (c *claim) Messages() <-chan *sarama.ConsumerMessage { return c.messages }

func TestConsumer_ConsumeClaim(t *testing.T) {
	c := gomock.NewController(t)
	defer c.Finish()
	svc := service_mocks.NewMockCirculationService(c)

	assessedAt := time.Date(2024, 2, 23, 9, 0, 0, 0, time.UTC)
	late := model.AssessmentRequest{ItemID: "x", Condition: model.ConditionGood, AssessedBy: "workflow", AssessedAt: &assessedAt}
	onLoan := model.AssessmentRequest{ItemID: "y", Condition: model.ConditionFair, AssessedBy: "workflow"}
	contended := model.AssessmentRequest{ItemID: "w", Condition: model.ConditionDamaged, AssessedBy: "workflow"}
	broken := model.AssessmentRequest{ItemID: "z", Condition: model.ConditionGood, AssessedBy: "workflow"}

	gomock.InOrder(
		// a delayed message is applied at delivery time, its own timestamp is only recorded
		svc.EXPECT().RecordConditionAssessment(gomock.Any(), late, now).
			Return(model.ItemStatus{ItemID: "x", Availability: model.AvailabilityOnHold, Condition: model.ConditionGood}, nil),
		svc.EXPECT().RecordConditionAssessment(gomock.Any(), onLoan, now).
			Return(model.ItemStatus{}, errs.ErrItemOnLoan),
		svc.EXPECT().RecordConditionAssessment(gomock.Any(), contended, now).
			Return(model.ItemStatus{}, errors.Wrap(errs.ErrConflict, "record_assessment")),
		svc.EXPECT().RecordConditionAssessment(gomock.Any(), contended, now).
			Return(model.ItemStatus{ItemID: "w", Availability: model.AvailabilityInRepair, Condition: model.ConditionDamaged}, nil),
		svc.EXPECT().RecordConditionAssessment(gomock.Any(), broken, now).
			Return(model.ItemStatus{}, errors.New("connection reset")).
			Times(2),
	)

	consumer := handler.NewConsumer(svc, fixedClock(now), zap.NewExample().Named("test"),
		handler.WithApplyRetry(2, time.Millisecond))
	require.NoError(t, consumer.Setup(nil))
	select {
	case <-consumer.Ready():
	default:
		t.Fatal("consumer not ready after setup")
	}

	messages := make(chan *sarama.ConsumerMessage, 7)
	messages <- &sarama.ConsumerMessage{Offset: 1, Value: []byte(`{"itemId":"x","condition":"good","assessedBy":"workflow","assessedAt":"2024-02-23T09:00:00Z"}`)}
	messages <- &sarama.ConsumerMessage{Offset: 2, Value: []byte(`not json`)}
	messages <- &sarama.ConsumerMessage{Offset: 3, Value: []byte(`{"itemId":"x","condition":"sparkling","assessedBy":"workflow"}`)}
	messages <- &sarama.ConsumerMessage{Offset: 4, Value: []byte(`{"itemId":"y","condition":"fair","assessedBy":"workflow"}`)}
	messages <- &sarama.ConsumerMessage{Offset: 5, Value: []byte(`{"itemId":"w","condition":"damaged","assessedBy":"workflow"}`)}
	messages <- &sarama.ConsumerMessage{Offset: 6, Value: []byte(`{"itemId":"z","condition":"good","assessedBy":"workflow"}`)}
	messages <- &sarama.ConsumerMessage{Offset: 7, Value: []byte(`{"itemId":"x","condition":"lost","assessedBy":"workflow"}`)}
	close(messages)

	sess := &session{ctx: context.Background()}
	err := consumer.ConsumeClaim(sess, &claim{messages: messages})
	require.Error(t, err)

	// the session ends at offset 6 so the committed offset never passes it
	require.Equal(t, []int64{1, 2, 3, 4, 5}, sess.marked)
	require.Len(t, messages, 1)
}

func TestConsumer_FailureInTheMiddleIsNotSkipped(t *testing.T) {
	c := gomock.NewController(t)
	defer c.Finish()
	svc := service_mocks.NewMockCirculationService(c)

	svc.EXPECT().RecordConditionAssessment(gomock.Any(), gomock.Any(), now).
		Return(model.ItemStatus{}, errors.New("connection reset"))

	consumer := handler.NewConsumer(svc, fixedClock(now), zap.NewExample().Named("test"),
		handler.WithApplyRetry(1, time.Millisecond))

	messages := make(chan *sarama.ConsumerMessage, 2)
	messages <- &sarama.ConsumerMessage{Offset: 1, Value: []byte(`{"itemId":"z","condition":"good","assessedBy":"workflow"}`)}
	messages <- &sarama.ConsumerMessage{Offset: 2, Value: []byte(`{"itemId":"x","condition":"good","assessedBy":"workflow"}`)}
	close(messages)

	sess := &session{ctx: context.Background()}
	require.Error(t, consumer.ConsumeClaim(sess, &claim{messages: messages}))
	require.Empty(t, sess.marked)
}
