package handler

import (
	"context"
	"time"

	"github.com/IBM/sarama"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-circulation/circulation/internal/errs"
	"github.com/Astemirdum/library-circulation/circulation/internal/model"
	"github.com/Astemirdum/library-circulation/circulation/internal/policy"
	"github.com/Astemirdum/library-circulation/pkg/retry"
	"github.com/Astemirdum/library-circulation/pkg/validate"
)

const (
	defaultApplyAttempts = 4
	defaultApplyDelay    = 200 * time.Millisecond
)

type assess func(ctx context.Context, req model.AssessmentRequest, now time.Time) (model.ItemStatus, error)

// Consumer applies condition assessments published by the assessment workflow.
type Consumer struct {
	assessHandler assess
	clock         policy.Clock
	validator     *validate.CustomValidator
	attempts      int
	delay         time.Duration
	log           *zap.Logger
	ready         chan bool
}

type ConsumerOption func(*Consumer)

// WithApplyRetry bounds how long one message is retried in place before the session
// is given up.
func WithApplyRetry(attempts int, delay time.Duration) ConsumerOption {
	return func(c *Consumer) {
		c.attempts = attempts
		c.delay = delay
	}
}

func NewConsumer(svc CirculationService, clock policy.Clock, log *zap.Logger, opts ...ConsumerOption) *Consumer {
	if clock == nil {
		clock = policy.SystemClock{}
	}
	c := &Consumer{
		assessHandler: svc.RecordConditionAssessment,
		clock:         clock,
		validator:     validate.NewCustomValidator(),
		attempts:      defaultApplyAttempts,
		delay:         defaultApplyDelay,
		log:           log.Named("consumer"),
		ready:         make(chan bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.attempts <= 0 {
		c.attempts = 1
	}
	return c
}

// Ready is closed once the first group session is set up.
func (consumer *Consumer) Ready() <-chan bool {
	return consumer.ready
}

func (consumer *Consumer) Setup(sarama.ConsumerGroupSession) error {
	select {
	case <-consumer.ready:
	default:
		close(consumer.ready)
	}
	return nil
}

// Cleanup is run at the end of a session, once all ConsumeClaim goroutines have exited.
func (consumer *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim stops at the first message it cannot apply. Offsets are committed per
// partition up to the last marked message, so nothing after it may be marked; the next
// session starts again from the failed message.
func (consumer *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				consumer.log.Warn("message channel was closed")
				return nil
			}
			if err := consumer.handle(session.Context(), message); err != nil {
				consumer.log.Error("assessment left for redelivery",
					zap.Int32("partition", message.Partition),
					zap.Int64("offset", message.Offset),
					zap.Error(err))
				return err
			}
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}

// handle returns an error only when the message has to be delivered again. Malformed
// and rejected assessments are dropped.
func (consumer *Consumer) handle(ctx context.Context, message *sarama.ConsumerMessage) error {
	var req model.AssessmentRequest
	if err := jsoniter.Unmarshal(message.Value, &req); err != nil {
		consumer.log.Error("decode assessment", zap.Error(err), zap.Int64("offset", message.Offset))
		return nil
	}
	if err := consumer.validator.Validate(req); err != nil {
		consumer.log.Warn("invalid assessment", zap.Error(err), zap.Int64("offset", message.Offset))
		return nil
	}

	err := retry.Do(ctx, func(ctx context.Context) error {
		st, err := consumer.assessHandler(ctx, req, consumer.clock.Now())
		if err != nil {
			return err
		}
		consumer.log.Debug("assessment applied",
			zap.String("item_id", st.ItemID),
			zap.String("availability", string(st.Availability)),
			zap.Time("timestamp", message.Timestamp))
		return nil
	},
		retry.WithMaxAttempts(consumer.attempts),
		retry.WithBaseDelay(consumer.delay),
		retry.WithRetryIf(func(err error) bool { return redeliverable(err) && ctx.Err() == nil }),
		retry.OnRetry(func(attempt int, err error) {
			consumer.log.Warn("retry assessment", zap.String("item_id", req.ItemID), zap.Int("attempt", attempt), zap.Error(err))
		}),
	)
	switch {
	case err == nil:
		return nil
	case redeliverable(err):
		return errors.Wrapf(err, "assessment for item %s", req.ItemID)
	default:
		consumer.log.Warn("assessment rejected", zap.String("item_id", req.ItemID), zap.String("kind", errs.KindOf(err)))
		return nil
	}
}

// redeliverable separates failures that may pass later from business rejections.
// Conflict only means the retry budget for stale item state ran out.
func redeliverable(err error) bool {
	return errors.Is(err, errs.ErrConflict) || !errs.IsBusiness(err)
}
