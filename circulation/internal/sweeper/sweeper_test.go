package sweeper_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-circulation/circulation/internal/model"
	"github.com/Astemirdum/library-circulation/circulation/internal/sweeper"

	sweeper_mocks "github.com/Astemirdum/library-circulation/circulation/internal/sweeper/mocks"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

func TestSweeper_Once(t *testing.T) {
	t.Parallel()
	c := gomock.NewController(t)
	defer c.Finish()
	sweeps := sweeper_mocks.NewMockSweeps(c)

	gomock.InOrder(
		sweeps.EXPECT().ExpireHolds(gomock.Any(), now).Return(model.SweepResult{Processed: 2, Changed: 2}, nil),
		sweeps.EXPECT().AssessOverdue(gomock.Any(), now).Return(model.SweepResult{Processed: 5, Changed: 1, Failed: 1}, nil),
	)

	s := sweeper.New(sweeps, fixedClock(now), sweeper.Config{}, zap.NewExample().Named("test"))
	require.NoError(t, s.Once(context.Background()))
}

func TestSweeper_OnceStopsOnError(t *testing.T) {
	t.Parallel()
	c := gomock.NewController(t)
	defer c.Finish()
	sweeps := sweeper_mocks.NewMockSweeps(c)

	dbDown := errors.New("db down")
	sweeps.EXPECT().ExpireHolds(gomock.Any(), now).Return(model.SweepResult{}, dbDown)

	s := sweeper.New(sweeps, fixedClock(now), sweeper.Config{}, zap.NewExample().Named("test"))
	require.ErrorIs(t, s.Once(context.Background()), dbDown)
}

func TestSweeper_RunSurvivesFailedCycle(t *testing.T) {
	t.Parallel()
	c := gomock.NewController(t)
	defer c.Finish()
	sweeps := sweeper_mocks.NewMockSweeps(c)

	recovered := make(chan struct{})
	sweeps.EXPECT().AssessOverdue(gomock.Any(), now).Return(model.SweepResult{}, errors.New("db down"))
	sweeps.EXPECT().AssessOverdue(gomock.Any(), now).
		DoAndReturn(func(context.Context, time.Time) (model.SweepResult, error) {
			select {
			case <-recovered:
			default:
				close(recovered)
			}
			return model.SweepResult{Processed: 1}, nil
		}).
		MinTimes(1)

	s := sweeper.New(sweeps, fixedClock(now), sweeper.Config{OverdueInterval: 5 * time.Millisecond}, zap.NewExample().Named("test"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case <-recovered:
	case <-time.After(5 * time.Second):
		t.Fatal("sweep did not run again after a failed cycle")
	}
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop")
	}
}
