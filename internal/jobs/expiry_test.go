package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"secondserving/internal/logging"
)

func init() {
	logging.Silence()
}

type mockRejector struct {
	mock.Mock
}

func (m *mockRejector) RejectExpired(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func TestSweepExpired(t *testing.T) {
	r := &mockRejector{}
	r.On("RejectExpired", mock.Anything).Return(3, nil).Once()

	assert.Equal(t, 3, SweepExpired(context.Background(), r))
	r.AssertExpectations(t)
}

func TestSweepExpiredError(t *testing.T) {
	r := &mockRejector{}
	r.On("RejectExpired", mock.Anything).Return(0, errors.New("mongo down")).Once()

	assert.Equal(t, 0, SweepExpired(context.Background(), r))
	r.AssertExpectations(t)
}

func TestNewSchedulerRejectsBadSchedule(t *testing.T) {
	_, err := NewScheduler("every now and then", &mockRejector{})
	assert.Error(t, err)
}

func TestSchedulerStartStop(t *testing.T) {
	s, err := NewScheduler("@every 1h", &mockRejector{})
	require.NoError(t, err)
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
	assert.NoError(t, ctx.Err())
}
