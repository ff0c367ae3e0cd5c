package workers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"oitivas-pro/pkg/logger"
)

// MockExpirer é um mock de Expirer
type MockExpirer struct {
	mock.Mock
}

func (m *MockExpirer) Expire(idle time.Duration) int {
	return m.Called(idle).Int(0)
}

type countingWorker struct {
	runs atomic.Int32
}

func (c *countingWorker) Name() string            { return "counting" }
func (c *countingWorker) Interval() time.Duration { return 5 * time.Millisecond }
func (c *countingWorker) Run(ctx context.Context) error {
	c.runs.Add(1)
	return nil
}

func TestWorkerManagerRunsAndStops(t *testing.T) {
	wm := NewWorkerManager(logger.Discard().WithComponent("workers"))
	w := &countingWorker{}
	wm.RegisterWorker(w)

	wm.Start()
	require.Eventually(t, func() bool { return w.runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	wm.Stop()

	stopped := w.runs.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, w.runs.Load())

	stats := wm.GetStats()
	assert.Equal(t, 1, stats.TotalWorkers)
	assert.Equal(t, []string{"counting"}, stats.WorkerNames)
}

func TestSessionJanitor(t *testing.T) {
	m := &MockExpirer{}
	m.On("Expire", 4*time.Hour).Return(2)

	j := NewSessionJanitor(m, 4*time.Hour, logger.Discard().WithComponent("workers"))
	assert.Equal(t, "session_janitor", j.Name())
	assert.Equal(t, time.Hour, j.Interval())
	require.NoError(t, j.Run(context.Background()))
	m.AssertExpectations(t)

	short := NewSessionJanitor(m, time.Minute, logger.Discard().WithComponent("workers"))
	assert.Equal(t, time.Minute, short.Interval())
}

func TestSessionJanitorHonorsContext(t *testing.T) {
	m := &MockExpirer{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	j := NewSessionJanitor(m, time.Hour, logger.Discard().WithComponent("workers"))
	assert.Error(t, j.Run(ctx))
	m.AssertNotCalled(t, "Expire", mock.Anything)
}
