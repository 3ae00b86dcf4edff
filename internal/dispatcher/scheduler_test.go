package dispatcher

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRunner struct {
	runs atomic.Int32
}

func (c *countingRunner) Run(ctx context.Context) (Report, error) {
	c.runs.Add(1)
	<-ctx.Done()

	return Report{}, ctx.Err()
}

func TestSchedulerSkipsOverlappingRuns(t *testing.T) {
	r := &countingRunner{}

	s, err := NewScheduler(context.Background(), r, "@every 1s")
	require.NoError(t, err)

	s.Start()
	time.Sleep(3500 * time.Millisecond)
	s.Stop()

	assert.Equal(t, int32(1), r.runs.Load(), "a running cycle blocks the next ones")
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	_, err := NewScheduler(context.Background(), &countingRunner{}, "every minute")
	require.Error(t, err)
}
