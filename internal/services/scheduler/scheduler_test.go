package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddRejectsEmptyJob(t *testing.T) {
	s := New(nil)
	err := s.Add(Job{Name: "empty"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"empty"`)
	assert.Empty(t, s.jobs)
}

func TestRunOnStartAndSchedule(t *testing.T) {
	s := New(nil)
	var runs atomic.Int32
	require.NoError(t, s.Add(Job{
		Name:       "tick",
		Interval:   time.Second,
		RunOnStart: true,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	}))

	s.Start()
	assert.Equal(t, int32(1), runs.Load())

	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}

func TestFailingJobKeepsScheduler(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Add(Job{
		Name:     "sweep",
		Interval: 500 * time.Millisecond,
		Run:      func(context.Context) error { return errors.New("bolt closed") },
	}))
	s.run(s.jobs[0], time.Second)
}
