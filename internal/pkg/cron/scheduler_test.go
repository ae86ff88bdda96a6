package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddJob_RejectsInvalidSpec(t *testing.T) {
	s := NewScheduler(time.UTC, 0)

	err := s.AddJob("broken", "every hour", func(context.Context) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.Equal(t, 0, s.RunOnce(context.Background()))
}

func TestRunOnce_RunsAllJobsAndCountsFailures(t *testing.T) {
	s := NewScheduler(time.UTC, 0)
	var order []string

	require.NoError(t, s.AddJob("first", "0 * * * *", func(context.Context) error {
		order = append(order, "first")
		return errors.New("database unavailable")
	}))
	require.NoError(t, s.AddJob("second", "30 2 * * *", func(context.Context) error {
		order = append(order, "second")
		return nil
	}))

	assert.Equal(t, 1, s.RunOnce(context.Background()))
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestStart_FiresJobsAndStopCancelsThem(t *testing.T) {
	s := NewScheduler(time.UTC, time.Minute)
	var runs atomic.Int32
	cancelled := make(chan struct{})

	require.NoError(t, s.AddJob("blocking", "@every 1s", func(ctx context.Context) error {
		if runs.Add(1) == 1 {
			<-ctx.Done()
			close(cancelled)
		}
		return ctx.Err()
	}))

	s.Start()
	require.Eventually(t, func() bool { return runs.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)

	s.Stop()
	select {
	case <-cancelled:
	default:
		t.Fatal("running job was not cancelled by Stop")
	}
	assert.Equal(t, int32(1), runs.Load(), "overlapping run should be skipped")
}

func TestExecuteJob_AppliesTimeout(t *testing.T) {
	s := NewScheduler(time.UTC, 10*time.Millisecond)
	var deadline bool

	s.executeJob(Job{Name: "slow", Fn: func(ctx context.Context) error {
		_, deadline = ctx.Deadline()
		<-ctx.Done()
		return ctx.Err()
	}})

	assert.True(t, deadline)
}
