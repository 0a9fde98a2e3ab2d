package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduler_RunOnce_ContinuesAfterFailure(t *testing.T) {
	s := NewScheduler()
	var ran []string
	s.AddJob("failing", time.Hour, func(ctx context.Context) error {
		ran = append(ran, "failing")
		return errors.New("boom")
	})
	s.AddJob("panicking", time.Hour, func(ctx context.Context) error {
		ran = append(ran, "panicking")
		panic("unexpected")
	})
	s.AddJob("healthy", time.Hour, func(ctx context.Context) error {
		ran = append(ran, "healthy")
		return nil
	})

	// Act
	s.RunOnce(context.Background())

	// Assert
	assert.Equal(t, []string{"failing", "panicking", "healthy"}, ran)
}

func TestScheduler_StartRunsImmediatelyAndStopsOnCancel(t *testing.T) {
	s := NewScheduler()
	var calls atomic.Int32
	started := make(chan struct{}, 1)
	s.AddJob("tick", time.Hour, func(ctx context.Context) error {
		calls.Add(1)
		select {
		case started <- struct{}{}:
		default:
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	<-started
	cancel()
	s.Wait()

	assert.Equal(t, int32(1), calls.Load())
}
