package circuitbreaker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

var errBoom = errors.New("boom")

func fail() error    { return errBoom }
func succeed() error { return nil }

func TestOpensAfterTooManyFailures(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	cb := New(2, 10*time.Second, withClock(clock.now))

	for i := 0; i < 2; i++ {
		assert.ErrorIs(t, cb.Execute(fail), errBoom)
		assert.Equal(t, StateClosed, cb.State())
	}
	assert.ErrorIs(t, cb.Execute(fail), errBoom)
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
}

func TestFailuresOutsideWindowAreForgotten(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	cb := New(1, time.Second, WithWindow(5*time.Second), withClock(clock.now))

	assert.Error(t, cb.Execute(fail))
	clock.advance(6 * time.Second)
	assert.Error(t, cb.Execute(fail))

	assert.Equal(t, StateClosed, cb.State())
}

func TestHalfOpenTrial(t *testing.T) {
	tests := []struct {
		name  string
		trial func() error
		want  State
	}{
		{name: "success closes", trial: succeed, want: StateClosed},
		{name: "failure reopens", trial: fail, want: StateOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{t: time.Unix(0, 0)}
			cb := New(0, 10*time.Second, withClock(clock.now))

			assert.Error(t, cb.Execute(fail))
			assert.Equal(t, StateOpen, cb.State())

			clock.advance(10 * time.Second)
			_ = cb.Execute(tt.trial)
			assert.Equal(t, tt.want, cb.State())
		})
	}
}

func TestCanceledCallsAreNotCounted(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	cb := New(0, 10*time.Second, withClock(clock.now))
	canceled := func() error { return fmt.Errorf("request: %w", context.Canceled) }

	assert.ErrorIs(t, cb.Execute(canceled), context.Canceled)
	assert.Equal(t, StateClosed, cb.State())

	assert.Error(t, cb.Execute(fail))
	clock.advance(10 * time.Second)

	assert.ErrorIs(t, cb.Execute(canceled), context.Canceled)
	assert.Equal(t, StateHalfOpen, cb.State())

	assert.NoError(t, cb.Execute(succeed))
	assert.Equal(t, StateClosed, cb.State())
}

func TestStateChangeHook(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	var transitions []string
	cb := New(0, time.Second, withClock(clock.now), WithStateChange(func(from, to State) {
		transitions = append(transitions, from.String()+"->"+to.String())
	}))

	_ = cb.Execute(fail)
	clock.advance(time.Second)
	_ = cb.Execute(succeed)

	assert.Equal(t, []string{"closed->open", "open->half-open", "half-open->closed"}, transitions)
}
