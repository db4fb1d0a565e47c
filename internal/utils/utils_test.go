package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWaitFor(t *testing.T) {
	original := newTimer
	defer func() { newTimer = original }()

	var requested time.Duration
	newTimer = func(d time.Duration) (<-chan time.Time, func() bool) {
		requested = d
		ch := make(chan time.Time, 1)
		ch <- time.Now()
		return ch, func() bool { return true }
	}

	if err := WaitFor(context.Background(), 2*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if requested != 2*time.Second {
		t.Fatalf("expected timer of 2s, got %v", requested)
	}

	requested = 0
	if err := WaitFor(context.Background(), 0); err != nil {
		t.Fatalf("zero wait must return immediately: %v", err)
	}
	if requested != 0 {
		t.Fatalf("zero wait must not start a timer")
	}
}

func TestWaitForCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := WaitFor(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		expect  time.Duration
	}{
		{-1, time.Second},
		{0, time.Second},
		{1, time.Second},
		{3, 3 * time.Second},
	}

	for _, tt := range tests {
		if got := Backoff(time.Second, tt.attempt); got != tt.expect {
			t.Fatalf("attempt %d: expected %v, got %v", tt.attempt, tt.expect, got)
		}
	}
}
