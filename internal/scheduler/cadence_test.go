package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheckInterval(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		departs  time.Time
		interval time.Duration
		inWindow bool
	}{
		{"tomorrow", now.AddDate(0, 0, 1), nearInterval, true},
		{"seven days out", now.AddDate(0, 0, 7), nearInterval, true},
		{"eight days out", now.AddDate(0, 0, 8), midInterval, true},
		{"thirty days out", now.AddDate(0, 0, 30), midInterval, true},
		{"thirty one days out", now.AddDate(0, 0, 31), farInterval, true},
		{"ninety days out", now.AddDate(0, 0, 90), farInterval, true},
		{"ninety one days out", now.AddDate(0, 0, 91), 0, false},
		{"already departed", now.Add(-time.Hour), 0, false},
		{"departing right now", now, 0, false},
		{"36 hours out counts as two days", now.Add(36 * time.Hour), nearInterval, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			interval, ok := CheckInterval(now, tt.departs)
			assert.Equal(t, tt.inWindow, ok)
			assert.Equal(t, tt.interval, interval)
		})
	}
}

func TestKeyedLock(t *testing.T) {
	l := newKeyedLock()

	assert.True(t, l.TryAcquire("trip:1"))
	assert.False(t, l.TryAcquire("trip:1"), "second acquire must fail while held")
	assert.True(t, l.TryAcquire("trip:2"), "different keys are independent")

	l.Release("trip:1")
	assert.True(t, l.TryAcquire("trip:1"))
}
