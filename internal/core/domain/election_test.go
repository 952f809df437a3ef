package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	tests := []struct {
		name string
		now  time.Time
		want Window
	}{
		{"one second before start", start.Add(-time.Second), WindowPending},
		{"exactly at start", start, WindowOpen},
		{"one second after start", start.Add(time.Second), WindowOpen},
		{"mid window", start.Add(30 * time.Minute), WindowOpen},
		{"exactly at end", end, WindowClosed},
		{"after end", end.Add(time.Second), WindowClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.now, start, end))
		})
	}
}

func TestWindowString(t *testing.T) {
	assert.Equal(t, "pending", WindowPending.String())
	assert.Equal(t, "open", WindowOpen.String())
	assert.Equal(t, "closed", WindowClosed.String())
}

func TestRemaining(t *testing.T) {
	now := time.Now()

	assert.Equal(t, 90*time.Second, Remaining(now, now.Add(90*time.Second)))
	assert.Equal(t, time.Duration(0), Remaining(now, now))
	assert.Equal(t, time.Duration(0), Remaining(now, now.Add(-time.Minute)))
}
