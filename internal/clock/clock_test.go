package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFake_AdvanceAndSince(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	f := NewFake(start)

	assert.Equal(t, start, f.Now())
	f.Advance(time.Second)
	assert.Equal(t, time.Second, f.Since(start))
	assert.Equal(t, start.Add(time.Second), f.Now())
}

func TestFake_AutoStep(t *testing.T) {
	start := time.Unix(100, 0)
	f := NewFake(start)
	f.AutoStep(time.Millisecond)

	t0 := f.Now()
	assert.Equal(t, time.Millisecond, f.Since(t0))
	assert.Equal(t, start.Add(time.Millisecond), f.Now())
}

func TestReal_IsMonotonic(t *testing.T) {
	c := Real()
	t0 := c.Now()
	assert.GreaterOrEqual(t, c.Since(t0), time.Duration(0))
}
