package enrich

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAQIFromPM25(t *testing.T) {
	tcs := []struct {
		pm25 float64
		want int
	}{
		{pm25: -3, want: 0},
		{pm25: 0, want: 0},
		{pm25: 15, want: 25},
		{pm25: 30, want: 50},
		{pm25: 45, want: 75},
		{pm25: 75, want: 150},
		{pm25: 105, want: 250},
		{pm25: 250, want: 400},
		{pm25: 380, want: 500},
		{pm25: 1000, want: 500},
	}
	for _, tc := range tcs {
		assert.Equal(t, tc.want, AQIFromPM25(tc.pm25), "pm2.5=%v", tc.pm25)
	}
}

func TestTTLCache(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	c := newTTLCache[int](time.Minute, func() time.Time { return now })

	c.set("a", 1)
	v, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	now = now.Add(time.Minute)
	_, ok = c.get("a")
	assert.False(t, ok)

	off := newTTLCache[int](0, func() time.Time { return now })
	off.set("a", 1)
	_, ok = off.get("a")
	assert.False(t, ok)
}

func TestTTLCache_SweepsExpiredKeys(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	c := newTTLCache[int](10*time.Minute, func() time.Time { return now })

	for i := 0; i < 5000; i++ {
		c.set(fmt.Sprintf("%d", i), i)
	}
	assert.Equal(t, 5000, c.size())

	// still fresh, nothing to drop
	now = now.Add(5 * time.Minute)
	c.set("fresh", 1)
	assert.Equal(t, 5001, c.size())

	now = now.Add(24 * time.Hour)
	c.set("late", 2)
	assert.Equal(t, 1, c.size())
	v, ok := c.get("late")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}
