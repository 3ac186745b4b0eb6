package starscroll

import "time"

// Clock provides the time elapsed between two frames, in seconds
type Clock interface {
	Delta() float64
}

// SystemClock measures wall time. The first sample returns 0.
type SystemClock struct {
	last time.Time
	now  func() time.Time
}

func NewSystemClock() *SystemClock {
	return &SystemClock{now: time.Now}
}

func (c *SystemClock) Delta() float64 {
	if c.now == nil {
		c.now = time.Now
	}
	now := c.now()
	if c.last.IsZero() {
		c.last = now
		return 0
	}

	delta := now.Sub(c.last).Seconds()
	c.last = now

	return delta
}

// FixedClock returns the same delta on every frame
type FixedClock float64

func (c FixedClock) Delta() float64 {
	return float64(c)
}
