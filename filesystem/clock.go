package filesystem

import (
	"sync/atomic"
	"time"
)

// clock hands out strictly increasing timestamps so ctime/mtime ordering holds
// even when the wall clock is coarse or steps backwards.
type clock struct {
	last atomic.Int64 // unix nanos of the last timestamp handed out
}

func (c *clock) Now() time.Time {
	for {
		last := c.last.Load()
		now := time.Now().UnixNano()
		if now <= last {
			now = last + 1
		}
		if c.last.CompareAndSwap(last, now) {
			return time.Unix(0, now)
		}
	}
}
