//go:build !ps2

package hal

import "time"

type hostClock struct {
	start time.Time
}

func newHostClock() *hostClock {
	return &hostClock{start: time.Now()}
}

// Nanotime counts from HAL creation so values stay small, like the
// console's free-running counter after boot.
func (c *hostClock) Nanotime() uint64 {
	return uint64(time.Since(c.start))
}
