package roam

import "time"

// retryPolicy bounds the reconnect loop for connection-class failures.
// Delays double from BaseDelay and are capped at MaxDelay; MaxAttempts counts
// every send, so at most MaxAttempts-1 waits occur.
type retryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// defaultRetryPolicy gives the app time to start after a deep-link relaunch:
// 500ms, 1s, 2s, 4s, 8s, 15s, 15s between eight attempts (~45s of waiting,
// worst case ~100s including request timeouts).
var defaultRetryPolicy = retryPolicy{
	MaxAttempts: 8,
	BaseDelay:   500 * time.Millisecond,
	MaxDelay:    15 * time.Second,
}

// delay returns the wait after the given zero-based failed attempt.
func (p retryPolicy) delay(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}
