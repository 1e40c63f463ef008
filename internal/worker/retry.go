package worker

import (
	"math/rand"
	"time"
)

// RetryPolicy shapes the redelivery schedule for notifications Telegram
// rejected. Delays grow by BackoffFactor from InitialDelay up to
// MaxDelay; Jitter adds a random slice on top so retries for many chats
// do not hit the API in lockstep after an outage.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	Jitter        float64 // extra random fraction of the delay, 0..1
}

// Exhausted reports whether a task that already failed retryCount times
// is out of attempts.
func (r RetryPolicy) Exhausted(retryCount int) bool {
	return retryCount >= r.MaxRetries
}

// NextDelay returns how long to hold a task before redelivery attempt
// (1-based). The base delay is deterministic; jitter only ever adds.
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	factor := r.BackoffFactor
	if factor <= 0 {
		factor = 2
	}

	delay := r.InitialDelay
	if delay <= 0 {
		delay = time.Second
	}
	for i := 1; i < attempt; i++ {
		delay = time.Duration(float64(delay) * factor)
		if r.MaxDelay > 0 && delay >= r.MaxDelay {
			delay = r.MaxDelay
			break
		}
	}

	if r.Jitter > 0 {
		delay += time.Duration(rand.Float64() * r.Jitter * float64(delay))
	}
	return delay
}
