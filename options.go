package bbq

import "github.com/rishav/bbq/internal/backoff"

// Option configures a Queue at construction time.
type Option func(*config)

type config struct {
	backoffPolicy backoff.Policy
}

func defaultConfig() config {
	return config{backoffPolicy: backoff.Default()}
}

// WithBackoffPolicy overrides the spin/yield/sleep escalation Push and Pop
// use internally while retrying past a transient notAvailable result. It
// has no effect on the queue's correctness or its Full/Empty contract —
// only on how hard a caller spins before re-checking block state.
func WithBackoffPolicy(policy backoff.Policy) Option {
	return func(c *config) {
		c.backoffPolicy = policy
	}
}
