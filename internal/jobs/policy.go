package jobs

import "time"

// Policy controls how jobs are scheduled and retried.
type Policy struct {
	// Attempts is the total number of executions before a job is buried.
	Attempts int
	// Delay postpones the first execution of every job.
	Delay time.Duration
	// Backoff is the base of the exponential retry delay.
	Backoff time.Duration
}

// DefaultPolicy returns three attempts with a 10s delay and 10s backoff base.
func DefaultPolicy() Policy {
	return Policy{Attempts: 3, Delay: 10 * time.Second, Backoff: 10 * time.Second}
}

// RetryDelay is the wait before retrying after the given failed attempt
// (1-based): Backoff * 2^(attempt-1).
func (p Policy) RetryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return p.Backoff << (attempt - 1)
}

// Exhausted reports whether no attempts remain after the given one.
func (p Policy) Exhausted(attempt int) bool {
	return attempt >= p.Attempts
}
