package paymentqueue

import "time"

// maxRetryDelay caps the exponential backoff so worst-case recovery latency
// stays bounded by max_retries * 32 minutes.
const maxRetryDelay = 32 * time.Minute

// retryDelay computes the wait before the next attempt: 1, 2, 4, 8, 16, 32,
// 32, ... minutes for retry counts 1, 2, 3, ...
func retryDelay(retryCount int) time.Duration {
	if retryCount < 1 {
		retryCount = 1
	}
	if retryCount > 6 {
		return maxRetryDelay
	}
	delay := time.Minute << (retryCount - 1)
	if delay > maxRetryDelay {
		return maxRetryDelay
	}
	return delay
}
