package ports

// AttemptLimiter throttles repeated attempts per key, such as delivery code
// submissions per order.
type AttemptLimiter interface {
	// Allow consumes one attempt for key and reports whether it was permitted.
	Allow(key string) bool
}
