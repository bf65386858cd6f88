package signal

import (
	"golang.org/x/time/rate"
)

// EventLimiter throttles inbound events of one connection. It is only used
// from that connection's read goroutine.
type EventLimiter struct {
	lim           *rate.Limiter
	violations    int
	maxViolations int
}

// NewEventLimiter allows perSecond events with the given burst. A zero rate
// disables limiting; a zero maxViolations never disconnects.
func NewEventLimiter(perSecond float64, burst, maxViolations int) *EventLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &EventLimiter{
		lim:           rate.NewLimiter(limit, burst),
		maxViolations: maxViolations,
	}
}

func (l *EventLimiter) Allow() bool {
	if l.lim.Allow() {
		return true
	}
	l.violations++
	return false
}

func (l *EventLimiter) Violations() int { return l.violations }

// Exhausted reports whether the connection should be dropped.
func (l *EventLimiter) Exhausted() bool {
	return l.maxViolations > 0 && l.violations >= l.maxViolations
}
