package server

import (
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter enforces a global and a per-visitor request rate using token
// buckets. Visitors are keyed by client IP.
type RateLimiter struct {
	mu         sync.Mutex
	global     *rate.Limiter
	visitors   map[string]*rate.Limiter
	perVisitor rate.Limit
	burst      int
}

// NewRateLimiter builds a limiter from requests-per-minute budgets.
// globalRPM bounds the whole process; perVisitorRPM bounds one client IP.
func NewRateLimiter(globalRPM, perVisitorRPM int) *RateLimiter {
	globalBurst := globalRPM
	if globalBurst < 1 {
		globalBurst = 1
	}
	visitorBurst := perVisitorRPM
	if visitorBurst < 1 {
		visitorBurst = 1
	}
	return &RateLimiter{
		global:     rate.NewLimiter(rate.Limit(float64(globalRPM)/60.0), globalBurst),
		visitors:   make(map[string]*rate.Limiter),
		perVisitor: rate.Limit(float64(perVisitorRPM) / 60.0),
		burst:      visitorBurst,
	}
}

// Allow reports whether a request from the given visitor may proceed.
func (rl *RateLimiter) Allow(visitor string) bool {
	if !rl.global.Allow() {
		return false
	}
	rl.mu.Lock()
	limiter, ok := rl.visitors[visitor]
	if !ok {
		limiter = rate.NewLimiter(rl.perVisitor, rl.burst)
		rl.visitors[visitor] = limiter
	}
	rl.mu.Unlock()
	return limiter.Allow()
}
