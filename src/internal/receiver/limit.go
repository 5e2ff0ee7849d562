package receiver

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const limiterCleanupInterval = time.Minute

// IPLimiter provides per-client request limiting for the receiver.
type IPLimiter struct {
	clients sync.Map // map[string]*clientLimiter
	rps     float64
	burst   int
	done    chan struct{}
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewIPLimiter creates a per-IP limiter. A rate of 0 disables limiting.
// Burst defaults to the sustained rate.
func NewIPLimiter(rps, burst float64) *IPLimiter {
	if burst <= 0 {
		burst = rps
	}

	l := &IPLimiter{
		rps:   rps,
		burst: int(burst),
		done:  make(chan struct{}),
	}

	if l.rps > 0 {
		if l.burst < 1 {
			l.burst = 1
		}
		go l.cleanup()
	}

	return l
}

// Allow reports whether a request from the client should proceed.
func (l *IPLimiter) Allow(clientIP string) bool {
	if l.rps <= 0 {
		return true
	}
	return l.getLimiter(clientIP).Allow()
}

// getLimiter returns the rate limiter for a client
func (l *IPLimiter) getLimiter(clientIP string) *rate.Limiter {
	if val, ok := l.clients.Load(clientIP); ok {
		client := val.(*clientLimiter)
		client.lastSeen = time.Now()
		return client.limiter
	}

	limiter := rate.NewLimiter(rate.Limit(l.rps), l.burst)
	client := &clientLimiter{
		limiter:  limiter,
		lastSeen: time.Now(),
	}

	l.clients.Store(clientIP, client)
	return limiter
}

// cleanup removes old client limiters
func (l *IPLimiter) cleanup() {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			l.removeOldClients()
		}
	}
}

// removeOldClients removes limiters that haven't been seen recently
func (l *IPLimiter) removeOldClients() {
	// Keep for 2x cleanup interval
	threshold := time.Now().Add(-limiterCleanupInterval * 2)

	l.clients.Range(func(key, value any) bool {
		client := value.(*clientLimiter)
		if client.lastSeen.Before(threshold) {
			l.clients.Delete(key)
		}
		return true
	})
}

// Stop shuts down the cleanup routine.
func (l *IPLimiter) Stop() {
	close(l.done)
}

// ActiveClients returns the number of tracked clients.
func (l *IPLimiter) ActiveClients() int {
	count := 0
	l.clients.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}
