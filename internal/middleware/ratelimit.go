// Package middleware holds gin middleware specific to the discovery API.
package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// windowLimiter tracks per-IP request counts within a fixed window.
type windowLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	max     int
	entries map[string]*windowEntry
}

type windowEntry struct {
	count     int
	expiresAt time.Time
}

// allow records a request for the given ip and reports whether it stays
// within the window budget.
func (l *windowLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	entry, ok := l.entries[ip]
	if !ok || now.After(entry.expiresAt) {
		l.entries[ip] = &windowEntry{count: 1, expiresAt: now.Add(l.window)}
		return true
	}

	entry.count++
	return entry.count <= l.max
}

// sweep drops expired entries. Runs on the cleanup ticker.
func (l *windowLimiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for ip, entry := range l.entries {
		if now.After(entry.expiresAt) {
			delete(l.entries, ip)
		}
	}
}

// RateLimiter limits requests per IP address within a time window. The done
// channel stops the background cleanup goroutine on shutdown.
func RateLimiter(maxRequests int, window time.Duration, done <-chan struct{}) gin.HandlerFunc {
	limiter := &windowLimiter{
		window:  window,
		max:     maxRequests,
		entries: make(map[string]*windowEntry),
	}

	go func() {
		ticker := time.NewTicker(window)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				limiter.sweep()
			case <-done:
				return
			}
		}
	}()

	return func(c *gin.Context) {
		ip, _, _ := net.SplitHostPort(c.Request.RemoteAddr)
		if ip == "" {
			ip = c.Request.RemoteAddr
		}

		if !limiter.allow(ip) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}
