package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/luckywheel-vn/luckywheel-backend/internal/utils"
)

// RateLimiter is a fixed-window in-process request counter. Good enough for
// a single-instance promo tool; correctness never depends on it (the unique
// index does the real work).
type RateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	buckets map[string]*bucket

	// now is swapped out in tests
	now func() time.Time
}

type bucket struct {
	count       int
	windowStart time.Time
}

// NewRateLimiter creates a limiter allowing limit requests per window per key
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  window,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Allow reports whether a request for key fits in the current window
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets[key]
	if !ok || now.Sub(b.windowStart) >= rl.window {
		rl.buckets[key] = &bucket{count: 1, windowStart: now}
		rl.prune(now)
		return true
	}

	if b.count >= rl.limit {
		return false
	}
	b.count++
	return true
}

// prune drops expired buckets; called with the lock held
func (rl *RateLimiter) prune(now time.Time) {
	if len(rl.buckets) < 10000 {
		return
	}
	for key, b := range rl.buckets {
		if now.Sub(b.windowStart) >= rl.window {
			delete(rl.buckets, key)
		}
	}
}

// RateLimitMiddleware throttles requests per client IP
func RateLimitMiddleware(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "Too many requests, please try again later.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// SpinRateLimitMiddleware throttles spin attempts per IP and phone so one
// phone cannot burn the whole IP budget with retries. The body is peeked and
// restored so the handler can still bind it.
func SpinRateLimitMiddleware(rl *RateLimiter, pepper string) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(data))

		var body struct {
			Phone string `json:"phone"`
		}
		// Malformed bodies fall through to the handler's own validation
		_ = json.Unmarshal(data, &body)
		if body.Phone == "" {
			c.Next()
			return
		}

		hash := utils.HashPhone(utils.NormalizePhone(body.Phone), pepper)
		key := c.ClientIP() + "-" + hash[:8]
		if !rl.Allow(key) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "Too many spin attempts, please try again later.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
