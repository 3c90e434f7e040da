package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit allows up to perMinute requests per client IP, with a small burst.
// Idle entries expire so the map does not grow with one-off clients.
func RateLimit(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		perMinute = 60
	}

	const ttl = 5 * time.Minute
	limit := rate.Every(time.Minute / time.Duration(perMinute))

	var (
		mu       sync.Mutex
		visitors = make(map[string]*visitor)
	)

	allow := func(key string) bool {
		now := time.Now()

		mu.Lock()
		v, ok := visitors[key]
		if !ok {
			v = &visitor{limiter: rate.NewLimiter(limit, perMinute/4+1)}
			visitors[key] = v
		}
		v.lastSeen = now
		for k, other := range visitors {
			if now.Sub(other.lastSeen) > ttl {
				delete(visitors, k)
			}
		}
		mu.Unlock()

		return v.limiter.Allow()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}

			if !allow(host) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"success": false,
					"code":    http.StatusTooManyRequests,
					"message": "too many requests",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
