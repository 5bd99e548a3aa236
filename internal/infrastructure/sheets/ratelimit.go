package sheets

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter limita las llamadas a la API de Sheets (cubeta de tokens) y respeta la espera
// indicada tras un 429.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

// NewRateLimiter construye el limitador. Valores no positivos usan 1 req/s con ráfaga de 5.
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	if burst <= 0 {
		burst = 5
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst)}
}

// Wait bloquea hasta poder hacer la siguiente llamada o hasta que ctx termine.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(retryAt)):
		}
	}
	return r.limiter.Wait(ctx)
}

// RecordRateLimitError fija una pausa después de un 429. Sin Retry-After espera 30 s.
func (r *RateLimiter) RecordRateLimitError(retryAfter time.Duration) {
	if retryAfter <= 0 {
		retryAfter = 30 * time.Second
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retryAt = time.Now().Add(retryAfter)
}
