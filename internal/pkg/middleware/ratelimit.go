package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"furnistock/internal/pkg/cache"
	"furnistock/internal/pkg/logger"
)

// RateLimiter conta as requisições por IP numa janela fixa guardada no Redis.
// Se o Redis falhar a requisição segue: o limitador não derruba o inventário.
func RateLimiter(client cache.Client, limit int, window time.Duration, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			key := "rate-limit:" + ip
			ctx := r.Context()

			count, err := client.Incr(ctx, key)
			if err != nil {
				log.Warn("Rate limiter indisponível, liberando requisição.", map[string]interface{}{"error": err.Error()})
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				// primeira requisição da janela
				if err := client.Expire(ctx, key, window); err != nil {
					log.Warn("Falha ao definir expiração do rate limit.", map[string]interface{}{"error": err.Error()})
				}
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			if count > int64(limit) {
				retryAfter := window
				if ttl, err := client.TTL(ctx, key); err == nil && ttl > 0 {
					retryAfter = ttl
				}
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Round(time.Second).Seconds())))
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(int64(limit)-count, 10))
			next.ServeHTTP(w, r)
		})
	}
}
