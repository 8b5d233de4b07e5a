package middleware

import (
	"net/http"

	"github.com/pomodoro/internal/logger"
	"github.com/pomodoro/internal/storage"
)

// RateLimitAPI ограничивает запросы к /api/* по IP и по владельцу (?uuid=).
// Счётчики живут в storage.LimiterStore (Redis или память). Недоступное
// хранилище лимитов не роняет API — запрос пропускается без учёта.
func RateLimitAPI(store storage.LimiterStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.RemoteAddr
			if x := r.Header.Get("X-Real-Ip"); x != "" {
				ip = x
			} else if x := r.Header.Get("X-Forwarded-For"); x != "" {
				ip = x
			}
			allowed, err := store.Allow(r.Context(), "ip:"+ip)
			if err != nil {
				logger.Errorf("ratelimit ip: %v", err)
			} else if !allowed {
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}
			if owner := r.URL.Query().Get("uuid"); owner != "" {
				allowed, err := store.Allow(r.Context(), "owner:"+owner)
				if err != nil {
					logger.Errorf("ratelimit owner: %v", err)
				} else if !allowed {
					http.Error(w, "too many requests", http.StatusTooManyRequests)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
