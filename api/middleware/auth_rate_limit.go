package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/xht-dev/wholesale-backend/api/responses"
	pkgerrors "github.com/xht-dev/wholesale-backend/pkg/errors"
	"github.com/xht-dev/wholesale-backend/pkg/logger"
)

type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// AuthRateLimitPolicy caps login and register attempts per client IP within a
// fixed window.
type AuthRateLimitPolicy struct {
	Name    string
	Window  time.Duration
	IPLimit int64
}

func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit int64) AuthRateLimitPolicy {
	if window <= 0 {
		window = time.Minute
	}
	if ipLimit <= 0 {
		ipLimit = 10
	}
	return AuthRateLimitPolicy{Name: name, Window: window, IPLimit: ipLimit}
}

func AuthRateLimit(policy AuthRateLimitPolicy, client rateLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if client == nil {
				next.ServeHTTP(w, r)
				return
			}

			scope := fmt.Sprintf("%s:ip:%s", policy.Name, clientIP(r))
			allowed, _, err := client.FixedWindowAllow(r.Context(), scope, policy.IPLimit, policy.Window)
			if err != nil {
				// Limiter errors fail open.
				if logg != nil {
					logg.Error(r.Context(), "rate limit check failed", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, try again later"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		if idx := strings.Index(fwd, ","); idx > 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
