package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/diagnosis/salvatore-shoes/pkg/auth"
	"github.com/diagnosis/salvatore-shoes/pkg/logger"
)

type VisitorConfig struct {
	Secret     string
	TTL        time.Duration
	CookieName string
	Secure     bool
}

// Visitor identifies the browser by a signed cookie, issuing a new one when
// it is missing, expired or tampered with.
func Visitor(cfg VisitorConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var visitorID string
			if c, err := r.Cookie(cfg.CookieName); err == nil {
				if id, err := auth.ParseVisitor(c.Value, cfg.Secret); err == nil {
					visitorID = id
				} else {
					logger.DebugContext(r.Context(), "Rejected visitor cookie", "error", err)
				}
			}

			if visitorID == "" {
				token, id, err := auth.NewVisitorToken(cfg.Secret, cfg.TTL)
				if err != nil {
					logger.ErrorContext(r.Context(), "Failed to issue visitor token", "error", err)
					next.ServeHTTP(w, r)
					return
				}
				visitorID = id
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    token,
					Path:     "/",
					MaxAge:   int(cfg.TTL.Seconds()),
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), logger.VisitorIDKey, visitorID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// VisitorID returns the id set by Visitor, or "".
func VisitorID(ctx context.Context) string {
	id, _ := ctx.Value(logger.VisitorIDKey).(string)
	return id
}
