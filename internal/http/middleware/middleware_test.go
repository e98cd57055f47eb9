package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/diagnosis/salvatore-shoes/internal/repo/memory"
	"github.com/diagnosis/salvatore-shoes/pkg/auth"
)

type failingRateLimitRepo struct{}

func (failingRateLimitRepo) CheckRateLimit(context.Context, string, int, time.Duration) (bool, error) {
	return false, errors.New("db down")
}

func (failingRateLimitRepo) CleanupExpired(context.Context) (int64, error) { return 0, nil }

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRateLimiter_LimitsPerIP(t *testing.T) {
	rl := NewRateLimiter(memory.NewRateLimitRepo(), RateLimitConfig{Name: "chat", Requests: 2, Window: time.Minute})
	h := rl.Middleware()(okHandler)

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
		req.RemoteAddr = ip + ":5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if send("10.0.0.1") != http.StatusOK || send("10.0.0.1") != http.StatusOK {
		t.Fatal("first two requests should pass")
	}
	if code := send("10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("third request: got %d, want 429", code)
	}
	if code := send("10.0.0.2"); code != http.StatusOK {
		t.Fatalf("other client: got %d, want 200", code)
	}
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	rl := NewRateLimiter(failingRateLimitRepo{}, RateLimitConfig{Name: "chat", Requests: 1, Window: time.Minute})
	rec := httptest.NewRecorder()
	rl.Middleware()(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}
}

func TestRateLimiter_Skip(t *testing.T) {
	rl := NewRateLimiter(memory.NewRateLimitRepo(), RateLimitConfig{
		Name: "forms", Requests: 0, Window: time.Minute,
		SkipFunc: func(r *http.Request) bool { return r.Method == http.MethodGet },
	})
	rec := httptest.NewRecorder()
	rl.Middleware()(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	if got := ClientIP(req); got != "192.0.2.1" {
		t.Fatalf("RemoteAddr: got %q", got)
	}
	req.Header.Set("X-Real-IP", "198.51.100.7")
	if got := ClientIP(req); got != "198.51.100.7" {
		t.Fatalf("X-Real-IP: got %q", got)
	}
	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	if got := ClientIP(req); got != "203.0.113.5" {
		t.Fatalf("X-Forwarded-For: got %q", got)
	}
}

func TestVisitor_IssuesAndReusesCookie(t *testing.T) {
	cfg := VisitorConfig{Secret: "test-secret", TTL: time.Hour, CookieName: "salvatore_visitor"}

	var seen string
	h := Visitor(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = VisitorID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/intro", nil))

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "salvatore_visitor" || !cookies[0].HttpOnly {
		t.Fatalf("expected one http-only visitor cookie, got %+v", cookies)
	}
	first := seen
	if first == "" {
		t.Fatal("expected visitor id in context")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/intro", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen != first {
		t.Fatalf("visitor id changed: %q -> %q", first, seen)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("valid cookie should not be reissued")
	}
}

func TestVisitor_RejectsForeignSignature(t *testing.T) {
	cfg := VisitorConfig{Secret: "test-secret", TTL: time.Hour, CookieName: "salvatore_visitor"}
	forged, err := auth.SignVisitor("attacker", "other-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	var seen string
	h := Visitor(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = VisitorID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "salvatore_visitor", Value: forged})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen == "" || seen == "attacker" {
		t.Fatalf("forged id accepted or none issued: %q", seen)
	}
	if len(rec.Result().Cookies()) != 1 {
		t.Fatal("expected a replacement cookie")
	}
}
