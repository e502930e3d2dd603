package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestParseRecent(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", defaultRecent},
		{"recent=3", 3},
		{"recent=0", 0},
		{"recent=-4", 0},
		{"recent=500", maxRecent},
		{"recent=abc", defaultRecent},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/stats/overview?"+tt.query, nil)
			if got := parseRecent(r); got != tt.want {
				t.Fatalf("parseRecent(%q) = %d, want %d", tt.query, got, tt.want)
			}
		})
	}
}

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		want       string
	}{
		{"direct client", "198.51.100.2:5000", "", "198.51.100.2"},
		{"untrusted peer cannot spoof", "198.51.100.2:5000", "1.2.3.4", "198.51.100.2"},
		{"trusted proxy forwards", "10.0.0.5:80", "203.0.113.9, 10.0.0.5", "203.0.113.9"},
		{"trusted proxy with garbage header", "127.0.0.1:80", "not-an-ip", "127.0.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := extractClientIP(r); got != tt.want {
				t.Fatalf("extractClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsSuspicious(t *testing.T) {
	m := &securityMetrics{}
	if isSuspicious(httptest.NewRequest(http.MethodGet, "/api/entries", nil), m) {
		t.Fatalf("plain request flagged")
	}
	if !isSuspicious(httptest.NewRequest(http.MethodGet, "/.env", nil), m) {
		t.Fatalf("dotenv scan not flagged")
	}
	if _, suspicious := m.snapshot(); suspicious != 1 {
		t.Fatalf("expected one suspicious request, got %d", suspicious)
	}
}

func TestRateLimiterWindowResets(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	rl := &rateLimiter{clients: map[string]*clientInfo{}, now: func() time.Time { return now }}

	for i := 0; i < rateLimitRequests; i++ {
		if !rl.allow("a", nil) {
			t.Fatalf("request %d denied", i)
		}
	}
	if rl.allow("a", nil) {
		t.Fatalf("expected limit after %d requests", rateLimitRequests)
	}
	if !rl.allow("b", nil) {
		t.Fatalf("limits must be per client")
	}

	now = now.Add(rateLimitWindow + time.Second)
	if !rl.allow("a", nil) {
		t.Fatalf("expected a fresh window")
	}

	now = now.Add(11 * time.Minute)
	rl.cleanupStaleEntries()
	if len(rl.clients) != 0 {
		t.Fatalf("expected stale clients removed, got %d", len(rl.clients))
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  hi\x00 there\n "); got != "hi there" {
		t.Fatalf("sanitizeInput = %q", got)
	}
}
