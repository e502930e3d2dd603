package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	defaultRecent = 5
	maxRecent     = 50
)

// apiError is the JSON body of every 4xx/5xx API response.
type apiError struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "Failed to encode JSON response", "error", err, "url", r.URL.Path)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string, fields map[string]string) {
	writeJSON(w, r, status, apiError{Error: msg, Fields: fields})
}

// parseRecent reads ?recent=N, clamped to 0..maxRecent.
func parseRecent(r *http.Request) int {
	v := strings.TrimSpace(r.URL.Query().Get("recent"))
	if v == "" {
		return defaultRecent
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultRecent
	}
	if n < 0 {
		return 0
	}
	if n > maxRecent {
		return maxRecent
	}
	return n
}

// sanitizeInput removes control characters (except tab, newline, carriage
// return) and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
