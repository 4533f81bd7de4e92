package websocket

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

const (
	readBufferSize  = 1024
	writeBufferSize = 1024
)

// NewUpgrader builds the upgrader for /ws. With no allowed origins every
// origin is accepted; otherwise the Origin header must match an entry, and
// localhost origins and requests without an Origin header are let through.
func NewUpgrader(allowedOrigins []string) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  readBufferSize,
		WriteBufferSize: writeBufferSize,
		CheckOrigin:     originChecker(allowedOrigins),
	}
}

func originChecker(allowedOrigins []string) func(r *http.Request) bool {
	if len(allowedOrigins) == 0 {
		return func(*http.Request) bool { return true }
	}

	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[o] = true
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || allowed[origin] {
			return true
		}
		// For development/testing, allow any localhost variations
		return strings.Contains(origin, "localhost") || strings.Contains(origin, "127.0.0.1")
	}
}
