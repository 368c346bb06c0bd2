package sockets

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

func WithPingInterval(d time.Duration) func(*Hub) {
	return func(h *Hub) {
		h.pingInterval = d
	}
}

func WithWriteTimeout(d time.Duration) func(*Hub) {
	return func(h *Hub) {
		h.writeTimeout = d
	}
}

func WithLogger(logger *zap.Logger) func(*Hub) {
	return func(h *Hub) {
		h.logger = logger
	}
}

// WithCheckOrigin replaces the default same-origin check.
func WithCheckOrigin(f func(r *http.Request) bool) func(*Hub) {
	return func(h *Hub) {
		h.upgrader.CheckOrigin = f
	}
}
