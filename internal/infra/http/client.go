package http

import (
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

// NewClient builds the shared HTTP client used by both API adapters.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}
