package drive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"strings"
	"time"

	"shopify-asset-sync/internal/adapters/drive/dto"
	"shopify-asset-sync/internal/domain/model"
)

const (
	driveRetryMax       = 3
	driveRetryBaseDelay = 500 * time.Millisecond
	driveRetryMaxDelay  = 10 * time.Second
)

type httpStatusError struct {
	statusCode int
	status     string
	body       string
}

func (e *httpStatusError) Error() string {
	if strings.TrimSpace(e.body) == "" {
		return fmt.Sprintf("drive request failed: %s", e.status)
	}
	return fmt.Sprintf("drive request failed: %s: %s", e.status, e.body)
}

// classifyStatusError maps a non-2xx Drive response onto the error
// taxonomy so callers can react with errors.Is.
func classifyStatusError(statusCode int, status string, body []byte) error {
	base := &httpStatusError{
		statusCode: statusCode,
		status:     status,
		body:       strings.TrimSpace(string(body)),
	}

	switch statusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %v", model.ErrAuthExpired, base)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %v", model.ErrQuotaExceeded, base)
	case http.StatusForbidden:
		if isQuotaReason(body) {
			return fmt.Errorf("%w: %v", model.ErrQuotaExceeded, base)
		}
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %v", model.ErrTransientNetwork, base)
	}
	return base
}

// Drive reports quota exhaustion as 403 with a reason code, not only 429.
func isQuotaReason(body []byte) bool {
	var parsed dto.ErrorResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return false
	}
	for _, e := range parsed.Error.Errors {
		switch e.Reason {
		case "rateLimitExceeded", "userRateLimitExceeded", "quotaExceeded":
			return true
		}
	}
	return false
}

func classifyTransportError(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", model.ErrTransientNetwork, err)
	}
	if strings.Contains(err.Error(), "connection reset") {
		return fmt.Errorf("%w: %v", model.ErrTransientNetwork, err)
	}
	return err
}

func isRetryable(err error) bool {
	return errors.Is(err, model.ErrTransientNetwork) || errors.Is(err, model.ErrQuotaExceeded)
}

// retryDelay is exponential with jitter, capped at driveRetryMaxDelay.
func retryDelay(attempt int) time.Duration {
	if attempt < 0 {
		return 0
	}
	delay := driveRetryBaseDelay << attempt
	if delay > driveRetryMaxDelay {
		delay = driveRetryMaxDelay
	}
	jitter := time.Duration(rand.Int63n(int64(delay) / 4))
	return delay + jitter
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
