package drive

import (
	"context"
	"errors"
	"sync"

	"shopify-asset-sync/internal/domain/model"
)

// TokenHolder is the shared access-token slot updated by credential
// refresh. All in-flight operations read the current token through it.
type TokenHolder struct {
	mu    sync.Mutex
	token string
}

func NewTokenHolder(accessToken string) *TokenHolder {
	return &TokenHolder{token: accessToken}
}

func (h *TokenHolder) Get() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.token
}

func (h *TokenHolder) Set(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = token
}

// TokenRefresher exchanges the stored refresh credential for a new access
// token.
type TokenRefresher interface {
	RefreshAccessToken(ctx context.Context) (string, error)
}

// WithAutoRefresh runs op with the current access token. On an
// expired-token failure it refreshes exactly once, updates the holder and
// retries op a single time; a second auth failure is final for this call.
func WithAutoRefresh(ctx context.Context, holder *TokenHolder, refresher TokenRefresher, op func(token string) error) error {
	err := op(holder.Get())
	if err == nil || !errors.Is(err, model.ErrAuthExpired) {
		return err
	}

	fresh, refreshErr := refresher.RefreshAccessToken(ctx)
	if refreshErr != nil {
		return refreshErr
	}
	holder.Set(fresh)

	return op(holder.Get())
}
