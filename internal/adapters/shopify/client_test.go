package shopify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shopify-asset-sync/internal/config"
)

// graphqlHandler routes each GraphQL POST to a response chosen by the
// test. The request body is recorded for assertions.
type graphqlHandler struct {
	t        *testing.T
	respond  func(query string, variables map[string]any) any
	requests []graphQLRequest
}

func (h *graphqlHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/admin/api/2024-10/graphql.json" {
		h.t.Errorf("unexpected path %s", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Header.Get("X-Shopify-Access-Token") != "test-token" {
		h.t.Error("missing access token header")
	}

	var req graphQLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.t.Errorf("decode graphql request: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	h.requests = append(h.requests, req)

	data := h.respond(req.Query, req.Variables)
	json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func newTestShopifyClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(config.ShopifyConfig{
		ShopDomain: server.URL,
		Token:      "test-token",
		APIVer:     "2024-10",
		Timeout:    5 * time.Second,
		PaceRPS:    1000,
	}, server.Client(), nil).(*Client)
	return client, server
}
