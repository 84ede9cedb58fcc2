package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"shopify-asset-sync/internal/adapters/shopify/dto"
	"shopify-asset-sync/internal/config"
	"shopify-asset-sync/internal/logging"
	"shopify-asset-sync/internal/matching"
)

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// CatalogService is the destination-catalog surface the sync pipeline
// consumes.
type CatalogService interface {
	matching.VariantPager
	CreateStagedUpload(ctx context.Context, fileName, mimeType string, sizeBytes int64) (StagedUploadTarget, error)
	UploadStaged(ctx context.Context, target StagedUploadTarget, fileName, mimeType string, content io.Reader) error
	CommitFile(ctx context.Context, target StagedUploadTarget, altText string) (CommittedFile, error)
	PollFileUntilReady(ctx context.Context, fileID string) (string, error)
	SetProductAttribute(ctx context.Context, productID, namespace, key, value, valueType string) error
}

type Client struct {
	config     config.ShopifyConfig
	httpClient *http.Client
	pacer      *rate.Limiter
	logger     logging.LoggerService
}

func NewClient(cfg config.ShopifyConfig, httpClient *http.Client, logger logging.LoggerService) CatalogService {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	rps := cfg.PaceRPS
	if rps <= 0 {
		rps = 2
	}
	return &Client{
		config:     cfg,
		httpClient: httpClient,
		pacer:      rate.NewLimiter(rate.Limit(rps), 4),
		logger:     logger,
	}
}

func (c *Client) logError(msg string, err error) {
	if c.logger != nil {
		c.logger.LogError(msg, err)
	}
}

func (c *Client) logWarning(msg string) {
	if c.logger != nil {
		c.logger.LogWarning(msg)
	}
}

func (c *Client) endpoint() (string, error) {
	domain := strings.TrimSpace(c.config.ShopDomain)
	if domain == "" {
		return "", errors.New("shopify shop domain is empty")
	}
	if !strings.HasPrefix(domain, "http://") && !strings.HasPrefix(domain, "https://") {
		domain = "https://" + domain
	}
	domain = strings.TrimRight(domain, "/")
	if c.config.APIVer == "" {
		return "", errors.New("shopify api version is empty")
	}
	return domain + "/admin/api/" + c.config.APIVer + "/graphql.json", nil
}

func (c *Client) shopifyAPIRequest(ctx context.Context, method string, endpoint string, body io.Reader) ([]byte, error) {
	if err := c.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.config.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newHTTPStatusError(resp.StatusCode, resp.Status, respBody)
	}

	return respBody, nil
}

func (c *Client) graphqlRequest(ctx context.Context, query string, variables map[string]any, out any) error {
	endpoint, err := c.endpoint()
	if err != nil {
		return err
	}

	payload := graphQLRequest{
		Query:     strings.TrimSpace(query),
		Variables: variables,
	}
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	for attempt := 0; attempt <= graphqlRetryMax; attempt++ {
		raw, err := c.shopifyAPIRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
		if err != nil {
			if attempt < graphqlRetryMax && isRetryableHTTPError(err) {
				if err := sleepWithContext(ctx, retryDelay(attempt)); err != nil {
					return err
				}
				continue
			}
			c.logError("shopify graphql request failed", err)
			return err
		}

		var resp dto.GraphQLResponse[json.RawMessage]
		if err := json.Unmarshal(raw, &resp); err != nil {
			c.logError("shopify graphql response unmarshal failed", err)
			return err
		}
		if len(resp.Errors) > 0 {
			if isThrottleGraphQLError(resp.Errors) && attempt < graphqlRetryMax {
				if err := sleepWithContext(ctx, retryDelay(attempt)); err != nil {
					return err
				}
				continue
			}
			err := fmt.Errorf("shopify graphql errors: %s", formatGraphQLErrors(resp.Errors))
			c.logError("shopify graphql response errors", err)
			return err
		}
		if out == nil {
			return nil
		}
		if len(resp.Data) == 0 {
			return errors.New("shopify graphql response missing data")
		}
		return json.Unmarshal(resp.Data, out)
	}

	return errors.New("shopify graphql request retries exhausted")
}

func userErrorsToError(action string, errs []dto.ShopifyUserError) error {
	if len(errs) == 0 {
		return nil
	}
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		msg := strings.TrimSpace(e.Message)
		if msg == "" {
			continue
		}
		if len(e.Field) > 0 {
			msg = fmt.Sprintf("%s: %s", strings.Join(e.Field, "."), msg)
		}
		parts = append(parts, msg)
	}
	if len(parts) == 0 {
		return fmt.Errorf("shopify %s failed with user errors", action)
	}
	return fmt.Errorf("shopify %s failed: %s", action, strings.Join(parts, "; "))
}

func formatGraphQLErrors(errs []dto.GraphQLError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		msg := strings.TrimSpace(e.Message)
		if msg == "" {
			continue
		}
		if len(e.Path) > 0 {
			msg = fmt.Sprintf("%s (path: %v)", msg, e.Path)
		}
		parts = append(parts, msg)
	}
	if len(parts) == 0 {
		return "unknown graphql error"
	}
	return strings.Join(parts, "; ")
}
