package drive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"shopify-asset-sync/internal/adapters/drive/dto"
	"shopify-asset-sync/internal/config"
	"shopify-asset-sync/internal/domain/model"
	"shopify-asset-sync/internal/logging"
	"shopify-asset-sync/internal/ratelimit"
)

const (
	filesEndpoint = "https://www.googleapis.com/drive/v3/files"
	tokenEndpoint = "https://oauth2.googleapis.com/token"

	listPageSize = 100
	fileFields   = "id,name,mimeType,size,trashed"
)

// StorageService is the source-storage surface the sync pipeline consumes.
type StorageService interface {
	ListFolder(ctx context.Context, folderID string) ([]model.AssetCandidate, error)
	GetMetadata(ctx context.Context, fileID string) (model.AssetCandidate, error)
	Download(ctx context.Context, fileID string) (io.ReadCloser, error)
	TokenRefresher
}

type Client struct {
	config     config.DriveConfig
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	tokens     *TokenHolder
	logger     logging.LoggerService

	baseURL  string
	tokenURL string
}

func NewClient(cfg config.DriveConfig, httpClient *http.Client, limiter *ratelimit.Limiter, logger logging.LoggerService) StorageService {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		config:     cfg,
		httpClient: httpClient,
		limiter:    limiter,
		tokens:     NewTokenHolder(cfg.AccessToken),
		logger:     logger,
		baseURL:    filesEndpoint,
		tokenURL:   tokenEndpoint,
	}
}

// ListFolder enumerates the non-trashed files of one Drive folder as asset
// candidates. A failure here is fatal for the run.
func (c *Client) ListFolder(ctx context.Context, folderID string) ([]model.AssetCandidate, error) {
	folderID = strings.TrimSpace(folderID)
	if folderID == "" {
		return nil, fmt.Errorf("%w: empty folder id", model.ErrFolderLookup)
	}

	var candidates []model.AssetCandidate
	pageToken := ""
	for {
		params := url.Values{}
		params.Set("q", fmt.Sprintf("'%s' in parents and trashed = false", folderID))
		params.Set("fields", fmt.Sprintf("nextPageToken, files(%s)", fileFields))
		params.Set("pageSize", strconv.Itoa(listPageSize))
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var list dto.FileList
		err := c.getJSON(ctx, c.baseURL+"?"+params.Encode(), &list)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrFolderLookup, err)
		}

		for _, f := range list.Files {
			if f.Trashed {
				continue
			}
			candidates = append(candidates, mapFile(f))
		}

		if list.NextPageToken == "" {
			break
		}
		pageToken = list.NextPageToken
	}
	return candidates, nil
}

// GetMetadata fetches name, mime type and size for one file.
func (c *Client) GetMetadata(ctx context.Context, fileID string) (model.AssetCandidate, error) {
	fileID = strings.TrimSpace(fileID)
	if fileID == "" {
		return model.AssetCandidate{}, errors.New("drive file id is required")
	}

	params := url.Values{}
	params.Set("fields", fileFields)

	var f dto.File
	err := c.getJSON(ctx, c.baseURL+"/"+url.PathEscape(fileID)+"?"+params.Encode(), &f)
	if err != nil {
		return model.AssetCandidate{}, err
	}
	return mapFile(f), nil
}

// Download streams the file's media content. The caller owns the returned
// body.
func (c *Client) Download(ctx context.Context, fileID string) (io.ReadCloser, error) {
	fileID = strings.TrimSpace(fileID)
	if fileID == "" {
		return nil, errors.New("drive file id is required")
	}

	endpoint := c.baseURL + "/" + url.PathEscape(fileID) + "?alt=media"

	var body io.ReadCloser
	err := c.doWithRetry(ctx, func(token string) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return classifyTransportError(err)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return classifyStatusError(resp.StatusCode, resp.Status, respBody)
		}
		body = resp.Body
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// RefreshAccessToken exchanges the refresh token for a new access token.
func (c *Client) RefreshAccessToken(ctx context.Context) (string, error) {
	if strings.TrimSpace(c.config.RefreshToken) == "" {
		return "", errors.New("drive refresh token is not configured")
	}

	form := url.Values{}
	form.Set("client_id", c.config.ClientID)
	form.Set("client_secret", c.config.ClientSecret)
	form.Set("refresh_token", c.config.RefreshToken)
	form.Set("grant_type", "refresh_token")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", classifyTransportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("drive token refresh failed: %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}

	var token dto.TokenResponse
	if err := json.Unmarshal(respBody, &token); err != nil {
		return "", err
	}
	if strings.TrimSpace(token.AccessToken) == "" {
		return "", errors.New("drive token refresh returned empty access token")
	}

	if c.logger != nil {
		c.logger.Log("drive access token refreshed")
	}
	return token.AccessToken, nil
}

// getJSON performs a rate-limited, auth-refreshed, retried GET and decodes
// the JSON response into out.
func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	return c.doWithRetry(ctx, func(token string) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return classifyTransportError(err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return classifyTransportError(err)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return classifyStatusError(resp.StatusCode, resp.Status, respBody)
		}
		return json.Unmarshal(respBody, out)
	})
}

// doWithRetry sequences the call through the local rate limiter, the
// single-shot credential refresh wrapper and the transient-error backoff
// loop, in that order.
func (c *Client) doWithRetry(ctx context.Context, op func(token string) error) error {
	var lastErr error
	for attempt := 0; attempt < driveRetryMax; attempt++ {
		if err := c.limiter.WaitAdmit(ctx); err != nil {
			return err
		}

		err := WithAutoRefresh(ctx, c.tokens, c, op)
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) {
			return err
		}
		if c.logger != nil {
			c.logger.LogWarning(fmt.Sprintf("drive call retry %d/%d: %v", attempt+1, driveRetryMax, err))
		}
		if err := sleepWithContext(ctx, retryDelay(attempt)); err != nil {
			return err
		}
	}
	return lastErr
}

func mapFile(f dto.File) model.AssetCandidate {
	size, _ := strconv.ParseInt(f.Size, 10, 64)
	return model.AssetCandidate{
		SourceFileID: f.ID,
		FileName:     f.Name,
		MimeType:     f.MimeType,
		SizeBytes:    size,
	}
}
