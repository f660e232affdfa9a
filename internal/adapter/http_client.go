package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"

	"github.com/lv-asc/vangarments-app-sub017/internal/config"
	"github.com/lv-asc/vangarments-app-sub017/internal/logger"
	"github.com/lv-asc/vangarments-app-sub017/models"
)

type httpRemoteClient struct {
	client *resty.Client
	logger *logger.Logger

	mu    sync.RWMutex
	token string
}

// NewHTTPRemoteClient builds the resty-backed RemoteClient for the configured
// base URL. The request timeout bounds every call; the coordinator's backoff
// handles retries, so the client itself never retries.
func NewHTTPRemoteClient(cfg config.Adapter, log *logger.Logger) RemoteClient {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = config.DefaultRequestTimeout
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.RequestTimeout)

	c := &httpRemoteClient{client: cli, logger: log}
	c.SetToken(cfg.AuthToken)
	return c
}

func (c *httpRemoteClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = strings.TrimSpace(token)
}

func (c *httpRemoteClient) PushBatch(ctx context.Context, items []models.PushItem) ([]models.PushResult, error) {
	req := models.PushRequest{Items: items, Length: len(items)}

	resp, err := c.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/items/batch")
	if err != nil {
		return nil, fmt.Errorf("push batch request: %w: %w", ErrNetworkUnreachable, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var pr models.PushResponse
	if err = json.Unmarshal(resp.Body(), &pr); err != nil {
		return nil, fmt.Errorf("decode push response: %w", err)
	}

	return pr.Results, nil
}

func (c *httpRemoteClient) UploadImage(ctx context.Context, remoteID string, data []byte) (string, error) {
	resp, err := c.authedRequest(ctx).
		SetHeader("Content-Type", "application/octet-stream").
		SetBody(data).
		Post("/items/" + remoteID + "/image")
	if err != nil {
		return "", fmt.Errorf("upload image request: %w: %w", ErrNetworkUnreachable, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", err
	}

	var ur models.ImageUploadResponse
	if err = json.Unmarshal(resp.Body(), &ur); err != nil {
		return "", fmt.Errorf("decode image upload response: %w", err)
	}

	return ur.URL, nil
}

func (c *httpRemoteClient) DeleteItem(ctx context.Context, remoteID string) error {
	resp, err := c.authedRequest(ctx).Delete("/items/" + remoteID)
	if err != nil {
		return fmt.Errorf("delete item request: %w: %w", ErrNetworkUnreachable, err)
	}
	// The contract makes deletes idempotent: a missing remote id is success.
	if resp.StatusCode() == http.StatusNotFound {
		return nil
	}

	return mapHTTPError(resp)
}

func (c *httpRemoteClient) PullSince(ctx context.Context, watermark int64) ([]models.RemoteItem, int64, error) {
	resp, err := c.authedRequest(ctx).
		SetQueryParam("modified_since", fmt.Sprintf("%d", watermark)).
		Get("/items")
	if err != nil {
		return nil, 0, fmt.Errorf("pull request: %w: %w", ErrNetworkUnreachable, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, 0, err
	}

	var pr models.PullResponse
	if err = json.Unmarshal(resp.Body(), &pr); err != nil {
		return nil, 0, fmt.Errorf("decode pull response: %w", err)
	}

	return pr.Items, pr.Watermark, nil
}

func (c *httpRemoteClient) FetchImage(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch image request: %w: %w", ErrNetworkUnreachable, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	return resp.Body(), nil
}

func (c *httpRemoteClient) Ping(ctx context.Context) error {
	resp, err := c.client.R().SetContext(ctx).Get("/health")
	if err != nil {
		return fmt.Errorf("ping request: %w: %w", ErrNetworkUnreachable, err)
	}

	return mapHTTPError(resp)
}

func (c *httpRemoteClient) authedRequest(ctx context.Context) *resty.Request {
	req := c.client.R().SetContext(ctx)

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}

	return req
}

// mapHTTPError classifies non-2xx responses into the package sentinels:
// 5xx is retryable (unreachable class), 401 is an auth failure, any other
// 4xx is a permanent rejection.
func mapHTTPError(resp *resty.Response) error {
	code := resp.StatusCode()
	if code >= http.StatusOK && code < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(code)
	}

	switch {
	case code == http.StatusUnauthorized:
		return fmt.Errorf("http %d: %s: %w", code, body, ErrUnauthorized)
	case code >= http.StatusInternalServerError:
		return fmt.Errorf("http %d: %s: %w", code, body, ErrNetworkUnreachable)
	default:
		return fmt.Errorf("http %d: %s: %w", code, body, ErrRemoteRejected)
	}
}
