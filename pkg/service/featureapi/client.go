package featureapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/cyffff/riskai/pkg/domain/interfaces"
	"github.com/cyffff/riskai/pkg/domain/model"
	"github.com/cyffff/riskai/pkg/utils/safe"
)

const defaultTimeout = 10 * time.Second

// Client talks to the upstream feature platform API. It serves both as a
// fallback source for feature values during assessment and as the gateway
// for feature analytics (importance ranking, per-feature metrics).
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var (
	_ interfaces.FeatureValueProvider   = &Client{}
	_ interfaces.FeatureInsightProvider = &Client{}
)

type Option func(*Client)

func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) get(ctx context.Context, path string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to build request", goerr.V("path", path))
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, goerr.Wrap(err, "feature API request failed", goerr.V("path", path))
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, goerr.New("feature API returned unexpected status",
			goerr.V("path", path), goerr.V("status", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, goerr.Wrap(err, "failed to decode feature API response", goerr.V("path", path))
	}
	return resp.StatusCode, nil
}

// FetchValue resolves a single feature value for an entity. A 404 from the
// platform means the value simply does not exist and is not an error.
func (c *Client) FetchValue(ctx context.Context, featureName, entityID string) (model.Value, bool, error) {
	path := fmt.Sprintf("/api/v1/features/%s/values/%s",
		url.PathEscape(featureName), url.PathEscape(entityID))

	var body struct {
		Value any `json:"value"`
	}
	status, err := c.get(ctx, path, &body)
	if err != nil {
		if status == http.StatusNotFound {
			return model.Value{}, false, nil
		}
		return model.Value{}, false, err
	}

	value, err := model.ValueFrom(body.Value)
	if err != nil {
		return model.Value{}, false, goerr.Wrap(err, "feature API returned unusable value",
			goerr.V("feature", featureName), goerr.V("entity_id", entityID))
	}
	if value.IsNil() {
		return model.Value{}, false, nil
	}
	return value, true, nil
}

// Importance fetches the platform-wide feature importance ranking.
func (c *Client) Importance(ctx context.Context) ([]model.FeatureImportance, error) {
	var body struct {
		Features []model.FeatureImportance `json:"features"`
	}
	if _, err := c.get(ctx, "/api/v1/features/importance", &body); err != nil {
		return nil, err
	}
	return body.Features, nil
}

// Metrics fetches summary statistics for one feature.
func (c *Client) Metrics(ctx context.Context, featureName string) (*model.FeatureMetrics, error) {
	path := fmt.Sprintf("/api/v1/features/%s/metrics", url.PathEscape(featureName))

	var metrics model.FeatureMetrics
	if _, err := c.get(ctx, path, &metrics); err != nil {
		return nil, err
	}
	return &metrics, nil
}
