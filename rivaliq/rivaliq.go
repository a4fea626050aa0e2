// Package rivaliq is a thin HTTP client for the Rival IQ REST API v3.
// It covers the synchronous endpoints (landscapes, companies, social
// posts, summary metrics, follow/unfollow) and the asynchronous bulk
// export protocol: submit a job, poll its status until ready or failed,
// then fetch the generated CSV as a table.
package rivaliq

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/sirupsen/logrus"
)

const defaultBaseURL = "https://api.rivaliq.com/v3"

const (
	defaultPollInterval = 60 * time.Second
	defaultMaxWait      = 30 * time.Minute
)

// Client talks to the Rival IQ API. The API key travels as the apiKey
// query parameter on every request. Any non-2xx response is surfaced as
// a *StatusError; there is no automatic retry.
type Client struct {
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	log          *logrus.Logger
	strictParse  bool
	pollInterval time.Duration
	maxWait      time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root URL. Used by tests to point the
// client at a local server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for request and poll progress logging.
func WithLogger(log *logrus.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithStrictParse makes FetchResult return a *table.ParseError for
// malformed CSV bodies instead of degrading to an empty table.
func WithStrictParse() Option {
	return func(c *Client) {
		c.strictParse = true
	}
}

// WithPollInterval sets the interval between bulk export status checks
// used by BulkSocialPosts.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		c.pollInterval = d
	}
}

// WithMaxWait sets the wall-clock bound on bulk export polling used by
// BulkSocialPosts.
func WithMaxWait(d time.Duration) Option {
	return func(c *Client) {
		c.maxWait = d
	}
}

// NewClient creates a Rival IQ API client authenticating with apiKey.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log:          logrus.New(),
		pollInterval: defaultPollInterval,
		maxWait:      defaultMaxWait,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get performs a GET request against path with the given query
// parameters (a go-querystring struct or nil), requiring wantStatus.
// The response body is returned raw; callers decode it.
func (c *Client) get(
	ctx context.Context,
	path string,
	params any,
	wantStatus int,
) ([]byte, error) {
	u, err := c.buildURL(path, params)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return c.execute(req, path, wantStatus)
}

// getJSON performs a GET request and unmarshals the JSON response.
func (c *Client) getJSON(
	ctx context.Context,
	path string,
	params any,
	result any,
) error {
	body, err := c.get(ctx, path, params, http.StatusOK)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshaling response from GET %s: %w", path, err)
	}
	return nil
}

// postJSON performs a POST request with a JSON body.
func (c *Client) postJSON(
	ctx context.Context,
	path string,
	body any,
	wantStatus int,
) error {
	u, err := c.buildURL(path, nil)
	if err != nil {
		return err
	}

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request body: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, u, strings.NewReader(string(data)),
	)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	_, err = c.execute(req, path, wantStatus)
	return err
}

// delete performs a DELETE request, requiring wantStatus.
func (c *Client) delete(
	ctx context.Context,
	path string,
	wantStatus int,
) error {
	u, err := c.buildURL(path, nil)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	_, err = c.execute(req, path, wantStatus)
	return err
}

// buildURL joins the base URL and path, encodes params (if any), and
// always appends the apiKey query parameter.
func (c *Client) buildURL(path string, params any) (string, error) {
	values := url.Values{}
	if params != nil {
		v, err := query.Values(params)
		if err != nil {
			return "", fmt.Errorf("encoding query parameters: %w", err)
		}
		values = v
	}
	values.Set("apiKey", c.apiKey)
	return c.baseURL + path + "?" + values.Encode(), nil
}

// execute runs the request and enforces the expected status code.
func (c *Client) execute(
	req *http.Request, path string, wantStatus int,
) ([]byte, error) {
	c.log.WithFields(logrus.Fields{
		"method": req.Method,
		"path":   path,
	}).Debug("rivaliq request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf(
			"executing request %s %s: %w", req.Method, path, err,
		)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != wantStatus {
		return nil, &StatusError{
			Method:     req.Method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	return body, nil
}
