// Package client adapts the dashboard's canonical employee records into the
// payloads the three prediction services accept, and reports their health.
package client

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

	"github.com/goliatone/go-workforce-insights/pkg/employee"
	"github.com/goliatone/go-workforce-insights/pkg/prediction"
	"github.com/goliatone/go-workforce-insights/pkg/remap"
)

// Default service locations.
const (
	DefaultLogisticRegressionURL = "http://localhost:8000"
	DefaultRandomForestURL       = "http://localhost:8001"
	DefaultProductivityURL       = "http://localhost:8002"
)

const (
	predictPath     = "/predict"
	maxResponseSize = 1 << 20
)

// Logger receives diagnostic output from the client.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Client talks to the prediction services over HTTP.
type Client struct {
	httpClient *http.Client
	baseURLs   map[prediction.Service]string
	logger     Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the location of a single service.
func WithBaseURL(service prediction.Service, baseURL string) Option {
	return func(c *Client) {
		if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
			c.baseURLs[service] = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient sets the HTTP client used for every request.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout bounds every request made by the client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout <= 0 {
			return
		}
		clone := *c.httpClient
		clone.Timeout = timeout
		c.httpClient = &clone
	}
}

// WithLogger routes diagnostic output to logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New constructs a Client pointing at the default service locations.
func New(options ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		baseURLs: map[prediction.Service]string{
			prediction.ServiceLogisticRegression: DefaultLogisticRegressionURL,
			prediction.ServiceRandomForest:       DefaultRandomForestURL,
			prediction.ServiceProductivity:       DefaultProductivityURL,
		},
		logger: nopLogger{},
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// BaseURL returns the configured location of service.
func (c *Client) BaseURL(service prediction.Service) string {
	return c.baseURLs[service]
}

// PredictAssignment1 sends data unchanged to the logistic regression service.
func (c *Client) PredictAssignment1(ctx context.Context, data employee.Data) (prediction.LogisticRegression, error) {
	var out prediction.LogisticRegression
	err := c.predict(ctx, prediction.ServiceLogisticRegression, data, &out)
	return out, err
}

// PredictAssignment2 remaps the categorical fields the random forest service
// was trained on before sending.
func (c *Client) PredictAssignment2(ctx context.Context, data employee.Data) (prediction.RandomForest, error) {
	var out prediction.RandomForest
	err := c.predict(ctx, prediction.ServiceRandomForest, remap.ForRandomForest(data), &out)
	return out, err
}

// PredictAssignment3 sends the productivity record unchanged.
func (c *Client) PredictAssignment3(ctx context.Context, data employee.Productivity) (prediction.Productivity, error) {
	var out prediction.Productivity
	err := c.predict(ctx, prediction.ServiceProductivity, data, &out)
	return out, err
}

func (c *Client) predict(ctx context.Context, service prediction.Service, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("client: encode %s payload: %w", service, err)
	}

	endpoint, err := c.endpoint(service, predictPath)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("client: build %s request: %w", service, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Printf("client: %s request failed: %v", service, err)
		return fmt.Errorf("%w: %s: %w", ErrServiceUnreachable, service, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: %s: read response: %w", ErrServiceUnreachable, service, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := errorMessage(raw)
		if message == "" {
			message = statusMessage(resp.StatusCode)
		}
		return &APIError{Service: service, Status: resp.StatusCode, Message: message}
	}

	// Some failures come back with a success status and an error field.
	if message := errorMessage(raw); message != "" {
		return &APIError{Service: service, Status: resp.StatusCode, Message: message}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("client: decode %s response: %w", service, err)
	}
	return nil
}

// errorMessage returns the error field of raw when it is a non-empty string.
func errorMessage(raw []byte) string {
	var envelope struct {
		Error any `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return ""
	}
	message, _ := envelope.Error.(string)
	return strings.TrimSpace(message)
}

func (c *Client) endpoint(service prediction.Service, path string) (string, error) {
	if !service.Valid() {
		return "", fmt.Errorf("client: unknown service %q", service)
	}
	base, ok := c.baseURLs[service]
	if !ok || base == "" {
		return "", fmt.Errorf("client: no base url for service %q", service)
	}
	return base + path, nil
}

// CheckHealth reports whether service answers its root path with a success
// status. Any failure, including an unknown service, yields false.
func (c *Client) CheckHealth(ctx context.Context, service prediction.Service) bool {
	endpoint, err := c.endpoint(service, "/")
	if err != nil {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			c.logger.Printf("client: %s health check failed: %v", service, err)
		}
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// CheckAssignment1Health probes the logistic regression service.
func (c *Client) CheckAssignment1Health(ctx context.Context) bool {
	return c.CheckHealth(ctx, prediction.ServiceLogisticRegression)
}

// CheckAssignment2Health probes the random forest service.
func (c *Client) CheckAssignment2Health(ctx context.Context) bool {
	return c.CheckHealth(ctx, prediction.ServiceRandomForest)
}

// CheckAssignment3Health probes the productivity service.
func (c *Client) CheckAssignment3Health(ctx context.Context) bool {
	return c.CheckHealth(ctx, prediction.ServiceProductivity)
}
