package earthengine

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

	"github.com/jordanair/jordanair/internal/provider/resilience"
)

const (
	// DefaultBaseURL is the base URL for the Earth Engine REST API.
	DefaultBaseURL = "https://earthengine.googleapis.com/v1"

	// ProviderName identifies this provider.
	ProviderName = "earthengine"
)

// ErrAuthRejected is returned when the remote service rejects the
// credential. The condition is terminal for the session: the caller
// surfaces it once and never retries.
var ErrAuthRejected = errors.New("earth engine rejected the credential")

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RequestRecorder records provider request metrics.
type RequestRecorder interface {
	RecordRequest(provider, operation string, duration time.Duration, err error)
}

// ClientConfig holds configuration for the Earth Engine client.
type ClientConfig struct {
	// Credentials is the parsed service-account key. Required.
	Credentials *Credentials

	// Project is the cloud project used for compute. Defaults to the
	// credential's project id.
	Project string

	// BaseURL is the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// HTTPClient is the HTTP client to use (must implement HTTPDoer).
	// If nil, a default resilient client is created.
	HTTPClient HTTPDoer

	// Timeout for individual API requests (default: 30s). Remote
	// reductions are slow; the timeout bounds them instead of letting
	// a request hang the interaction.
	Timeout time.Duration

	// Metrics records per-request provider metrics (optional).
	Metrics RequestRecorder
}

// Client is an Earth Engine REST API client.
type Client struct {
	baseURL    string
	project    string
	httpClient HTTPDoer
	tokens     *tokenSource
	metrics    RequestRecorder
}

// NewClient creates a new Earth Engine client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Credentials == nil {
		return nil, ErrNoCredential
	}

	project := cfg.Project
	if project == "" {
		project = cfg.Credentials.ProjectID
	}
	if project == "" {
		return nil, fmt.Errorf("%w: no project id", ErrInvalidCredential)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = resilience.NewClient(resilience.ClientConfig{
			Name:    ProviderName,
			Timeout: timeout,
		})
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		project:    project,
		httpClient: httpClient,
		tokens:     newTokenSource(cfg.Credentials, httpClient),
		metrics:    cfg.Metrics,
	}, nil
}

// Project returns the cloud project the client computes under.
func (c *Client) Project() string {
	return c.project
}

// computeValueRequest is the body of a value:compute call.
type computeValueRequest struct {
	Expression *Expression `json:"expression"`
}

// computeValueResponse carries a reduction result. Bands with no data
// in the requested window come back as explicit nulls and decode to nil.
type computeValueResponse struct {
	Result map[string]*float64 `json:"result"`
}

// ComputeValue evaluates an expression that yields a band-to-scalar
// dictionary, such as a spatial-mean reduction. Missing bands are nil
// entries, never zero.
func (c *Client) ComputeValue(ctx context.Context, expr *Expression) (map[string]*float64, error) {
	url := fmt.Sprintf("%s/projects/%s/value:compute", c.baseURL, c.project)

	var result computeValueResponse
	if err := c.post(ctx, "value:compute", url, computeValueRequest{Expression: expr}, &result); err != nil {
		return nil, err
	}
	return result.Result, nil
}

// VisualizationOptions controls raster colorization server-side: pixel
// values are linearly interpolated into the palette, clamped to the range.
type VisualizationOptions struct {
	Ranges        []Range  `json:"ranges,omitempty"`
	PaletteColors []string `json:"paletteColors,omitempty"`
}

// Range is a display value range.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// createMapRequest is the body of a maps call.
type createMapRequest struct {
	Expression           *Expression           `json:"expression"`
	FileFormat           string                `json:"fileFormat"`
	VisualizationOptions *VisualizationOptions `json:"visualizationOptions,omitempty"`
}

// createMapResponse names the exported map.
type createMapResponse struct {
	Name string `json:"name"`
}

// MapLayer is an exported tile layer.
type MapLayer struct {
	// Name is the server-side map resource name.
	Name string

	// TileURL is the XYZ tile URL template for the layer.
	TileURL string
}

// CreateMap exports an image expression as a tile layer and returns its
// tile URL template.
func (c *Client) CreateMap(ctx context.Context, expr *Expression, vis *VisualizationOptions) (*MapLayer, error) {
	url := fmt.Sprintf("%s/projects/%s/maps", c.baseURL, c.project)

	body := createMapRequest{
		Expression:           expr,
		FileFormat:           "PNG",
		VisualizationOptions: vis,
	}

	var result createMapResponse
	if err := c.post(ctx, "maps", url, body, &result); err != nil {
		return nil, err
	}
	if result.Name == "" {
		return nil, fmt.Errorf("maps endpoint returned no map name")
	}

	return &MapLayer{
		Name:    result.Name,
		TileURL: fmt.Sprintf("%s/%s/tiles/{z}/{x}/{y}", c.baseURL, result.Name),
	}, nil
}

// post executes an authenticated JSON round trip.
func (c *Client) post(ctx context.Context, operation, url string, body, out any) (err error) {
	if c.metrics != nil {
		start := time.Now()
		defer func() {
			c.metrics.RecordRequest(ProviderName, operation, time.Since(start), err)
		}()
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s: %w (status %d)", operation, ErrAuthRejected, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d from %s endpoint: %s",
			resp.StatusCode, operation, strings.TrimSpace(string(snippet)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}
