package client

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

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/secunda/directory/internal/api"
)

// Config holds common client configuration
type Config struct {
	ServerURL string
	Timeout   time.Duration
	// CacheDir enables a persistent HTTP cache. Empty keeps the cache in memory.
	CacheDir string
	Debug    bool
}

// DefaultConfig returns a default client configuration
func DefaultConfig() Config {
	return Config{
		ServerURL: "http://localhost:8080",
		Timeout:   30 * time.Second,
		Debug:     false,
	}
}

// APIError is a non-2xx reply from the directory API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("directory api: %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client calls the directory HTTP API. Responses are cached and revalidated
// with their ETag on every call.
type Client struct {
	baseURL    string
	httpClient *http.Client
	debug      bool
}

// New creates a client for the server at config.ServerURL.
func New(config Config) *Client {
	httpClient := NewCachingHTTPClient(config.CacheDir)
	httpClient.Timeout = config.Timeout

	return &Client{
		baseURL:    strings.TrimRight(config.ServerURL, "/"),
		httpClient: httpClient,
		debug:      config.Debug,
	}
}

func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	var out api.HealthResponse
	if err := c.get(ctx, "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) OrganizationsByAddress(ctx context.Context, address string) (*api.AddressOrganizationsResponse, error) {
	var out api.AddressOrganizationsResponse
	err := c.get(ctx, api.BasePath+"/buildings/organizations", url.Values{"address": {address}}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) OrganizationsByActivity(ctx context.Context, name string) (*api.ActivityOrganizationsResponse, error) {
	var out api.ActivityOrganizationsResponse
	err := c.get(ctx, api.BasePath+"/activities/"+url.PathEscape(name)+"/organizations", nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) OrganizationsByActivityTree(ctx context.Context, name string) (*api.ActivityTreeOrganizationsResponse, error) {
	var out api.ActivityTreeOrganizationsResponse
	err := c.get(ctx, api.BasePath+"/activities/"+url.PathEscape(name)+"/tree/organizations", nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Nearby lists buildings around buildingID. Zero radius or limit use the
// server defaults.
func (c *Client) Nearby(ctx context.Context, buildingID uuid.UUID, radiusMeters float64, limit int) (*api.NearbyResponse, error) {
	query := url.Values{}
	if radiusMeters != 0 {
		query.Set("radius_m", strconv.FormatFloat(radiusMeters, 'f', -1, 64))
	}
	if limit != 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var out api.NearbyResponse
	if err := c.get(ctx, api.BasePath+"/buildings/"+buildingID.String()+"/nearby", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SearchOrganizations(ctx context.Context, q string, limit int) (*api.SearchResponse, error) {
	query := url.Values{"q": {q}}
	if limit != 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var out api.SearchResponse
	if err := c.get(ctx, api.BasePath+"/organizations/search", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListActivities returns the root activities, or the tree under parent when
// it is not empty.
func (c *Client) ListActivities(ctx context.Context, parent string) (*api.ActivitiesResponse, error) {
	query := url.Values{}
	if parent != "" {
		query.Set("parent", parent)
	}

	var out api.ActivitiesResponse
	if err := c.get(ctx, api.BasePath+"/activities", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetOrganization(ctx context.Context, id uuid.UUID) (*api.Organization, error) {
	var out api.Organization
	if err := c.get(ctx, api.BasePath+"/organizations/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s failed: %w", path, err)
	}
	defer func() {
		// httpcache stores the body once it has been read to EOF
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if c.debug {
		log.Debug().
			Str("url", target).
			Int("status", resp.StatusCode).
			Bool("from_cache", resp.Header.Get(fromCacheHeader) != "").
			Msg("directory api response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp api.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil || errResp.Error == "" {
			errResp.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
