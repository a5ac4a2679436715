package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dd0wney/vkb-viewer/pkg/logging"
	"github.com/dd0wney/vkb-viewer/pkg/metrics"
	"github.com/dd0wney/vkb-viewer/pkg/model"
)

// Client talks to the remote query service over HTTP/JSON. All calls
// are fallible I/O: a failed call returns an error and never partial
// data, so a gateway failure can never corrupt already-rendered state.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logging.Logger
	metrics    *metrics.Registry
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the client logger
func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics enables gateway request metrics
func WithMetrics(r *metrics.Registry) Option {
	return func(c *Client) { c.metrics = r }
}

// NewClient creates a query service client for the given base URL
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListTeams fetches the teams available on the query service
func (c *Client) ListTeams(ctx context.Context) ([]TeamInfo, error) {
	var resp teamsResponse
	if err := c.get(ctx, "teams", "/api/teams", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Available, nil
}

// QueryEntities fetches entities matching the query options
func (c *Client) QueryEntities(ctx context.Context, opts QueryOptions) ([]*model.Entity, error) {
	params := url.Values{}
	if opts.Team != "" {
		params.Set("team", opts.Team)
	}
	if opts.Source != "" {
		params.Set("source", opts.Source)
	}
	if len(opts.Types) > 0 {
		params.Set("types", strings.Join(opts.Types, ","))
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		params.Set("offset", strconv.Itoa(opts.Offset))
	}
	if opts.SearchTerm != "" {
		params.Set("searchTerm", opts.SearchTerm)
	}

	var resp entitiesResponse
	if err := c.get(ctx, "entities", "/api/entities", params, &resp); err != nil {
		return nil, err
	}
	return resp.Entities, nil
}

// QueryRelations fetches relations matching the query
func (c *Client) QueryRelations(ctx context.Context, q RelationQuery) ([]model.Relation, error) {
	params := url.Values{}
	if q.Team != "" {
		params.Set("team", q.Team)
	}
	if q.EntityID != "" {
		params.Set("entityId", q.EntityID)
	}

	var resp relationsResponse
	if err := c.get(ctx, "relations", "/api/relations", params, &resp); err != nil {
		return nil, err
	}
	return resp.Relations, nil
}

// Health fetches the query service health report
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var resp HealthStatus
	if err := c.get(ctx, "health", "/api/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateEntity creates an entity on the query service (undo path)
func (c *Client) CreateEntity(ctx context.Context, e *model.Entity) error {
	return c.post(ctx, "create_entity", "/api/entities", e)
}

// DeleteEntity removes an entity from the query service
func (c *Client) DeleteEntity(ctx context.Context, name, team string) error {
	params := url.Values{}
	if team != "" {
		params.Set("team", team)
	}
	path := "/api/entities/" + url.PathEscape(name)
	return c.do(ctx, "delete_entity", http.MethodDelete, path, params, nil, nil)
}

// CreateRelation creates a relation on the query service (undo path)
func (c *Client) CreateRelation(ctx context.Context, r model.Relation) error {
	return c.post(ctx, "create_relation", "/api/relations", r)
}

func (c *Client) get(ctx context.Context, op, path string, params url.Values, out any) error {
	return c.do(ctx, op, http.MethodGet, path, params, nil, out)
}

func (c *Client) post(ctx context.Context, op, path string, body any) error {
	return c.do(ctx, op, http.MethodPost, path, nil, body, nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, params url.Values, body, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("building %s request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.record(op, "unreachable", start)
		c.logger.Warn("query service unreachable",
			logging.Operation(op),
			logging.Error(err),
		)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.record(op, strconv.Itoa(resp.StatusCode), start)
		return c.serviceError(resp)
	}
	c.record(op, "ok", start)

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", op, err)
	}
	return nil
}

func (c *Client) serviceError(resp *http.Response) error {
	var er errorResponse
	msg := resp.Status
	if err := json.NewDecoder(resp.Body).Decode(&er); err == nil {
		if er.Message != "" {
			msg = er.Message
		} else if er.Error != "" {
			msg = er.Error
		}
	}
	return &ServiceError{StatusCode: resp.StatusCode, Message: msg}
}

func (c *Client) record(op, status string, start time.Time) {
	if c.metrics != nil {
		c.metrics.RecordGatewayRequest(op, status, time.Since(start))
	}
}
