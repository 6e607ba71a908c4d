package ideavaultsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ideavault/internal/domain"
)

const defaultTimeout = 10 * time.Second

// Idea and Event are the wire records exchanged with the API.
type (
	Idea  = domain.Idea
	Event = domain.Event
)

// Config is injected at startup; there is no package-level base address.
type Config struct {
	BaseURL     string
	BearerToken string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// Client is a minimal IdeaVault HTTP API client.
type Client struct {
	BaseURL     string
	BearerToken string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// New creates a client from cfg with sane defaults.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		BaseURL:     cfg.BaseURL,
		BearerToken: cfg.BearerToken,
		HTTPClient:  cfg.HTTPClient,
		Timeout:     timeout,
	}
}

// PlanRequest carries the query parameters of the plan endpoint.
type PlanRequest struct {
	Domain               string
	BriefIdeaDescription string
	KeyFocusAreas        string
	TargetAudienceUsers  string
}

// ValidationError reports required fields missing before a request is sent.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s required", strings.Join(e.Fields, " and "))
}

// NetworkError wraps failures to send a request or read its response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError wraps non-2xx responses.
type ServerError struct {
	StatusCode int
	Body       string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: status=%d body=%s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var se *ServerError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// List returns every idea in server order.
func (c *Client) List(ctx context.Context) ([]Idea, error) {
	var resp []Idea
	if err := c.do(ctx, http.MethodGet, "ideas", nil, &resp); err != nil {
		return nil, err
	}
	if resp == nil {
		resp = []Idea{}
	}
	return resp, nil
}

// Get fetches a single idea.
func (c *Client) Get(ctx context.Context, id string) (Idea, error) {
	var resp Idea
	err := c.do(ctx, http.MethodGet, "ideas/"+url.PathEscape(id), nil, &resp)
	return resp, err
}

// Create submits a fully populated idea. Required fields are checked locally
// and no request is made when they are blank.
func (c *Client) Create(ctx context.Context, idea Idea) (Idea, error) {
	if missing := idea.MissingFields(); len(missing) > 0 {
		return Idea{}, &ValidationError{Fields: missing}
	}
	var resp Idea
	if err := c.do(ctx, http.MethodPost, "ideas", idea, &resp); err != nil {
		return Idea{}, err
	}
	if resp.ID == "" {
		return idea, nil
	}
	return resp, nil
}

// Update replaces the editable fields of an idea.
func (c *Client) Update(ctx context.Context, id string, idea Idea) (Idea, error) {
	if missing := idea.MissingFields(); len(missing) > 0 {
		return Idea{}, &ValidationError{Fields: missing}
	}
	var resp Idea
	err := c.do(ctx, http.MethodPut, "ideas/"+url.PathEscape(id), idea, &resp)
	return resp, err
}

// Delete removes an idea by id.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "ideas/"+url.PathEscape(id), nil, nil)
}

// Activity returns the server-side event log of an idea, oldest first.
func (c *Client) Activity(ctx context.Context, id string) ([]Event, error) {
	var resp struct {
		Items []Event `json:"items"`
	}
	err := c.do(ctx, http.MethodGet, "ideas/"+url.PathEscape(id)+"/activity", nil, &resp)
	return resp.Items, err
}

// Plan asks the assistance endpoint for an implementation plan and returns
// the plain-text answer.
func (c *Client) Plan(ctx context.Context, req PlanRequest) (string, error) {
	q := url.Values{}
	q.Set("Domain", req.Domain)
	q.Set("BriefIdeaDescription", req.BriefIdeaDescription)
	q.Set("KeyFocusAreas", req.KeyFocusAreas)
	q.Set("TargetAudienceUsers", req.TargetAudienceUsers)
	var text string
	err := c.do(ctx, http.MethodGet, "plan?"+q.Encode(), nil, &text)
	return text, err
}

// do issues a single request; out may be nil, a *string for raw bodies, or a
// JSON target.
func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	target := c.base() + "/api/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, target, &buf)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return &NetworkError{Op: method + " " + endpoint, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &ServerError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	switch dst := out.(type) {
	case nil:
		return nil
	case *string:
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return &NetworkError{Op: "read " + endpoint, Err: err}
		}
		*dst = string(b)
		return nil
	default:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return &NetworkError{Op: "read " + endpoint, Err: err}
		}
		if len(bytes.TrimSpace(data)) == 0 {
			return nil
		}
		return json.Unmarshal(data, out)
	}
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
