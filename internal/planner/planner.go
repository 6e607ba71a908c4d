// Package planner asks an OpenAI-compatible chat completion endpoint for an
// implementation plan of an idea.
package planner

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
)

var ErrEmptyAnswer = errors.New("planner returned no choices")

// Request holds the four plan query parameters.
type Request struct {
	Domain               string
	BriefIdeaDescription string
	KeyFocusAreas        string
	TargetAudienceUsers  string
}

// Validate reports the first missing parameter. Domain is optional since
// ideas may have no category.
func (r Request) Validate() error {
	switch {
	case strings.TrimSpace(r.BriefIdeaDescription) == "":
		return errors.New("BriefIdeaDescription is required")
	case strings.TrimSpace(r.KeyFocusAreas) == "":
		return errors.New("KeyFocusAreas is required")
	case strings.TrimSpace(r.TargetAudienceUsers) == "":
		return errors.New("TargetAudienceUsers is required")
	}
	return nil
}

// Prompt renders the user message sent to the model.
func (r Request) Prompt() string {
	return "I want to generate a comprehensive and feasible implementation plan for an idea. Here's what I need: " +
		"Domain: " + r.Domain + ", " +
		"Brief Idea Description: " + r.BriefIdeaDescription + ", " +
		"Key Focus Areas: " + r.KeyFocusAreas + ", " +
		"Target Audience/Users: " + r.TargetAudienceUsers
}

// Client calls the completion endpoint.
type Client struct {
	URL        string
	Model      string
	Token      string
	HTTPClient *http.Client
}

func New(url, model, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		URL:        url,
		Model:      model,
		Token:      token,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// UpstreamError wraps non-2xx completion responses.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("planner upstream: status=%d body=%s", e.StatusCode, e.Body)
}

// Plan returns the content of the first completion choice.
func (c *Client) Plan(ctx context.Context, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	if c.URL == "" {
		return "", errors.New("planner url not configured")
	}
	payload, err := json.Marshal(chatRequest{
		Model:    c.Model,
		Messages: []chatMessage{{Role: "user", Content: req.Prompt()}},
	})
	if err != nil {
		return "", err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.Token)
	}
	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("planner request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &UpstreamError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode planner response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", ErrEmptyAnswer
	}
	return out.Choices[0].Message.Content, nil
}
