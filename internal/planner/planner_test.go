package planner

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func sampleRequest() Request {
	return Request{
		Domain:               "Marketing",
		BriefIdeaDescription: "Social media campaign",
		KeyFocusAreas:        "Cost-efficiency and high engagement",
		TargetAudienceUsers:  "Young adults aged 18-30",
	}
}

func TestPlanReturnsFirstChoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("missing bearer token")
		}
		var body chatRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		if body.Model != "test-model" || len(body.Messages) != 1 || body.Messages[0].Role != "user" {
			t.Errorf("unexpected body %+v", body)
		}
		if !strings.Contains(body.Messages[0].Content, "Domain: Marketing") {
			t.Errorf("prompt missing domain: %q", body.Messages[0].Content)
		}
		io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"1. Launch"}},{"message":{"content":"ignored"}}]}`)
	}))
	defer srv.Close()

	c := New(srv.URL, "test-model", "key", 0)
	text, err := c.Plan(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if text != "1. Launch" {
		t.Fatalf("got %q", text)
	}
}

func TestPlanUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "m", "", 0).Plan(context.Background(), sampleRequest())
	var ue *UpstreamError
	if !errors.As(err, &ue) || ue.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestPlanNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"choices":[]}`)
	}))
	defer srv.Close()

	if _, err := New(srv.URL, "m", "", 0).Plan(context.Background(), sampleRequest()); !errors.Is(err, ErrEmptyAnswer) {
		t.Fatalf("got %v", err)
	}
}

func TestRequestValidate(t *testing.T) {
	req := sampleRequest()
	req.KeyFocusAreas = " "
	if err := req.Validate(); err == nil || !strings.Contains(err.Error(), "KeyFocusAreas") {
		t.Fatalf("got %v", err)
	}
	req = sampleRequest()
	req.Domain = ""
	if err := req.Validate(); err != nil {
		t.Fatalf("blank domain should be accepted: %v", err)
	}
	if !strings.Contains(req.Prompt(), "Domain: , ") {
		t.Fatalf("unexpected prompt %q", req.Prompt())
	}
}
