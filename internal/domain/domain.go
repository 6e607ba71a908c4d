package domain

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of an idea.
type Status string

const (
	StatusDraft      Status = "Draft"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
	StatusArchived   Status = "Archived"
)

// Statuses returns every known status in display order.
func Statuses() []Status {
	return []Status{StatusDraft, StatusInProgress, StatusCompleted, StatusArchived}
}

// IsValid reports whether s is one of Statuses.
func (s Status) IsValid() bool {
	for _, known := range Statuses() {
		if s == known {
			return true
		}
	}
	return false
}

// ParseStatus matches raw against the known statuses, ignoring case and
// surrounding whitespace. An empty input yields StatusDraft.
func ParseStatus(raw string) (Status, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return StatusDraft, nil
	}
	for _, s := range Statuses() {
		if strings.EqualFold(raw, string(s)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("invalid status %q", raw)
}

var (
	// SuggestedCategories are offered by the idea form; any label is accepted.
	SuggestedCategories = []string{"Mobile", "Web", "AI/ML", "IoT", "Blockchain", "Other"}
	// Priorities are the conventional priority labels.
	Priorities = []string{"Low", "Medium", "High"}
)

const (
	DefaultPriority = "Medium"
	// AnonymousUser stands in for CreatedBy when nobody is signed in.
	AnonymousUser = "current-user"
)

// Idea is the single record managed by IdeaVault.
type Idea struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Tags        Tags   `json:"tags"`
	Priority    string `json:"priority"`
	Status      Status `json:"status" enum:"Draft,In Progress,Completed,Archived"`
	Category    string `json:"category"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
	CreatedBy   string `json:"createdBy"`
}

// MissingFields lists the required fields that are blank after trimming.
func (i Idea) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(i.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(i.Description) == "" {
		missing = append(missing, "description")
	}
	return missing
}

// Event is an entry of the server-side activity log.
type Event struct {
	ID      int64  `json:"id"`
	TS      string `json:"ts" format:"date-time"`
	Type    string `json:"type"`
	IdeaID  string `json:"ideaId"`
	ActorID string `json:"actorId"`
	Payload string `json:"payload"`
}
