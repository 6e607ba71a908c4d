package server

import (
	"encoding/json"
	"fmt"

	"ideavault/internal/domain"
)

// IdeaRequest is the body accepted by create and update. Every field is
// optional at the schema level; the engine enforces title and description.
type IdeaRequest struct {
	_           struct{} `json:"-" additionalProperties:"true"`
	ID          string   `json:"id,omitempty"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        any      `json:"tags,omitempty" doc:"Array of strings or a comma-delimited string"`
	Priority    string   `json:"priority,omitempty"`
	Status      string   `json:"status,omitempty"`
	Category    string   `json:"category,omitempty"`
	CreatedAt   string   `json:"createdAt,omitempty"`
	UpdatedAt   string   `json:"updatedAt,omitempty"`
	CreatedBy   string   `json:"createdBy,omitempty"`
}

func (r IdeaRequest) toDomain() (domain.Idea, error) {
	tags, err := decodeTags(r.Tags)
	if err != nil {
		return domain.Idea{}, err
	}
	return domain.Idea{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Tags:        tags,
		Priority:    r.Priority,
		Status:      domain.Status(r.Status),
		Category:    r.Category,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		CreatedBy:   r.CreatedBy,
	}, nil
}

// decodeTags funnels whatever shape the client sent through domain.Tags so
// the string and array forms normalize identically.
func decodeTags(raw any) (domain.Tags, error) {
	if raw == nil {
		return domain.Tags{}, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var tags domain.Tags
	if err := json.Unmarshal(data, &tags); err != nil {
		return nil, fmt.Errorf("tags: %w", err)
	}
	return tags, nil
}

// ActivityResponse wraps an idea's event log.
type ActivityResponse struct {
	Items []domain.Event `json:"items"`
}
