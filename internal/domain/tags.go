package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Tags is the canonical ordered tag list of an idea. It decodes from either a
// JSON array of strings or a single comma-delimited string and always holds
// trimmed, non-empty labels.
type Tags []string

// ParseTags splits a comma-delimited tag string.
func ParseTags(raw string) Tags {
	return NormalizeTags(strings.Split(raw, ","))
}

// NormalizeTags trims every entry and drops the blank ones. Entries that
// still contain commas are split further.
func NormalizeTags(in []string) Tags {
	out := Tags{}
	for _, entry := range in {
		for _, part := range strings.Split(entry, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			out = append(out, part)
		}
	}
	return out
}

// String joins the tags the way the idea form expects them.
func (t Tags) String() string {
	return strings.Join(t, ", ")
}

func (t Tags) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(t))
}

func (t *Tags) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = Tags{}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = ParseTags(s)
		return nil
	case '[':
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("tags: %w", err)
		}
		*t = NormalizeTags(items)
		return nil
	default:
		return fmt.Errorf("tags: expected string or array, got %s", string(data))
	}
}
