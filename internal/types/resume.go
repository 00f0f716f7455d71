// Package types provides type definitions for structured data exchanged with the resume backend.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// NotAvailable is the sentinel the backend emits in place of data it could not extract.
const NotAvailable = "Not available"

// IsAvailable reports whether s carries real data (not blank and not the sentinel).
func IsAvailable(s string) bool {
	trimmed := strings.TrimSpace(s)
	return trimmed != "" && !strings.EqualFold(trimmed, NotAvailable)
}

// ResumeRecord is the parsed resume produced by the backend and consumed by the renderers.
type ResumeRecord struct {
	Name                   Text           `json:"name"`
	Email                  Text           `json:"email,omitempty"`
	Mobile                 Text           `json:"mobile,omitempty"`
	Summary                Text           `json:"summary,omitempty"`
	Education              TextList       `json:"education,omitempty"`
	Skills                 SkillGroups    `json:"skills,omitempty"`
	Certifications         TextList       `json:"certifications,omitempty"`
	ProfessionalExperience TextList       `json:"professional_experience,omitempty"`
	Projects               TextList       `json:"projects,omitempty"`
	ExperienceData         ExperienceList `json:"experience_data,omitempty"`
}

// ExperienceEntry is one structured employment entry.
type ExperienceEntry struct {
	Company          Text     `json:"company"`
	Role             Text     `json:"role,omitempty"`
	StartDate        Text     `json:"startDate,omitempty"`
	EndDate          Text     `json:"endDate,omitempty"`
	ClientEngagement Text     `json:"clientEngagement,omitempty"`
	Program          Text     `json:"program,omitempty"`
	Responsibilities TextList `json:"responsibilities,omitempty"`
}

// HasResponsibilities reports whether the entry carries at least one available responsibility.
func (e ExperienceEntry) HasResponsibilities() bool {
	return len(e.Responsibilities.Available()) > 0
}

// ExperienceList is the ordered experience_data section. A bare string (the
// sentinel) or null decodes to an empty list.
type ExperienceList []ExperienceEntry

// UnmarshalJSON accepts a list of entries, a bare string or null.
func (l *ExperienceList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) || data[0] == '"' {
		*l = nil
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(ExperienceList, 0, len(raw))
	for _, item := range raw {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			continue
		}
		var entry ExperienceEntry
		if err := json.Unmarshal(item, &entry); err != nil {
			return err
		}
		out = append(out, entry)
	}
	*l = out
	return nil
}

// Text is a scalar string field. The backend sometimes returns lists or numbers
// where a string is expected, so decoding is lenient.
type Text string

// String returns the raw value.
func (t Text) String() string {
	return string(t)
}

// Available reports whether the value carries real data.
func (t Text) Available() bool {
	return IsAvailable(string(t))
}

// UnmarshalJSON accepts a string, null, a number or a list of strings. Objects
// and booleans carry no displayable text and decode as absent.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	case '[':
		var list TextList
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*t = Text(strings.Join(list.Available(), ", "))
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*t = Text(n.String())
	default:
		*t = ""
	}
	return nil
}

// TextList is an ordered list of strings. The backend may send the sentinel as a
// bare string, as the only element, or send null.
type TextList []string

// UnmarshalJSON accepts a list, a single string or null.
func (l *TextList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = TextList{s}
		return nil
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		out := make(TextList, 0, len(raw))
		for _, item := range raw {
			var text Text
			if err := json.Unmarshal(item, &text); err != nil {
				return err
			}
			out = append(out, string(text))
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("cannot decode %s into a text list", truncate(data))
	}
}

// Available returns the items that carry real data, in order.
// A list containing the sentinel anywhere is treated as entirely unavailable,
// matching how the backend marks sections it could not extract.
func (l TextList) Available() []string {
	out := make([]string, 0, len(l))
	for _, item := range l {
		trimmed := strings.TrimSpace(item)
		if strings.EqualFold(trimmed, NotAvailable) {
			return nil
		}
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SkillGroup is one category of skills, e.g. "Cloud": ["AWS", "Docker"].
type SkillGroup struct {
	Category string
	Skills   []string
}

// SkillGroups is the ordered skills section. On the wire each element is a
// single-key object mapping a category to its skills.
type SkillGroups []SkillGroup

// UnmarshalJSON accepts a list of category objects, a bare sentinel string or null.
// Objects with several keys expand into one group per key, ordered by key.
func (g *SkillGroups) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*g = nil
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*g = SkillGroups{{Skills: []string{s}}}
		return nil
	case '{':
		data = append(append([]byte{'['}, data...), ']')
	case '[':
	default:
		return fmt.Errorf("cannot decode %s into skills", truncate(data))
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(SkillGroups, 0, len(raw))
	for _, item := range raw {
		item = bytes.TrimSpace(item)
		if len(item) == 0 {
			continue
		}
		if item[0] != '{' {
			var text Text
			if err := json.Unmarshal(item, &text); err != nil {
				return err
			}
			out = append(out, SkillGroup{Skills: []string{string(text)}})
			continue
		}

		var categories map[string]TextList
		if err := json.Unmarshal(item, &categories); err != nil {
			return err
		}
		keys := make([]string, 0, len(categories))
		for k := range categories {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = append(out, SkillGroup{Category: k, Skills: []string(categories[k])})
		}
	}
	*g = out
	return nil
}

// MarshalJSON writes the wire shape: a list of single-key objects.
func (g SkillGroups) MarshalJSON() ([]byte, error) {
	if g == nil {
		return []byte("null"), nil
	}
	out := make([]any, 0, len(g))
	for _, group := range g {
		if group.Category == "" {
			out = append(out, strings.Join(group.Skills, ", "))
			continue
		}
		out = append(out, map[string][]string{group.Category: group.Skills})
	}
	return json.Marshal(out)
}

// Available returns the groups that carry real data, with unavailable skills dropped.
// A bare sentinel anywhere in the section marks the whole section unavailable.
func (g SkillGroups) Available() []SkillGroup {
	out := make([]SkillGroup, 0, len(g))
	for _, group := range g {
		if group.Category == "" && len(group.Skills) == 1 && !IsAvailable(group.Skills[0]) {
			return nil
		}
		skills := TextList(group.Skills).Available()
		if len(skills) == 0 {
			continue
		}
		out = append(out, SkillGroup{Category: strings.TrimSpace(group.Category), Skills: skills})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func truncate(data []byte) string {
	const limit = 40
	if len(data) > limit {
		return string(data[:limit]) + "..."
	}
	return string(data)
}
