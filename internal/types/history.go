package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// HistoryEntry is a backend-persisted summary of a processed resume.
// ResumeData is only populated when a single entry is fetched by id.
type HistoryEntry struct {
	ID               string        `json:"id"`
	Filename         string        `json:"filename"`
	ProcessedAt      Timestamp     `json:"processed_at"`
	OriginalFileType string        `json:"original_file_type"`
	FileSize         int64         `json:"file_size"`
	Status           TaskStatus    `json:"status"`
	ResumeData       *ResumeRecord `json:"resume_data,omitempty"`
}

// Viewable reports whether the entry finished processing and can be previewed.
func (e HistoryEntry) Viewable() bool {
	return e.Status == TaskCompleted
}

// UnmarshalJSON decodes the entry, accepting the opaque id as either a JSON
// string or a number.
func (e *HistoryEntry) UnmarshalJSON(data []byte) error {
	type plain HistoryEntry
	aux := struct {
		*plain
		ID json.RawMessage `json:"id"`
	}{plain: (*plain)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	id, err := decodeID(aux.ID)
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("history entry id must be a string or number, got %s", raw)
	}
	return n.String(), nil
}

// timestampLayouts are tried in order; the backend serializes naive datetimes
// without a zone, which time.Time's default decoder rejects.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Timestamp is a time decoded leniently from the backend's datetime strings.
type Timestamp struct {
	time.Time
}

// MarshalJSON implements json.Marshaler
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	str := string(data)
	if str == "null" || str == `""` {
		t.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}
