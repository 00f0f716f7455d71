// Package history holds the view-model behind the processed-resume history:
// listing, pagination, viewing and deleting entries.
package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/resume-formatter/internal/types"
	"go.uber.org/zap"
)

// DefaultLimit is the number of entries requested from the backend.
const DefaultLimit = 100

// RowsPerPageOptions are the allowed page sizes. The first is the default.
var RowsPerPageOptions = []int{5, 10, 25}

var (
	// ErrNotViewable is returned when viewing an entry that did not complete.
	ErrNotViewable = errors.New("resume has not finished processing")
	// ErrNotFound is returned for an id missing from the loaded list.
	ErrNotFound = errors.New("history entry not found")
	// ErrInvalidRows is returned for a page size outside RowsPerPageOptions.
	ErrInvalidRows = errors.New("unsupported rows per page")
)

// Backend is the subset of the REST client the view needs.
type Backend interface {
	History(ctx context.Context, limit int) ([]types.HistoryEntry, error)
	HistoryEntry(ctx context.Context, id string) (*types.HistoryEntry, error)
	DeleteHistory(ctx context.Context, id string) error
}

// View is the loaded history list plus its pagination state. It is not safe
// for concurrent use.
type View struct {
	backend Backend
	logger  *zap.Logger
	limit   int

	entries []types.HistoryEntry
	page    int
	rows    int
}

// NewView creates an empty view. A non-positive limit uses DefaultLimit.
func NewView(backend Backend, limit int, logger *zap.Logger) *View {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &View{backend: backend, logger: logger, limit: limit, rows: RowsPerPageOptions[0]}
}

// Load replaces the list with the backend's most recent entries.
func (v *View) Load(ctx context.Context) error {
	entries, err := v.backend.History(ctx, v.limit)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	v.entries = entries
	v.page = 0
	v.logger.Debug("history loaded", zap.Int("entries", len(entries)))
	return nil
}

// Entries returns all loaded entries.
func (v *View) Entries() []types.HistoryEntry {
	return append([]types.HistoryEntry(nil), v.entries...)
}

// Len is the number of loaded entries.
func (v *View) Len() int { return len(v.entries) }

// Page returns the zero-based current page.
func (v *View) Page() int { return v.page }

// RowsPerPage returns the current page size.
func (v *View) RowsPerPage() int { return v.rows }

// PageCount is the number of pages for the loaded list, at least 1.
func (v *View) PageCount() int {
	if len(v.entries) == 0 {
		return 1
	}
	return (len(v.entries) + v.rows - 1) / v.rows
}

// SetPage moves to page, clamped to the valid range.
func (v *View) SetPage(page int) {
	v.page = max(0, min(page, v.PageCount()-1))
}

// SetRowsPerPage changes the page size and returns to the first page.
func (v *View) SetRowsPerPage(rows int) error {
	for _, opt := range RowsPerPageOptions {
		if opt == rows {
			v.rows = rows
			v.page = 0
			return nil
		}
	}
	return fmt.Errorf("%w: %d (choose from %v)", ErrInvalidRows, rows, RowsPerPageOptions)
}

// Visible returns the entries on the current page.
func (v *View) Visible() []types.HistoryEntry {
	start := v.page * v.rows
	if start >= len(v.entries) {
		return nil
	}
	end := min(start+v.rows, len(v.entries))
	return append([]types.HistoryEntry(nil), v.entries[start:end]...)
}

// View fetches the full entry, including its record. Entries known locally
// to be unfinished are refused without a backend call.
func (v *View) View(ctx context.Context, id string) (*types.HistoryEntry, error) {
	if e, ok := v.find(id); ok && !e.Viewable() {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotViewable, e.Filename, e.Status)
	}

	entry, err := v.backend.HistoryEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if !entry.Viewable() {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotViewable, entry.Filename, entry.Status)
	}
	return entry, nil
}

// Delete removes one entry on the backend, then from the list. On failure the
// list is left unchanged.
func (v *View) Delete(ctx context.Context, id string) error {
	if err := v.backend.DeleteHistory(ctx, id); err != nil {
		v.logger.Warn("history delete failed", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete resume: %w", err)
	}

	kept := v.entries[:0:0]
	for _, e := range v.entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	v.entries = kept
	v.SetPage(v.page)
	v.logger.Info("history entry deleted", zap.String("id", id))
	return nil
}

func (v *View) find(id string) (types.HistoryEntry, bool) {
	for _, e := range v.entries {
		if e.ID == id {
			return e, true
		}
	}
	return types.HistoryEntry{}, false
}

// Unknown is shown for missing display values.
const Unknown = "Unknown"

// FormatDate renders a processing time in local time.
func FormatDate(ts types.Timestamp) string {
	if ts.IsZero() {
		return Unknown
	}
	return ts.Local().Format("2006-01-02 15:04:05")
}

// FormatSize renders a byte count as kilobytes with one decimal.
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return Unknown
	}
	return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
}

// FormatType upper-cases the original file type.
func FormatType(fileType string) string {
	if strings.TrimSpace(fileType) == "" {
		return Unknown
	}
	return strings.ToUpper(fileType)
}

// FormatStatus upper-cases a status, defaulting to COMPLETED.
func FormatStatus(status types.TaskStatus) string {
	if status == "" {
		return strings.ToUpper(string(types.TaskCompleted))
	}
	return strings.ToUpper(string(status))
}

// Age is a coarse relative time used in compact listings.
func Age(ts types.Timestamp, now time.Time) string {
	if ts.IsZero() {
		return Unknown
	}
	d := now.Sub(ts.Time)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
