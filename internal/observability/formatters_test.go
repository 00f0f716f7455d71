package observability

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jonathan/resume-formatter/internal/history"
	"github.com/jonathan/resume-formatter/internal/types"
	"github.com/jonathan/resume-formatter/internal/upload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintRecord(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	record := &types.ResumeRecord{
		Name:   "Jane Doe",
		Email:  "Not available",
		Skills: types.SkillGroups{{Category: "Languages", Skills: []string{"Go", "SQL"}}},
		ExperienceData: types.ExperienceList{
			{Company: "Acme", Role: "Engineer"},
		},
		Projects: types.TextList{"Not available"},
	}

	p.PrintRecord("cv.pdf", record)
	output := buf.String()

	assert.Contains(t, output, "PARSED RESUME: cv.pdf")
	assert.Contains(t, output, "Jane Doe")
	assert.NotContains(t, output, "Email:")
	assert.Contains(t, output, "Languages: Go, SQL")
	assert.Contains(t, output, "Acme · Engineer")
	assert.Contains(t, output, "0 projects")
}

func TestPrintRecord_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintRecord("x", nil)
	assert.Empty(t, buf.String())
}

func TestPrintBox_AlignsUnicode(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).printBox("Título", "José Núñez\n"+strings.Repeat("x", 100))

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.Equal(t, boxWidth, len([]rune(line)), line)
	}
}

func TestProgressLine(t *testing.T) {
	line := ProgressLine(upload.Snapshot{Mode: upload.ModeSingle, State: upload.StateProcessing, Stage: "parsing", Progress: 50})
	assert.Contains(t, line, " 50% processing · parsing")
	assert.Equal(t, 15, strings.Count(line, "█"))

	line = ProgressLine(upload.Snapshot{
		Mode: upload.ModeBatch, State: upload.StateCompleted, Progress: 100,
		TotalFiles: 3, CompletedFiles: 2, FailedFiles: 1,
	})
	assert.Contains(t, line, "100% completed (2/3 done, 1 failed)")
}

func TestPrintOutcome(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintOutcome(upload.Snapshot{
		Mode: upload.ModeBatch, State: upload.StateCompleted,
		TotalFiles: 3, CompletedFiles: 2, FailedFiles: 1,
		Files: []upload.FileStatus{{Filename: "b.pdf", Status: types.TaskFailed, Error: "corrupt"}},
	})
	assert.Contains(t, buf.String(), "2 succeeded, 1 failed of 3")
	assert.Contains(t, buf.String(), "b.pdf: corrupt")

	buf.Reset()
	p.PrintOutcome(upload.Snapshot{State: upload.StateFailed, Error: "password protected"})
	assert.Contains(t, buf.String(), "Processing failed: password protected")
}

type listBackend struct{ entries []types.HistoryEntry }

func (b listBackend) History(context.Context, int) ([]types.HistoryEntry, error) {
	return b.entries, nil
}

func (b listBackend) HistoryEntry(context.Context, string) (*types.HistoryEntry, error) {
	return nil, nil
}

func (b listBackend) DeleteHistory(context.Context, string) error { return nil }

func TestPrintHistory(t *testing.T) {
	entries := []types.HistoryEntry{
		{ID: "a1", Filename: "cv.pdf", OriginalFileType: "pdf", FileSize: 2048, Status: types.TaskCompleted},
		{ID: "b2", Filename: "old.doc", Status: types.TaskFailed},
	}
	v := history.NewView(listBackend{entries: entries}, 0, nil)
	require.NoError(t, v.Load(context.Background()))

	var buf bytes.Buffer
	NewPrinter(&buf).PrintHistory(v)
	output := buf.String()

	assert.Contains(t, output, "2.0 KB")
	assert.Contains(t, output, "PDF")
	assert.Contains(t, output, "FAILED")
	assert.Contains(t, output, "Unknown")
	assert.Contains(t, output, "Page 1 of 1")
}

func TestPrintHistory_Empty(t *testing.T) {
	v := history.NewView(listBackend{}, 0, nil)
	require.NoError(t, v.Load(context.Background()))

	var buf bytes.Buffer
	NewPrinter(&buf).PrintHistory(v)
	assert.Contains(t, buf.String(), "No processed resumes yet.")
}

func TestPrintHistoryEntry(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	p.PrintHistoryEntry(&types.HistoryEntry{
		ID: "a1", Filename: "cv.pdf", Status: types.TaskCompleted,
		ProcessedAt: types.Timestamp{Time: now.Add(-3 * time.Hour)},
	})
	assert.Contains(t, buf.String(), "3h ago")
	assert.Contains(t, buf.String(), "COMPLETED")
}
