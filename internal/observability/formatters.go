// Package observability provides formatted terminal output for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonathan/resume-formatter/internal/history"
	"github.com/jonathan/resume-formatter/internal/types"
	"github.com/jonathan/resume-formatter/internal/upload"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// barWidth is the number of cells in a progress bar
	barWidth = 30
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
	now func() time.Time
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out, now: time.Now}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad truncates or right-pads s to exactly width runes.
func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n > width {
		runes := []rune(s)
		return string(runes[:width-3]) + "..."
	}
	return s + strings.Repeat(" ", width-n)
}

// PrintRecord outputs a human-readable summary of a parsed resume.
func (p *Printer) PrintRecord(filename string, record *types.ResumeRecord) {
	if record == nil {
		return
	}

	var sb strings.Builder
	name := types.NotAvailable
	if record.Name.Available() {
		name = record.Name.String()
	}
	sb.WriteString(fmt.Sprintf("Name:     %s\n", name))
	if record.Email.Available() {
		sb.WriteString(fmt.Sprintf("Email:    %s\n", record.Email))
	}
	if record.Mobile.Available() {
		sb.WriteString(fmt.Sprintf("Mobile:   %s\n", record.Mobile))
	}

	groups := record.Skills.Available()
	if len(groups) > 0 {
		sb.WriteString("\nSkills:\n")
		count := min(len(groups), maxItemsToShow)
		for _, g := range groups[:count] {
			if g.Category != "" {
				sb.WriteString(fmt.Sprintf("  • %s: %s\n", g.Category, strings.Join(g.Skills, ", ")))
			} else {
				sb.WriteString(fmt.Sprintf("  • %s\n", strings.Join(g.Skills, ", ")))
			}
		}
		if len(groups) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(groups)-maxItemsToShow))
		}
	}

	experience := record.ExperienceData
	if len(experience) > 0 {
		sb.WriteString("\nExperience:\n")
		count := min(len(experience), maxItemsToShow)
		for _, e := range experience[:count] {
			line := e.Company.String()
			if e.Role.Available() {
				line += " · " + e.Role.String()
			}
			sb.WriteString(fmt.Sprintf("  • %s\n", line))
		}
		if len(experience) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(experience)-maxItemsToShow))
		}
	}

	sb.WriteString(fmt.Sprintf("\nSections: %d experience, %d projects, %d education\n",
		len(record.ProfessionalExperience.Available()),
		len(record.Projects.Available()),
		len(record.Education.Available())))

	p.printBox("PARSED RESUME: "+filename, sb.String())
}

// ProgressLine renders one snapshot as a single status line.
func ProgressLine(s upload.Snapshot) string {
	filled := s.Progress * barWidth / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	status := string(s.State)
	if s.Stage != "" && !s.State.Terminal() {
		status += " · " + s.Stage
	}
	line := fmt.Sprintf("[%s] %3d%% %s", bar, s.Progress, status)
	if s.Mode == upload.ModeBatch && s.TotalFiles > 0 {
		line += fmt.Sprintf(" (%d/%d done, %d failed)", s.CompletedFiles, s.TotalFiles, s.FailedFiles)
	}
	return line
}

// PrintProgress rewrites the current terminal line with the snapshot.
//
//nolint:errcheck
func (p *Printer) PrintProgress(s upload.Snapshot) {
	fmt.Fprintf(p.out, "\r%s", ProgressLine(s))
	if s.State.Terminal() {
		fmt.Fprintln(p.out)
	}
}

// PrintOutcome summarises a finished run.
//
//nolint:errcheck
func (p *Printer) PrintOutcome(s upload.Snapshot) {
	switch {
	case s.State == upload.StateFailed:
		fmt.Fprintf(p.out, "✗ Processing failed: %s\n", s.Error)
	case s.Mode == upload.ModeBatch:
		fmt.Fprintf(p.out, "✓ Batch complete: %d succeeded, %d failed of %d\n",
			s.CompletedFiles, s.FailedFiles, s.TotalFiles)
		for _, f := range s.Files {
			if f.Status == types.TaskFailed {
				msg := f.Error
				if msg == "" {
					msg = "failed"
				}
				fmt.Fprintf(p.out, "  ✗ %s: %s\n", f.Filename, msg)
			}
		}
	default:
		fmt.Fprintln(p.out, "✓ Processing complete")
	}
}

// PrintHistory outputs the visible page of a history view as a table.
//
//nolint:errcheck
func (p *Printer) PrintHistory(v *history.View) {
	entries := v.Visible()
	if len(entries) == 0 {
		fmt.Fprintln(p.out, "No processed resumes yet.")
		return
	}

	fmt.Fprintf(p.out, "%-36s  %-28s  %-19s  %-5s  %-10s  %s\n", "ID", "FILE", "PROCESSED", "TYPE", "SIZE", "STATUS")
	for _, e := range entries {
		fmt.Fprintf(p.out, "%-36s  %-28s  %-19s  %-5s  %-10s  %s\n",
			e.ID,
			pad(e.Filename, 28),
			history.FormatDate(e.ProcessedAt),
			history.FormatType(e.OriginalFileType),
			history.FormatSize(e.FileSize),
			history.FormatStatus(e.Status))
	}
	fmt.Fprintf(p.out, "Page %d of %d · %d per page · %d total\n",
		v.Page()+1, v.PageCount(), v.RowsPerPage(), v.Len())
}

// PrintHistoryEntry outputs the metadata of one entry.
func (p *Printer) PrintHistoryEntry(e *types.HistoryEntry) {
	if e == nil {
		return
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("ID:        %s\n", e.ID))
	sb.WriteString(fmt.Sprintf("Processed: %s (%s)\n", history.FormatDate(e.ProcessedAt), history.Age(e.ProcessedAt, p.now())))
	sb.WriteString(fmt.Sprintf("Type:      %s\n", history.FormatType(e.OriginalFileType)))
	sb.WriteString(fmt.Sprintf("Size:      %s\n", history.FormatSize(e.FileSize)))
	sb.WriteString(fmt.Sprintf("Status:    %s\n", history.FormatStatus(e.Status)))
	p.printBox(e.Filename, sb.String())
}
