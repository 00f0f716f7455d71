package rendering

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/resume-formatter/internal/types"
)

// ChunkSize is the number of experience or project items per page.
const ChunkSize = 10

// Section headings shared by every output format.
const (
	HeadingSkills            = "Technical Expertise"
	HeadingCertifications    = "Certifications"
	HeadingSummary           = "Summary"
	HeadingExperience        = "Professional Experience"
	HeadingProjects          = "Projects"
	HeadingExperienceDetails = "Experience Details"
	HeadingEducation         = "Education"
	HeadingContinued         = "Continued"
	HeadingResponsibilities  = "Responsibilities"
)

// Labels for experience detail fields, in display order.
const (
	LabelCompany          = "Company"
	LabelRole             = "Role"
	LabelDuration         = "Duration"
	LabelClientEngagement = "Client Engagement"
	LabelProgram          = "Program"
)

// Layout is the format-independent arrangement of a resume. Every renderer
// walks the same Layout, so omission, chunking and ordering rules live here
// and nowhere else.
type Layout struct {
	Name           string
	Contact        []string
	Skills         []SkillLine
	Certifications []string
	Summary        string
	Pages          []Page
	Experience     []ExperienceDetail
	Education      []string
}

// SkillLine is one "Category: a, b, c" row.
type SkillLine struct {
	Category string
	Skills   string
}

// Page holds the experience and project items printed on one page. The first
// page also carries the sidebar; later pages are continuations.
type Page struct {
	Number     int
	Experience []string
	Projects   []string
}

// Continued reports whether the page continues lists from the first page.
func (p Page) Continued() bool {
	return p.Number > 1
}

// Label is the continuation marker, e.g. "Page 2".
func (p Page) Label() string {
	return fmt.Sprintf("Page %d", p.Number)
}

// Sheet is one printed page in document order: either a Page or the
// experience details page.
type Sheet struct {
	Page    Page
	Details bool
}

// HasDetails reports whether the experience details page is printed.
func (l *Layout) HasDetails() bool {
	return len(l.Experience) > 0 || len(l.Education) > 0
}

// Sheets returns every printed page in order: the first page, then the
// experience details page, then the continuation pages.
func (l *Layout) Sheets() []Sheet {
	sheets := make([]Sheet, 0, len(l.Pages)+1)
	for i, p := range l.Pages {
		sheets = append(sheets, Sheet{Page: p})
		if i == 0 && l.HasDetails() {
			sheets = append(sheets, Sheet{Details: true})
		}
	}
	return sheets
}

// ExperienceDetail is one structured employment entry with unavailable
// fields already dropped.
type ExperienceDetail struct {
	Fields           []Field
	Responsibilities []string
}

// Field is a labelled value.
type Field struct {
	Label string
	Value string
}

// Build arranges record into a Layout. The record is not modified.
func Build(record *types.ResumeRecord) *Layout {
	if record == nil {
		record = &types.ResumeRecord{}
	}

	l := &Layout{
		Certifications: record.Certifications.Available(),
		Experience:     experienceDetails(record.ExperienceData),
		Education:      record.Education.Available(),
	}

	if record.Name.Available() {
		l.Name = strings.TrimSpace(record.Name.String())
	}
	for _, t := range []types.Text{record.Email, record.Mobile} {
		if t.Available() {
			l.Contact = append(l.Contact, strings.TrimSpace(t.String()))
		}
	}
	if record.Summary.Available() {
		l.Summary = strings.TrimSpace(record.Summary.String())
	}
	for _, g := range record.Skills.Available() {
		l.Skills = append(l.Skills, SkillLine{Category: g.Category, Skills: strings.Join(g.Skills, ", ")})
	}

	expChunks := Chunk(record.ProfessionalExperience.Available(), ChunkSize)
	projChunks := Chunk(record.Projects.Available(), ChunkSize)
	pages := max(len(expChunks), len(projChunks), 1)
	l.Pages = make([]Page, pages)
	for i := range l.Pages {
		l.Pages[i].Number = i + 1
		if i < len(expChunks) {
			l.Pages[i].Experience = expChunks[i]
		}
		if i < len(projChunks) {
			l.Pages[i].Projects = projChunks[i]
		}
	}

	return l
}

// DisplayName is the name shown in the document header.
func (l *Layout) DisplayName() string {
	if l.Name == "" {
		return "Resume"
	}
	return l.Name
}

// Chunk splits items into consecutive groups of at most size.
// An empty input yields no chunks.
func Chunk(items []string, size int) [][]string {
	if len(items) == 0 || size <= 0 {
		return nil
	}
	chunks := make([][]string, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end:end])
	}
	return chunks
}

// SortExperience returns a copy of entries with those carrying
// responsibilities first. Relative order is otherwise preserved.
func SortExperience(entries []types.ExperienceEntry) []types.ExperienceEntry {
	sorted := make([]types.ExperienceEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].HasResponsibilities() && !sorted[j].HasResponsibilities()
	})
	return sorted
}

func experienceDetails(entries []types.ExperienceEntry) []ExperienceDetail {
	sorted := SortExperience(entries)
	out := make([]ExperienceDetail, 0, len(sorted))
	for _, e := range sorted {
		detail := ExperienceDetail{Responsibilities: e.Responsibilities.Available()}
		add := func(label string, t types.Text) {
			if t.Available() {
				detail.Fields = append(detail.Fields, Field{Label: label, Value: strings.TrimSpace(t.String())})
			}
		}
		add(LabelCompany, e.Company)
		add(LabelRole, e.Role)
		if d := duration(e.StartDate, e.EndDate); d != "" {
			detail.Fields = append(detail.Fields, Field{Label: LabelDuration, Value: d})
		}
		add(LabelClientEngagement, e.ClientEngagement)
		add(LabelProgram, e.Program)

		if len(detail.Fields) == 0 && len(detail.Responsibilities) == 0 {
			continue
		}
		out = append(out, detail)
	}
	return out
}

func duration(start, end types.Text) string {
	parts := make([]string, 0, 2)
	for _, t := range []types.Text{start, end} {
		if t.Available() {
			parts = append(parts, strings.TrimSpace(t.String()))
		}
	}
	return strings.Join(parts, " - ")
}
