package rendering

import (
	"bytes"
	"strings"

	"github.com/fumiama/go-docx"
)

// Run sizes are in half-points.
const (
	docxNameSize    = "44"
	docxHeadingSize = "28"
	docxBodySize    = "21"
	docxSubheadSize = "22"
	docxMutedColor  = "555555"
	docxBullet      = "▪ "
)

// RenderDOCX writes the layout as a Word document. Pages, sections and
// their order match RenderHTML.
func RenderDOCX(layout *Layout) ([]byte, error) {
	w := &docxWriter{doc: docx.New().WithDefaultTheme()}

	for i, sheet := range layout.Sheets() {
		if i > 0 {
			w.pageBreak()
		}
		if sheet.Details {
			w.details(layout)
			continue
		}
		p := sheet.Page
		if !p.Continued() {
			w.header(layout)
			if len(layout.Skills) > 0 {
				w.heading(HeadingSkills)
				for _, s := range layout.Skills {
					w.labelled(s.Category, s.Skills)
				}
			}
			w.list(HeadingCertifications, layout.Certifications)
			if layout.Summary != "" {
				w.list(HeadingSummary, []string{layout.Summary})
			}
		} else {
			w.list(HeadingContinued, []string{p.Label()})
		}
		w.list(HeadingExperience, p.Experience)
		w.list(HeadingProjects, p.Projects)
	}

	var buf bytes.Buffer
	if _, err := w.doc.WriteTo(&buf); err != nil {
		return nil, &RenderError{Format: FormatDOCX, Message: "failed to write document", Cause: err}
	}
	return buf.Bytes(), nil
}

type docxWriter struct {
	doc *docx.Docx
}

// details writes the experience details page, Education last.
func (w *docxWriter) details(layout *Layout) {
	if len(layout.Experience) > 0 {
		w.heading(HeadingExperienceDetails)
		for i, e := range layout.Experience {
			if i > 0 {
				w.doc.AddParagraph()
			}
			for _, f := range e.Fields {
				w.labelled(f.Label, f.Value)
			}
			if len(e.Responsibilities) > 0 {
				w.doc.AddParagraph().AddText(strings.ToUpper(HeadingResponsibilities) + ":").Bold().Size(docxSubheadSize)
				for _, r := range e.Responsibilities {
					w.bullet(r)
				}
			}
		}
	}
	w.list(HeadingEducation, layout.Education)
}

func (w *docxWriter) header(layout *Layout) {
	w.doc.AddParagraph().AddText(strings.ToUpper(layout.DisplayName())).Bold().Size(docxNameSize)
	if len(layout.Contact) > 0 {
		w.doc.AddParagraph().AddText(strings.Join(layout.Contact, " | ")).Size(docxBodySize).Color(docxMutedColor)
	}
}

func (w *docxWriter) heading(title string) {
	w.doc.AddParagraph().AddText(title).Bold().Size(docxHeadingSize)
}

// list writes a heading followed by bullets; nothing at all when items is empty.
func (w *docxWriter) list(title string, items []string) {
	if len(items) == 0 {
		return
	}
	w.heading(title)
	for _, item := range items {
		w.bullet(item)
	}
}

func (w *docxWriter) bullet(text string) {
	p := w.doc.AddParagraph().Justification("both")
	p.AddText(docxBullet).Size(docxBodySize)
	p.AddText(text).Size(docxBodySize)
}

func (w *docxWriter) labelled(label, value string) {
	p := w.doc.AddParagraph().Justification("both")
	p.AddText(docxBullet).Size(docxBodySize)
	if label != "" {
		p.AddText(label + ": ").Bold().Size(docxBodySize)
	}
	p.AddText(value).Size(docxBodySize)
}

func (w *docxWriter) pageBreak() {
	w.doc.AddParagraph().AddPageBreaks()
}
