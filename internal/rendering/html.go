package rendering

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"sync"
)

//go:embed templates/resume.html.tmpl
var templateFS embed.FS

var headings = map[string]string{
	"skills":           HeadingSkills,
	"certifications":   HeadingCertifications,
	"summary":          HeadingSummary,
	"experience":       HeadingExperience,
	"projects":         HeadingProjects,
	"details":          HeadingExperienceDetails,
	"education":        HeadingEducation,
	"continued":        HeadingContinued,
	"responsibilities": HeadingResponsibilities,
}

var (
	htmlTemplate     *template.Template
	htmlTemplateErr  error
	htmlTemplateOnce sync.Once
)

// parseTemplate parses the embedded template once.
func parseTemplate() (*template.Template, error) {
	htmlTemplateOnce.Do(func() {
		content, err := templateFS.ReadFile("templates/resume.html.tmpl")
		if err != nil {
			htmlTemplateErr = &TemplateError{Message: "failed to read embedded template", Cause: err}
			return
		}

		tmpl, err := template.New("resume").Funcs(template.FuncMap{
			"join": strings.Join,
			"heading": func(key string) (string, error) {
				h, ok := headings[key]
				if !ok {
					return "", fmt.Errorf("unknown heading %q", key)
				}
				return h, nil
			},
		}).Parse(string(content))
		if err != nil {
			htmlTemplateErr = &TemplateError{Message: "failed to parse template", Cause: err}
			return
		}
		htmlTemplate = tmpl
	})
	return htmlTemplate, htmlTemplateErr
}

// RenderHTML renders the layout as a standalone A4 HTML document. The same
// document is printed to PDF.
func RenderHTML(layout *Layout) ([]byte, error) {
	tmpl, err := parseTemplate()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, layout); err != nil {
		return nil, &TemplateError{Message: "failed to execute template", Cause: err}
	}
	return buf.Bytes(), nil
}
