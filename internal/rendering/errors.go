// Package rendering turns a parsed resume record into previewable HTML, PDF
// and DOCX documents that share one layout.
package rendering

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is returned for formats other than html, pdf and docx.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// GenericFailureMessage is what users see when document generation fails.
const GenericFailureMessage = "document generation failed"

// TemplateError represents an error parsing or executing the HTML template
type TemplateError struct {
	Message string
	Cause   error
}

func (e *TemplateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("template error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("template error: %s", e.Message)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// RenderError represents a failure producing one document format
type RenderError struct {
	Format  Format
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("render %s: %s: %v", e.Format, e.Message, e.Cause)
	}
	return fmt.Sprintf("render %s: %s", e.Format, e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}
