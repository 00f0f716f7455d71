package rendering

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/resume-formatter/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Format is an output document format.
type Format string

const (
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// ParseFormat converts a user supplied value into a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatHTML, FormatPDF, FormatDOCX:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "text/html; charset=utf-8"
	}
}

// Document is one rendered file.
type Document struct {
	Format   Format
	Filename string
	Data     []byte
}

// Renderer produces documents from records. It holds no per-record state and
// is safe for concurrent use.
type Renderer struct {
	pdf    PDFConverter
	logger *zap.Logger
}

// NewRenderer creates a renderer. pdf may be nil when PDF output is not needed.
func NewRenderer(pdf PDFConverter, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{pdf: pdf, logger: logger}
}

// Render produces one document for record.
func (r *Renderer) Render(ctx context.Context, format Format, record *types.ResumeRecord) (*Document, error) {
	layout := Build(record)

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatHTML:
		data, err = RenderHTML(layout)
	case FormatDOCX:
		data, err = RenderDOCX(layout)
	case FormatPDF:
		data, err = r.renderPDF(ctx, layout)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		r.logger.Error("document generation failed", zap.String("format", string(format)), zap.Error(err))
		return nil, wrapRenderError(format, err)
	}

	return &Document{
		Format:   format,
		Filename: DocumentFilename(record, format),
		Data:     data,
	}, nil
}

// RenderAll produces every requested format concurrently. Documents are
// returned in the order of formats.
func (r *Renderer) RenderAll(ctx context.Context, record *types.ResumeRecord, formats ...Format) ([]*Document, error) {
	docs := make([]*Document, len(formats))
	g, gctx := errgroup.WithContext(ctx)
	for i, format := range formats {
		g.Go(func() error {
			doc, err := r.Render(gctx, format, record)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *Renderer) renderPDF(ctx context.Context, layout *Layout) ([]byte, error) {
	if r.pdf == nil {
		return nil, fmt.Errorf("no PDF converter configured")
	}
	html, err := RenderHTML(layout)
	if err != nil {
		return nil, err
	}
	return r.pdf.ConvertHTMLToPDF(ctx, string(html))
}

func wrapRenderError(format Format, err error) error {
	if renderErr, ok := err.(*RenderError); ok {
		return renderErr
	}
	return &RenderError{Format: format, Message: GenericFailureMessage, Cause: err}
}
