package rendering

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// DefaultPDFTimeout bounds one HTML to PDF conversion, browser start included.
const DefaultPDFTimeout = 60 * time.Second

// A4 paper size in inches.
const (
	a4WidthInch  = 8.27
	a4HeightInch = 11.69
)

// PDFConverter prints an HTML document to PDF.
type PDFConverter interface {
	ConvertHTMLToPDF(ctx context.Context, html string) ([]byte, error)
}

// ChromeConverter prints HTML with headless Chrome. When RemoteURL is set it
// attaches to a running browser's DevTools websocket; otherwise it starts a
// local Chrome or Chromium.
type ChromeConverter struct {
	RemoteURL string
	Timeout   time.Duration
	Logger    *zap.Logger
}

// NewChromeConverter creates a converter; remoteURL may be empty.
func NewChromeConverter(remoteURL string, timeout time.Duration, logger *zap.Logger) *ChromeConverter {
	if timeout <= 0 {
		timeout = DefaultPDFTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChromeConverter{RemoteURL: remoteURL, Timeout: timeout, Logger: logger}
}

func (c *ChromeConverter) allocator(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.RemoteURL != "" {
		return chromedp.NewRemoteAllocator(ctx, c.RemoteURL)
	}
	return chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
}

// ConvertHTMLToPDF loads html into a blank page and prints it on A4 paper
// honouring the document's own @page rules.
func (c *ChromeConverter) ConvertHTMLToPDF(ctx context.Context, html string) ([]byte, error) {
	start := time.Now()

	timeoutCtx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	allocCtx, allocCancel := c.allocator(timeoutCtx)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	params := page.PrintToPDF().
		WithPrintBackground(true).
		WithPreferCSSPageSize(true).
		WithPaperWidth(a4WidthInch).
		WithPaperHeight(a4HeightInch).
		WithMarginTop(0).
		WithMarginBottom(0).
		WithMarginLeft(0).
		WithMarginRight(0)

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = params.Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("browser PDF printing failed: %w", err)
	}

	c.Logger.Debug("printed PDF",
		zap.Int("bytes", len(pdf)),
		zap.Bool("remote", c.RemoteURL != ""),
		zap.Duration("elapsed", time.Since(start)))
	return pdf, nil
}
