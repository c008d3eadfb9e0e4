package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ChromeRenderer prints the HTML rendering to PDF with headless Chrome.
// It needs a Chrome or Chromium binary on the host.
type ChromeRenderer struct {
	HTML    *HTMLRenderer
	Timeout time.Duration
	// ExecPath overrides Chrome discovery when set.
	ExecPath string
}

func NewChromeRenderer() *ChromeRenderer {
	return &ChromeRenderer{HTML: NewHTMLRenderer(), Timeout: 30 * time.Second}
}

func (r *ChromeRenderer) Extension() string   { return "pdf" }
func (r *ChromeRenderer) ContentType() string { return "application/pdf" }

func (r *ChromeRenderer) Render(ctx context.Context, doc Document, w io.Writer) error {
	var buf bytes.Buffer
	if err := r.HTML.Render(ctx, doc, &buf); err != nil {
		return err
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	if r.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(r.ExecPath))
	}
	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	chromeCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	if r.Timeout > 0 {
		chromeCtx, cancel = context.WithTimeout(chromeCtx, r.Timeout)
		defer cancel()
	}

	content := buf.String()
	var pdfData []byte
	err := chromedp.Run(chromeCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, content).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfData, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return fmt.Errorf("print to pdf: %w", err)
	}

	_, err = w.Write(pdfData)
	return err
}
