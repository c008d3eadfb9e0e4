package report

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Renderer turns a Document into bytes.
type Renderer interface {
	Render(ctx context.Context, doc Document, w io.Writer) error
	// Extension is the file suffix without the dot.
	Extension() string
	ContentType() string
}

// Filename returns the download name for r's output.
func Filename(r Renderer) string {
	return baseFilename + "." + r.Extension()
}

// Export renders doc with r. Nothing is written to w on a context that is
// already done.
func Export(ctx context.Context, r Renderer, doc Document, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.Render(ctx, doc, w); err != nil {
		return fmt.Errorf("render %s: %w", r.Extension(), err)
	}
	return nil
}

// NewRenderer picks a renderer by format name: "pdf", "html" or "chrome".
func NewRenderer(format string) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "pdf":
		return NewPDFRenderer(), nil
	case "html":
		return NewHTMLRenderer(), nil
	case "chrome":
		return NewChromeRenderer(), nil
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}
