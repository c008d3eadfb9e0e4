package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"fintrack/internal/catalog"
	"fintrack/internal/report"
)

// writeReport renders doc into dir and returns the file path. A failed
// render leaves no partial file behind.
func writeReport(ctx context.Context, dir string, r report.Renderer, doc report.Document) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, report.Filename(r))

	tmp, err := os.CreateTemp(dir, ".fintrack-export-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if err := report.Export(ctx, r, doc, tmp); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("move report into place: %w", err)
	}
	return path, nil
}

func printCategories(w io.Writer, categories []catalog.Category) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Tag\tLabel")
	for _, c := range categories {
		fmt.Fprintf(tw, "%s\t%s\n", c.Tag, c.Label)
	}
	return tw.Flush()
}
