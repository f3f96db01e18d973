package docs

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/rotisserie/eris"
)

// PDFExtractor converts PDFs to text. Implementations must preserve layout
// well enough for label-anchored regex extraction to work.
type PDFExtractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// PdfToText shells out to the pdftotext CLI with layout preservation.
type PdfToText struct {
	binPath string
}

// NewPdfToText creates a PdfToText extractor. An empty binPath falls back to
// "pdftotext" on PATH.
func NewPdfToText(binPath string) *PdfToText {
	if binPath == "" {
		binPath = "pdftotext"
	}
	return &PdfToText{binPath: binPath}
}

func (p *PdfToText) ExtractText(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, p.binPath, "-layout", path, "-")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", eris.Wrapf(err, "docs: pdftotext failed for %s: %s", path, stderr.String())
	}
	return stdout.String(), nil
}
