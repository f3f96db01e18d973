package docs

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/harborline/shipdocs/internal/model"
)

// Bundle is the combined reading of one document set.
type Bundle struct {
	Filenames []string
	RawText   string
	Metrics   *model.LineItemMetrics
}

// Reader turns input files into a Bundle. Spreadsheets contribute both text
// and metrics; PDFs and plain text contribute text only.
type Reader struct {
	pdf PDFExtractor
}

// NewReader builds a Reader around the given PDF extractor.
func NewReader(pdf PDFExtractor) *Reader {
	return &Reader{pdf: pdf}
}

// Read processes all paths in order. The first spreadsheet that yields
// line-item metrics wins; later sheets only contribute text.
func (r *Reader) Read(ctx context.Context, paths []string) (*Bundle, error) {
	bundle := &Bundle{}
	var texts []string

	for _, path := range paths {
		bundle.Filenames = append(bundle.Filenames, filepath.Base(path))

		switch strings.ToLower(filepath.Ext(path)) {
		case ".pdf":
			text, err := r.pdf.ExtractText(ctx, path)
			if err != nil {
				return nil, err
			}
			texts = append(texts, text)

		case ".xlsx":
			text, err := XLSXText(path)
			if err != nil {
				return nil, err
			}
			texts = append(texts, text)

			if bundle.Metrics.Empty() {
				metrics, err := XLSXMetrics(path)
				if err != nil {
					return nil, err
				}
				bundle.Metrics = metrics
			}

		case ".csv":
			f, err := os.Open(path)
			if err != nil {
				return nil, eris.Wrapf(err, "docs: open %s", path)
			}
			rows, err := ReadCSV(f)
			f.Close()
			if err != nil {
				return nil, err
			}
			texts = append(texts, CSVText(rows))

			if bundle.Metrics.Empty() {
				bundle.Metrics = ParseLineItemMetrics(rows)
			}

		default:
			text, err := readTextFile(path)
			if err != nil {
				return nil, err
			}
			texts = append(texts, text)
		}
	}

	bundle.RawText = strings.Join(texts, "\n\n")
	zap.L().Debug("read document bundle",
		zap.Int("files", len(paths)),
		zap.Int("text_bytes", len(bundle.RawText)),
		zap.Bool("has_metrics", !bundle.Metrics.Empty()),
	)
	return bundle, nil
}

// readTextFile loads a plain-text file, re-decoding from windows-1252 when
// the bytes are not valid UTF-8. Scanned manifests exported by legacy
// tooling are usually in that code page.
func readTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", eris.Wrapf(err, "docs: read %s", path)
	}
	if utf8.Valid(data) {
		return string(data), nil
	}

	enc, err := htmlindex.Get("windows-1252")
	if err != nil {
		return "", eris.Wrap(err, "docs: lookup charset")
	}
	decoded, err := enc.NewDecoder().Bytes(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF}))
	if err != nil {
		return "", eris.Wrapf(err, "docs: decode %s", path)
	}
	return string(decoded), nil
}
