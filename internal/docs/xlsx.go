package docs

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/harborline/shipdocs/internal/model"
)

// ReadXLSX loads every sheet of a workbook as string rows, keyed by sheet
// order.
func ReadXLSX(path string) ([][][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "docs: open xlsx %s", path)
	}

	sheets := make([][][]string, 0, len(f.Sheets))
	for _, sheet := range f.Sheets {
		rows := make([][]string, 0, len(sheet.Rows))
		for _, row := range sheet.Rows {
			cells := make([]string, len(row.Cells))
			for j, cell := range row.Cells {
				cells[j] = cell.String()
			}
			rows = append(rows, cells)
		}
		sheets = append(sheets, rows)
	}
	return sheets, nil
}

// XLSXMetrics parses line-item aggregates out of a workbook. The first sheet
// that yields a line-item table wins.
func XLSXMetrics(path string) (*model.LineItemMetrics, error) {
	sheets, err := ReadXLSX(path)
	if err != nil {
		return nil, err
	}
	for _, rows := range sheets {
		if m := ParseLineItemMetrics(rows); !m.Empty() {
			return m, nil
		}
	}
	return nil, nil
}

// XLSXText renders a workbook as tab-separated plain text for downstream
// text extraction.
func XLSXText(path string) (string, error) {
	sheets, err := ReadXLSX(path)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, rows := range sheets {
		for _, row := range rows {
			line := strings.TrimRight(strings.Join(row, "\t"), "\t ")
			if line == "" {
				continue
			}
			b.WriteString(line)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}
