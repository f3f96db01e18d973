// Package docs turns input files (PDF, XLSX, CSV, plain text) into raw text
// and line-item metrics for the reconciler.
package docs

import (
	"regexp"
	"strings"

	"github.com/harborline/shipdocs/internal/model"
	"github.com/harborline/shipdocs/internal/normalize"
)

var headerCleanRe = regexp.MustCompile(`[^a-z0-9 ]+`)

var (
	descriptionAliases = []string{"description", "item description", "item", "goods", "product", "commodity"}
	quantityAliases    = []string{"quantity", "qty", "pieces", "units"}
	priceAliases       = []string{"price", "unit price", "amount", "unit cost", "value"}
	weightAliases      = []string{"gross weight", "weight", "gross wt", "weight kg", "kg", "gw"}
)

type columnIndex struct {
	description int
	quantity    int
	price       int
	weight      int
}

// ParseLineItemMetrics derives line-item aggregates from tabular rows. The
// header row is located by column-name aliases; rows before it are ignored.
// Returns nil when no line-item table can be identified.
func ParseLineItemMetrics(rows [][]string) *model.LineItemMetrics {
	headerIdx, cols := findHeader(rows)
	if headerIdx < 0 {
		return nil
	}

	count := 0
	var weights, prices []float64

	for _, row := range rows[headerIdx+1:] {
		desc := cellAt(row, cols.description)
		if strings.TrimSpace(desc) == "" {
			continue
		}
		count++

		if cols.weight >= 0 {
			if f, ok := normalize.ParseFloat(cellAt(row, cols.weight)); ok {
				weights = append(weights, f)
			}
		}
		if cols.price >= 0 {
			if f, ok := normalize.ParseFloat(cellAt(row, cols.price)); ok {
				prices = append(prices, f)
			}
		}
	}

	if count == 0 {
		return nil
	}

	m := &model.LineItemMetrics{Count: &count}
	if avg, ok := meanOf(weights); ok {
		m.AverageGrossWeight = &avg
	}
	if avg, ok := meanOf(prices); ok {
		m.AveragePrice = &avg
	}
	return m
}

// findHeader scans for the first row naming a description column plus at
// least one other known column.
func findHeader(rows [][]string) (int, columnIndex) {
	for i, row := range rows {
		cols := columnIndex{description: -1, quantity: -1, price: -1, weight: -1}
		for j, cell := range row {
			name := cleanHeader(cell)
			if name == "" {
				continue
			}
			switch {
			case cols.description < 0 && matchesAlias(name, descriptionAliases):
				cols.description = j
			case cols.quantity < 0 && matchesAlias(name, quantityAliases):
				cols.quantity = j
			case cols.price < 0 && matchesAlias(name, priceAliases):
				cols.price = j
			case cols.weight < 0 && matchesAlias(name, weightAliases):
				cols.weight = j
			}
		}
		if cols.description >= 0 && (cols.quantity >= 0 || cols.price >= 0 || cols.weight >= 0) {
			return i, cols
		}
	}
	return -1, columnIndex{}
}

func cleanHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = headerCleanRe.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// matchesAlias accepts exact matches and unit-suffixed variants like
// "gross weight kg".
func matchesAlias(name string, aliases []string) bool {
	for _, a := range aliases {
		if name == a || strings.HasPrefix(name, a+" ") {
			return true
		}
	}
	return false
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func meanOf(vals []float64) (float64, bool) {
	if len(vals) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals)), true
}
