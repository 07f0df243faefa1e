package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mrityunjay5004/personal-ai-data-analyst/internal/dataset"
)

// Report renders a compact schema summary of the dataset, suitable for
// embedding in an LLM prompt or printing from the CLI.
func Report(d *dataset.Dataset) string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if d.Name != "" {
		fmt.Fprintf(&b, "File: %s\n", d.Name)
	}
	fmt.Fprintf(&b, "Rows: %d\nColumns: %d\n\n", d.NumRows(), d.NumCols())

	b.WriteString("[SCHEMA]\n")
	for _, c := range d.Columns() {
		nn := c.NonNull()
		missPct := 0.0
		if d.NumRows() > 0 {
			missPct = float64(d.NumRows()-nn) * 100.0 / float64(d.NumRows())
		}
		fmt.Fprintf(&b, "- %s: %s (non-null %d, missing %.1f%%)", c.Name, c.Kind, nn, missPct)
		switch c.Kind {
		case dataset.KindNumeric:
			vals := c.Values()
			if len(vals) > 0 {
				sorted := append([]float64(nil), vals...)
				sort.Float64s(sorted)
				mean, std := meanStd(vals)
				fmt.Fprintf(&b, "; min %.4g, max %.4g, mean %.4g, std %.4g",
					sorted[0], sorted[len(sorted)-1], mean, std)
			}
		case dataset.KindCategorical:
			if top, err := ValueCounts(d, c.Name, 5); err == nil && len(top.Rows) > 0 {
				b.WriteString("; top: ")
				for i, row := range top.Rows {
					if i > 0 {
						b.WriteString(", ")
					}
					fmt.Fprintf(&b, "%s(%s)", safeVal(row[0]), row[1])
				}
			}
		}
		b.WriteString("\n")
	}

	head := d.Head(5)
	if len(head.Rows) > 0 {
		b.WriteString("\n[SAMPLE ROWS]\n| ")
		b.WriteString(strings.Join(head.Columns, " | "))
		b.WriteString(" |\n| ")
		for i := range head.Columns {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString("---")
		}
		b.WriteString(" |\n")
		for _, row := range head.Rows {
			b.WriteString("| ")
			for i, v := range row {
				if i > 0 {
					b.WriteString(" | ")
				}
				if len(v) > 80 {
					v = v[:77] + "..."
				}
				b.WriteString(safeVal(v))
			}
			b.WriteString(" |\n")
		}
	}
	return b.String()
}

func safeVal(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/")
}
