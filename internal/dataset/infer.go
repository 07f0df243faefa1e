package dataset

import (
	"math"
	"strings"
	"time"
)

// maxCategorical is the distinct-value cutoff below which a text column is
// treated as categorical.
const maxCategorical = 50

// build assembles a typed Dataset from a header and raw string rows. Kind is
// decided per column by the predominant parse outcome across non-missing
// cells; ties break toward numeric, then datetime.
func build(name string, header []string, rows [][]string) *Dataset {
	ncol := len(header)
	cols := make([]*Column, ncol)
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = "(unnamed)"
		}
		cols[i] = &Column{Name: h, Cells: make([]string, len(rows))}
	}
	type counts struct{ num, dt, txt int }
	cnt := make([]counts, ncol)
	uniq := make([]map[string]struct{}, ncol)
	for i := range uniq {
		uniq[i] = make(map[string]struct{})
	}
	for r, row := range rows {
		for j := 0; j < ncol; j++ {
			v := ""
			if j < len(row) {
				v = strings.TrimSpace(row[j])
			}
			cols[j].Cells[r] = v
			if v == "" {
				continue
			}
			if _, ok := parseNumeric(v); ok {
				cnt[j].num++
				continue
			}
			if _, ok := parseTimeMaybe(v); ok {
				cnt[j].dt++
				continue
			}
			cnt[j].txt++
			if len(uniq[j]) <= maxCategorical {
				uniq[j][v] = struct{}{}
			}
		}
	}
	for j, c := range cols {
		switch {
		case cnt[j].num > 0 && cnt[j].num >= cnt[j].dt && cnt[j].num >= cnt[j].txt:
			c.Kind = KindNumeric
			c.Nums = make([]float64, len(rows))
			for r, v := range c.Cells {
				if f, ok := parseNumeric(v); ok {
					c.Nums[r] = f
				} else {
					c.Nums[r] = math.NaN()
				}
			}
		case cnt[j].dt > 0 && cnt[j].dt >= cnt[j].txt:
			c.Kind = KindDatetime
			c.Times = make([]time.Time, len(rows))
			for r, v := range c.Cells {
				if t, ok := parseTimeMaybe(v); ok {
					c.Times[r] = t
				}
			}
		case len(uniq[j]) > 0 && len(uniq[j]) <= maxCategorical:
			c.Kind = KindCategorical
		default:
			c.Kind = KindText
		}
	}
	return &Dataset{Name: name, cols: cols, rows: len(rows)}
}
