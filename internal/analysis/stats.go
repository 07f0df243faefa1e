// Package analysis implements the built-in analyses that run against a
// loaded dataset: summary statistics, value counts, sorting, time-series
// aggregation, Pearson correlations and z-score anomaly detection.
package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/mrityunjay5004/personal-ai-data-analyst/internal/dataset"
)

// Describe computes count, mean, std, min, quartiles and max for every
// numeric column, one row per column.
func Describe(d *dataset.Dataset) *dataset.Table {
	t := &dataset.Table{Columns: []string{"column", "count", "mean", "std", "min", "25%", "50%", "75%", "max"}}
	for _, c := range d.Columns() {
		if c.Kind != dataset.KindNumeric {
			continue
		}
		vals := c.Values()
		if len(vals) == 0 {
			continue
		}
		sorted := append([]float64(nil), vals...)
		sort.Float64s(sorted)
		mean, std := meanStd(vals)
		t.Rows = append(t.Rows, []string{
			c.Name,
			fmt.Sprintf("%d", len(vals)),
			dataset.FormatFloat(mean),
			dataset.FormatFloat(std),
			dataset.FormatFloat(sorted[0]),
			dataset.FormatFloat(quantile(sorted, 0.25)),
			dataset.FormatFloat(quantile(sorted, 0.5)),
			dataset.FormatFloat(quantile(sorted, 0.75)),
			dataset.FormatFloat(sorted[len(sorted)-1]),
		})
	}
	return t
}

// ValueCounts returns the top n values of a column by frequency, missing
// cells counted under "(missing)".
func ValueCounts(d *dataset.Dataset, col string, n int) (*dataset.Table, error) {
	c := d.Column(col)
	if c == nil {
		return nil, fmt.Errorf("no such column %q", col)
	}
	counts := map[string]int{}
	for _, v := range c.Cells {
		if v == "" {
			v = "(missing)"
		}
		counts[v]++
	}
	type kv struct {
		val string
		n   int
	}
	all := make([]kv, 0, len(counts))
	for k, v := range counts {
		all = append(all, kv{k, v})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].n == all[j].n {
			return all[i].val < all[j].val
		}
		return all[i].n > all[j].n
	})
	if n > 0 && len(all) > n {
		all = all[:n]
	}
	t := &dataset.Table{Columns: []string{"value", "count"}}
	for _, e := range all {
		t.Rows = append(t.Rows, []string{e.val, fmt.Sprintf("%d", e.n)})
	}
	return t, nil
}

// SortBy returns all rows ordered by the given column. Numeric and datetime
// columns sort by parsed value, everything else lexically; missing cells
// sort last.
func SortBy(d *dataset.Dataset, col string, ascending bool) (*dataset.Table, error) {
	c := d.Column(col)
	if c == nil {
		return nil, fmt.Errorf("no such column %q", col)
	}
	idx := make([]int, d.NumRows())
	for i := range idx {
		idx[i] = i
	}
	less := func(i, j int) bool {
		a, b := c.Cells[idx[i]], c.Cells[idx[j]]
		if a == "" || b == "" {
			return b == "" && a != ""
		}
		switch c.Kind {
		case dataset.KindNumeric:
			x, y := c.Nums[idx[i]], c.Nums[idx[j]]
			if math.IsNaN(x) || math.IsNaN(y) {
				return math.IsNaN(y) && !math.IsNaN(x)
			}
			if ascending {
				return x < y
			}
			return x > y
		case dataset.KindDatetime:
			x, y := c.Times[idx[i]], c.Times[idx[j]]
			if ascending {
				return x.Before(y)
			}
			return x.After(y)
		default:
			if ascending {
				return a < b
			}
			return a > b
		}
	}
	sort.SliceStable(idx, less)
	cols := d.Columns()
	t := &dataset.Table{Columns: make([]string, len(cols))}
	for i, cc := range cols {
		t.Columns[i] = cc.Name
	}
	for _, r := range idx {
		row := make([]string, len(cols))
		for i, cc := range cols {
			row[i] = cc.Cells[r]
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// ResampleMonth buckets rows by calendar month of a datetime column. With a
// value column it sums that column per month; without one it counts rows.
func ResampleMonth(d *dataset.Dataset, dateCol, valCol string) (*dataset.Table, error) {
	dc := d.Column(dateCol)
	if dc == nil {
		return nil, fmt.Errorf("no such column %q", dateCol)
	}
	if dc.Kind != dataset.KindDatetime {
		return nil, fmt.Errorf("column %q is not a datetime column", dateCol)
	}
	var vc *dataset.Column
	if valCol != "" {
		vc = d.Column(valCol)
		if vc == nil {
			return nil, fmt.Errorf("no such column %q", valCol)
		}
		if vc.Kind != dataset.KindNumeric {
			return nil, fmt.Errorf("column %q is not numeric", valCol)
		}
	}
	sums := map[string]float64{}
	counts := map[string]int{}
	for i, ts := range dc.Times {
		if ts.IsZero() {
			continue
		}
		key := ts.Format("2006-01")
		counts[key]++
		if vc != nil && i < len(vc.Nums) && !math.IsNaN(vc.Nums[i]) {
			sums[key] += vc.Nums[i]
		}
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var t *dataset.Table
	if vc != nil {
		t = &dataset.Table{Columns: []string{"month", "sum_" + valCol}}
		for _, k := range keys {
			t.Rows = append(t.Rows, []string{k, dataset.FormatFloat(sums[k])})
		}
	} else {
		t = &dataset.Table{Columns: []string{"month", "count"}}
		for _, k := range keys {
			t.Rows = append(t.Rows, []string{k, fmt.Sprintf("%d", counts[k])})
		}
	}
	return t, nil
}

// MonthSeries returns the sorted month bucket midpoints and aggregated
// values, for time-series plotting.
func MonthSeries(d *dataset.Dataset, dateCol, valCol string) ([]time.Time, []float64, error) {
	t, err := ResampleMonth(d, dateCol, valCol)
	if err != nil {
		return nil, nil, err
	}
	times := make([]time.Time, 0, len(t.Rows))
	vals := make([]float64, 0, len(t.Rows))
	for _, row := range t.Rows {
		ts, err := time.Parse("2006-01", row[0])
		if err != nil {
			continue
		}
		var v float64
		fmt.Sscanf(row[1], "%g", &v)
		times = append(times, ts)
		vals = append(vals, v)
	}
	return times, vals, nil
}

// Anomalies flags rows where any numeric column deviates from its mean by
// more than threshold standard deviations, returning up to limit rows.
func Anomalies(d *dataset.Dataset, threshold float64, limit int) *dataset.Table {
	if threshold <= 0 {
		threshold = 3
	}
	type colStat struct {
		c         *dataset.Column
		mean, std float64
	}
	var stats []colStat
	for _, c := range d.Columns() {
		if c.Kind != dataset.KindNumeric {
			continue
		}
		vals := c.Values()
		if len(vals) < 2 {
			continue
		}
		m, s := meanStd(vals)
		if s > 0 {
			stats = append(stats, colStat{c, m, s})
		}
	}
	cols := d.Columns()
	t := &dataset.Table{Columns: make([]string, len(cols)+1)}
	for i, c := range cols {
		t.Columns[i] = c.Name
	}
	t.Columns[len(cols)] = "max_abs_z"
	for r := 0; r < d.NumRows(); r++ {
		maxZ := 0.0
		for _, st := range stats {
			v := st.c.Nums[r]
			if math.IsNaN(v) {
				continue
			}
			if z := math.Abs((v - st.mean) / st.std); z > maxZ {
				maxZ = z
			}
		}
		if maxZ > threshold {
			row := make([]string, len(cols)+1)
			for i, c := range cols {
				row[i] = c.Cells[r]
			}
			row[len(cols)] = dataset.FormatFloat(maxZ)
			t.Rows = append(t.Rows, row)
			if limit > 0 && len(t.Rows) >= limit {
				break
			}
		}
	}
	return t
}

// CorrMatrix is a symmetric Pearson correlation matrix over the numeric
// columns.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64
}

// Corr computes pairwise Pearson correlations, pairing only rows where both
// values are present.
func Corr(d *dataset.Dataset) *CorrMatrix {
	var cols []*dataset.Column
	for _, c := range d.Columns() {
		if c.Kind == dataset.KindNumeric {
			cols = append(cols, c)
		}
	}
	n := len(cols)
	m := &CorrMatrix{Columns: make([]string, n), Values: make([][]float64, n)}
	for i, c := range cols {
		m.Columns[i] = c.Name
		m.Values[i] = make([]float64, n)
		m.Values[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := pearson(cols[i].Nums, cols[j].Nums)
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m
}

// Table renders the matrix as a tabular result.
func (m *CorrMatrix) Table() *dataset.Table {
	t := &dataset.Table{Columns: append([]string{""}, m.Columns...)}
	for i, name := range m.Columns {
		row := make([]string, len(m.Columns)+1)
		row[0] = name
		for j := range m.Columns {
			row[j+1] = fmt.Sprintf("%.3f", m.Values[i][j])
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func pearson(xs, ys []float64) float64 {
	var n, sx, sy, sxx, syy, sxy float64
	for i := 0; i < len(xs) && i < len(ys); i++ {
		x, y := xs[i], ys[i]
		if math.IsNaN(x) || math.IsNaN(y) {
			continue
		}
		n++
		sx += x
		sy += y
		sxx += x * x
		syy += y * y
		sxy += x * y
	}
	if n < 2 {
		return 0
	}
	denom := math.Sqrt((n*sxx - sx*sx) * (n*syy - sy*sy))
	if denom == 0 {
		return 0
	}
	r := (n*sxy - sx*sy) / denom
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// Summary produces the bullet-point dataset overview used as a built-in
// analysis.
func Summary(d *dataset.Dataset) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- Rows: %d, Columns: %d\n", d.NumRows(), d.NumCols())
	var kinds []string
	numeric := 0
	for _, c := range d.Columns() {
		kinds = append(kinds, fmt.Sprintf("%s:%s", c.Name, c.Kind))
		if c.Kind == dataset.KindNumeric {
			numeric++
		}
	}
	fmt.Fprintf(&b, "- Column types: %s\n", strings.Join(kinds, ", "))
	var missing []string
	for _, c := range d.Columns() {
		if miss := d.NumRows() - c.NonNull(); miss > 0 {
			missing = append(missing, fmt.Sprintf("%s:%d", c.Name, miss))
		}
	}
	if len(missing) > 0 {
		fmt.Fprintf(&b, "- Missing values: %s\n", strings.Join(missing, ", "))
	} else {
		b.WriteString("- Missing values: none\n")
	}
	fmt.Fprintf(&b, "- Numeric columns: %d\n", numeric)
	return strings.TrimRight(b.String(), "\n")
}

func meanStd(vals []float64) (mean, std float64) {
	// Welford
	var n int
	var m2 float64
	for _, x := range vals {
		n++
		delta := x - mean
		mean += delta / float64(n)
		m2 += delta * (x - mean)
	}
	if n > 1 {
		std = math.Sqrt(m2 / float64(n-1))
	}
	return
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
