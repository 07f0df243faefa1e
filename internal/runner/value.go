package runner

import (
	"fmt"
	"math"
	"sort"

	"go.starlark.net/starlark"

	"github.com/mrityunjay5004/personal-ai-data-analyst/internal/analysis"
	"github.com/mrityunjay5004/personal-ai-data-analyst/internal/dataset"
)

// dfValue exposes a Dataset to Starlark as the `df` binding.
type dfValue struct {
	ds *dataset.Dataset
}

var _ starlark.HasAttrs = (*dfValue)(nil)

func (v *dfValue) String() string        { return fmt.Sprintf("<dataset %s>", v.ds.Name) }
func (v *dfValue) Type() string          { return "dataset" }
func (v *dfValue) Freeze()               {}
func (v *dfValue) Truth() starlark.Bool  { return starlark.Bool(v.ds.NumRows() > 0) }
func (v *dfValue) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: dataset") }

var dfMethods = map[string]func(*dfValue, starlark.Tuple, []starlark.Tuple) (starlark.Value, error){
	"columns":        (*dfValue).columns,
	"num_rows":       (*dfValue).numRows,
	"column":         (*dfValue).column,
	"head":           (*dfValue).head,
	"describe":       (*dfValue).describe,
	"value_counts":   (*dfValue).valueCounts,
	"sort_by":        (*dfValue).sortBy,
	"select":         (*dfValue).selectCols,
	"resample_month": (*dfValue).resampleMonth,
	"anomalies":      (*dfValue).anomalies,
	"corr":           (*dfValue).corr,
	"summary":        (*dfValue).summary,
}

func (v *dfValue) Attr(name string) (starlark.Value, error) {
	m, ok := dfMethods[name]
	if !ok {
		return nil, nil // no such attribute
	}
	return starlark.NewBuiltin(name, func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		return m(v, args, kwargs)
	}), nil
}

func (v *dfValue) AttrNames() []string {
	names := make([]string, 0, len(dfMethods))
	for k := range dfMethods {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (v *dfValue) columns(args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs("columns", args, kwargs); err != nil {
		return nil, err
	}
	var out []starlark.Value
	for _, c := range v.ds.Columns() {
		out = append(out, starlark.String(c.Name))
	}
	return starlark.NewList(out), nil
}

func (v *dfValue) numRows(args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs("num_rows", args, kwargs); err != nil {
		return nil, err
	}
	return starlark.MakeInt(v.ds.NumRows()), nil
}

func (v *dfValue) column(args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackArgs("column", args, kwargs, "name", &name); err != nil {
		return nil, err
	}
	c := v.ds.Column(name)
	if c == nil {
		return nil, fmt.Errorf("column: no such column %q", name)
	}
	var out []starlark.Value
	if c.Kind == dataset.KindNumeric {
		for _, f := range c.Nums {
			if math.IsNaN(f) {
				out = append(out, starlark.None)
			} else {
				out = append(out, starlark.Float(f))
			}
		}
	} else {
		for _, s := range c.Cells {
			out = append(out, starlark.String(s))
		}
	}
	return starlark.NewList(out), nil
}

func (v *dfValue) head(args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	n := 10
	if err := starlark.UnpackArgs("head", args, kwargs, "n?", &n); err != nil {
		return nil, err
	}
	return &frameValue{t: v.ds.Head(n)}, nil
}

func (v *dfValue) describe(args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs("describe", args, kwargs); err != nil {
		return nil, err
	}
	return &frameValue{t: analysis.Describe(v.ds)}, nil
}

func (v *dfValue) valueCounts(args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var col string
	n := 10
	if err := starlark.UnpackArgs("value_counts", args, kwargs, "col", &col, "n?", &n); err != nil {
		return nil, err
	}
	t, err := analysis.ValueCounts(v.ds, col, n)
	if err != nil {
		return nil, fmt.Errorf("value_counts: %w", err)
	}
	return &frameValue{t: t}, nil
}

func (v *dfValue) sortBy(args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var col string
	ascending := false
	if err := starlark.UnpackArgs("sort_by", args, kwargs, "col", &col, "ascending?", &ascending); err != nil {
		return nil, err
	}
	t, err := analysis.SortBy(v.ds, col, ascending)
	if err != nil {
		return nil, fmt.Errorf("sort_by: %w", err)
	}
	return &frameValue{t: t}, nil
}

func (v *dfValue) selectCols(args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var cols *starlark.List
	if err := starlark.UnpackArgs("select", args, kwargs, "cols", &cols); err != nil {
		return nil, err
	}
	names := make([]string, 0, cols.Len())
	for i := 0; i < cols.Len(); i++ {
		s, ok := starlark.AsString(cols.Index(i))
		if !ok {
			return nil, fmt.Errorf("select: column names must be strings, got %s", cols.Index(i).Type())
		}
		names = append(names, s)
	}
	t, err := v.ds.Select(names)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	return &frameValue{t: t}, nil
}

func (v *dfValue) resampleMonth(args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var dateCol, valCol string
	if err := starlark.UnpackArgs("resample_month", args, kwargs, "date_col", &dateCol, "value_col?", &valCol); err != nil {
		return nil, err
	}
	t, err := analysis.ResampleMonth(v.ds, dateCol, valCol)
	if err != nil {
		return nil, fmt.Errorf("resample_month: %w", err)
	}
	return &frameValue{t: t}, nil
}

func (v *dfValue) anomalies(args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	threshold := 3.0
	limit := 20
	if err := starlark.UnpackArgs("anomalies", args, kwargs, "threshold?", &threshold, "limit?", &limit); err != nil {
		return nil, err
	}
	return &frameValue{t: analysis.Anomalies(v.ds, threshold, limit)}, nil
}

func (v *dfValue) corr(args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs("corr", args, kwargs); err != nil {
		return nil, err
	}
	return &frameValue{t: analysis.Corr(v.ds).Table()}, nil
}

func (v *dfValue) summary(args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs("summary", args, kwargs); err != nil {
		return nil, err
	}
	return starlark.String(analysis.Summary(v.ds)), nil
}

// frameValue wraps a tabular result inside the interpreter.
type frameValue struct {
	t *dataset.Table
}

var _ starlark.HasAttrs = (*frameValue)(nil)

func (v *frameValue) String() string {
	return fmt.Sprintf("<frame %dx%d>", len(v.t.Rows), len(v.t.Columns))
}
func (v *frameValue) Type() string          { return "frame" }
func (v *frameValue) Freeze()               {}
func (v *frameValue) Truth() starlark.Bool  { return starlark.Bool(len(v.t.Rows) > 0) }
func (v *frameValue) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: frame") }

func (v *frameValue) Attr(name string) (starlark.Value, error) {
	switch name {
	case "head":
		return starlark.NewBuiltin("head", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			n := 10
			if err := starlark.UnpackArgs("head", args, kwargs, "n?", &n); err != nil {
				return nil, err
			}
			return &frameValue{t: v.t.Head(n)}, nil
		}), nil
	case "num_rows":
		return starlark.NewBuiltin("num_rows", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			if err := starlark.UnpackArgs("num_rows", args, kwargs); err != nil {
				return nil, err
			}
			return starlark.MakeInt(len(v.t.Rows)), nil
		}), nil
	}
	return nil, nil
}

func (v *frameValue) AttrNames() []string { return []string{"head", "num_rows"} }
