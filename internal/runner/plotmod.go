package runner

import (
	"fmt"
	"math"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/mrityunjay5004/personal-ai-data-analyst/internal/analysis"
	"github.com/mrityunjay5004/personal-ai-data-analyst/internal/dataset"
	"github.com/mrityunjay5004/personal-ai-data-analyst/internal/plot"
)

// plotModule builds the `plot` binding for one execution. Each successful
// call replaces the pending chart artifact; the last chart wins.
func plotModule(state *runState) *starlarkstruct.Module {
	requireDF := func(fn string, v starlark.Value) (*dataset.Dataset, error) {
		dv, ok := v.(*dfValue)
		if !ok {
			return nil, fmt.Errorf("%s: first argument must be the dataset", fn)
		}
		return dv.ds, nil
	}
	numericCol := func(fn, name string, d *dataset.Dataset) (*dataset.Column, error) {
		c := d.Column(name)
		if c == nil {
			return nil, fmt.Errorf("%s: no such column %q", fn, name)
		}
		if c.Kind != dataset.KindNumeric {
			return nil, fmt.Errorf("%s: column %q is not numeric", fn, name)
		}
		return c, nil
	}

	hist := starlark.NewBuiltin("hist", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var dfArg starlark.Value
		var col string
		bins := 30
		if err := starlark.UnpackArgs("hist", args, kwargs, "df", &dfArg, "col", &col, "bins?", &bins); err != nil {
			return nil, err
		}
		d, err := requireDF("hist", dfArg)
		if err != nil {
			return nil, err
		}
		c, err := numericCol("hist", col, d)
		if err != nil {
			return nil, err
		}
		png, err := plot.Histogram("Histogram of "+col, c.Values(), bins)
		if err != nil {
			return nil, fmt.Errorf("hist: %w", err)
		}
		state.png = png
		return starlark.None, nil
	})

	scatter := starlark.NewBuiltin("scatter", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var dfArg starlark.Value
		var xCol, yCol string
		if err := starlark.UnpackArgs("scatter", args, kwargs, "df", &dfArg, "x_col", &xCol, "y_col", &yCol); err != nil {
			return nil, err
		}
		d, err := requireDF("scatter", dfArg)
		if err != nil {
			return nil, err
		}
		xc, err := numericCol("scatter", xCol, d)
		if err != nil {
			return nil, err
		}
		yc, err := numericCol("scatter", yCol, d)
		if err != nil {
			return nil, err
		}
		// Pair only rows where both values are present.
		var xs, ys []float64
		for i := 0; i < len(xc.Nums) && i < len(yc.Nums); i++ {
			if math.IsNaN(xc.Nums[i]) || math.IsNaN(yc.Nums[i]) {
				continue
			}
			xs = append(xs, xc.Nums[i])
			ys = append(ys, yc.Nums[i])
		}
		png, err := plot.Scatter(yCol+" vs "+xCol, xCol, yCol, xs, ys)
		if err != nil {
			return nil, fmt.Errorf("scatter: %w", err)
		}
		state.png = png
		return starlark.None, nil
	})

	line := starlark.NewBuiltin("line", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var dfArg starlark.Value
		var dateCol, valCol string
		if err := starlark.UnpackArgs("line", args, kwargs, "df", &dfArg, "date_col", &dateCol, "value_col", &valCol); err != nil {
			return nil, err
		}
		d, err := requireDF("line", dfArg)
		if err != nil {
			return nil, err
		}
		times, vals, err := analysis.MonthSeries(d, dateCol, valCol)
		if err != nil {
			return nil, fmt.Errorf("line: %w", err)
		}
		png, err := plot.Line("Monthly "+valCol, valCol, times, vals)
		if err != nil {
			return nil, fmt.Errorf("line: %w", err)
		}
		state.png = png
		return starlark.None, nil
	})

	heatmap := starlark.NewBuiltin("heatmap", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var dfArg starlark.Value
		if err := starlark.UnpackArgs("heatmap", args, kwargs, "df", &dfArg); err != nil {
			return nil, err
		}
		d, err := requireDF("heatmap", dfArg)
		if err != nil {
			return nil, err
		}
		m := analysis.Corr(d)
		png, err := plot.Heatmap("Correlation matrix", m.Columns, m.Values)
		if err != nil {
			return nil, fmt.Errorf("heatmap: %w", err)
		}
		state.png = png
		return starlark.None, nil
	})

	return &starlarkstruct.Module{
		Name: "plot",
		Members: starlark.StringDict{
			"hist":    hist,
			"scatter": scatter,
			"line":    line,
			"heatmap": heatmap,
		},
	}
}
