package runner_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrityunjay5004/personal-ai-data-analyst/internal/dataset"
	"github.com/mrityunjay5004/personal-ai-data-analyst/internal/runner"
)

func testDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	csv := "date,region,value\n" +
		"2024-01-05,north,10\n" +
		"2024-01-20,south,5\n" +
		"2024-02-09,north,7\n" +
		"2024-03-11,south,12\n"
	ds, err := dataset.Load("sales.csv", strings.NewReader(csv))
	require.NoError(t, err)
	return ds
}

func run(t *testing.T, code string) (*runner.Result, error) {
	t.Helper()
	r := runner.New(5 * time.Second)
	return r.Run(context.Background(), code, testDataset(t))
}

func TestRunResultTable(t *testing.T) {
	res, err := run(t, `result = df.sort_by("value", ascending=False).head(2)`)
	require.NoError(t, err)
	require.Equal(t, runner.KindTable, res.Kind)
	require.NotNil(t, res.Table)
	assert.Len(t, res.Table.Rows, 2)
	assert.Equal(t, "12", res.Table.Rows[0][2])
}

func TestRunResultText(t *testing.T) {
	res, err := run(t, `result = df.summary()`)
	require.NoError(t, err)
	assert.Equal(t, runner.KindText, res.Kind)
	assert.Contains(t, res.Text, "Rows: 4")
}

func TestRunPrintedOutputCaptured(t *testing.T) {
	res, err := run(t, "print(\"rows:\", df.num_rows())")
	require.NoError(t, err)
	assert.Equal(t, runner.KindText, res.Kind)
	assert.Contains(t, res.Text, "rows: 4")
}

func TestRunNoResult(t *testing.T) {
	res, err := run(t, `x = 1 + 1`)
	require.NoError(t, err)
	assert.Equal(t, runner.KindText, res.Kind)
	assert.Equal(t, "Execution finished. No result produced.", res.Text)
}

func TestRunChartWins(t *testing.T) {
	// Chart takes precedence over the result global.
	res, err := run(t, "plot.hist(df, \"value\", bins=5)\nresult = df.summary()\n")
	require.NoError(t, err)
	require.Equal(t, runner.KindChart, res.Kind)
	require.True(t, bytes.HasPrefix(res.PNG, []byte("\x89PNG")), "chart should be a PNG")
}

func TestRunLinePlot(t *testing.T) {
	res, err := run(t, `plot.line(df, "date", "value")`)
	require.NoError(t, err)
	assert.Equal(t, runner.KindChart, res.Kind)
	assert.NotEmpty(t, res.PNG)
}

func TestRunHeatmap(t *testing.T) {
	ds, err := dataset.Load("xy.csv", strings.NewReader("x,y\n1,2\n2,4\n3,6\n"))
	require.NoError(t, err)
	r := runner.New(5 * time.Second)
	res, err := r.Run(context.Background(), `plot.heatmap(df)`, ds)
	require.NoError(t, err)
	assert.Equal(t, runner.KindChart, res.Kind)
}

func TestRunHeatmapNeedsTwoNumericColumns(t *testing.T) {
	_, err := run(t, `plot.heatmap(df)`)
	var ee *runner.ExecError
	require.ErrorAs(t, err, &ee)
}

func TestRunDisallowedName(t *testing.T) {
	target := filepath.Join(t.TempDir(), "escape.txt")
	_, err := run(t, "open(\""+target+"\", \"w\")")
	var ee *runner.ExecError
	require.ErrorAs(t, err, &ee)
	assert.Contains(t, ee.Error(), "open")
	_, statErr := os.Stat(target)
	assert.True(t, os.IsNotExist(statErr), "script must not touch the filesystem")
}

func TestRunSyntaxError(t *testing.T) {
	_, err := run(t, "def broken(:\n")
	var ee *runner.ExecError
	require.ErrorAs(t, err, &ee)
}

func TestRunRuntimeError(t *testing.T) {
	_, err := run(t, `result = df.column("no_such_column")`)
	var ee *runner.ExecError
	require.ErrorAs(t, err, &ee)
	assert.Contains(t, ee.Error(), "no_such_column")
}

func TestRunInfiniteLoopTimesOut(t *testing.T) {
	r := runner.New(100 * time.Millisecond)
	start := time.Now()
	_, err := r.Run(context.Background(), "x = 0\nwhile True:\n    x += 1\n", testDataset(t))
	elapsed := time.Since(start)
	var ee *runner.ExecError
	require.ErrorAs(t, err, &ee)
	assert.Less(t, elapsed, 5*time.Second, "runaway script must be cancelled, not run to completion")
}

func TestRunInfiniteRecursionCaught(t *testing.T) {
	// Unbounded recursion must come back as a script error, not take the
	// process down with a stack overflow.
	r := runner.New(2 * time.Second)
	_, err := r.Run(context.Background(), "def f():\n    f()\nf()\n", testDataset(t))
	var ee *runner.ExecError
	require.ErrorAs(t, err, &ee)
	assert.Contains(t, ee.Error(), "recursively")
}

func TestRunContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := runner.New(time.Second)
	_, err := r.Run(ctx, "x = 0\nwhile True:\n    x += 1\n", testDataset(t))
	require.Error(t, err)
}

func TestRunFrameHeadAndNumRows(t *testing.T) {
	res, err := run(t, `result = df.describe()`)
	require.NoError(t, err)
	require.Equal(t, runner.KindTable, res.Kind)
	require.Len(t, res.Table.Rows, 1) // one numeric column
	assert.Equal(t, "value", res.Table.Rows[0][0])
}

func TestRunSelect(t *testing.T) {
	res, err := run(t, `result = df.select(["date", "value"])`)
	require.NoError(t, err)
	require.Equal(t, runner.KindTable, res.Kind)
	assert.Equal(t, []string{"date", "value"}, res.Table.Columns)
	assert.Len(t, res.Table.Rows, 4)

	_, err = run(t, `result = df.select(["nope"])`)
	var ee *runner.ExecError
	require.ErrorAs(t, err, &ee)
}

func TestRunValueCounts(t *testing.T) {
	res, err := run(t, `result = df.value_counts("region", 10)`)
	require.NoError(t, err)
	require.Equal(t, runner.KindTable, res.Kind)
	assert.Len(t, res.Table.Rows, 2)
}

func TestRunStaleErrorNotWrapped(t *testing.T) {
	// A script error is always an ExecError, never a bare starlark error.
	_, err := run(t, `result = undefined_name`)
	var ee *runner.ExecError
	require.True(t, errors.As(err, &ee), "got %T: %v", err, err)
}
