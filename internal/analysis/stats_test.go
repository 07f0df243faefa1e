package analysis_test

import (
	"math"
	"strings"
	"testing"

	"github.com/mrityunjay5004/personal-ai-data-analyst/internal/analysis"
	"github.com/mrityunjay5004/personal-ai-data-analyst/internal/dataset"
)

func mustLoad(t *testing.T, name, csv string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Load(name, strings.NewReader(csv))
	if err != nil {
		t.Fatalf("load %s: %v", name, err)
	}
	return ds
}

func TestDescribe(t *testing.T) {
	ds := mustLoad(t, "t.csv", "name,v\na,1\nb,2\nc,3\nd,4\n")
	tbl := analysis.Describe(ds)
	if len(tbl.Rows) != 1 {
		t.Fatalf("want one numeric row, got %d", len(tbl.Rows))
	}
	row := tbl.Rows[0]
	// column, count, mean, std, min, 25%, 50%, 75%, max
	if row[0] != "v" || row[1] != "4" {
		t.Fatalf("unexpected row: %v", row)
	}
	if row[2] != "2.5" {
		t.Errorf("mean = %s, want 2.5", row[2])
	}
	if row[4] != "1" || row[8] != "4" {
		t.Errorf("min/max = %s/%s, want 1/4", row[4], row[8])
	}
	if row[6] != "2.5" {
		t.Errorf("median = %s, want 2.5", row[6])
	}
}

func TestValueCounts(t *testing.T) {
	ds := mustLoad(t, "t.csv", "cat,n\nred,1\nblue,1\nred,1\n,1\nred,1\nblue,1\n")
	tbl, err := analysis.ValueCounts(ds, "cat", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(tbl.Rows) != 3 {
		t.Fatalf("want 3 distinct values, got %d", len(tbl.Rows))
	}
	if tbl.Rows[0][0] != "red" || tbl.Rows[0][1] != "3" {
		t.Errorf("top row = %v, want red/3", tbl.Rows[0])
	}
	found := false
	for _, r := range tbl.Rows {
		if r[0] == "(missing)" && r[1] == "1" {
			found = true
		}
	}
	if !found {
		t.Error("missing cells should be counted under (missing)")
	}

	if _, err := analysis.ValueCounts(ds, "nope", 5); err == nil {
		t.Error("unknown column should error")
	}
}

func TestSortBy(t *testing.T) {
	ds := mustLoad(t, "t.csv", "name,v\na,3\nb,\nc,10\nd,2\n")
	tbl, err := analysis.SortBy(ds, "v", false)
	if err != nil {
		t.Fatal(err)
	}
	got := make([]string, len(tbl.Rows))
	for i, r := range tbl.Rows {
		got[i] = r[0]
	}
	// Descending numeric, missing last.
	want := []string{"c", "a", "d", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestResampleMonth(t *testing.T) {
	ds := mustLoad(t, "t.csv", "date,value\n2024-01-05,10\n2024-01-20,5\n2024-02-09,7\n")
	tbl, err := analysis.ResampleMonth(ds, "date", "value")
	if err != nil {
		t.Fatal(err)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("want 2 month buckets, got %d", len(tbl.Rows))
	}
	if tbl.Columns[1] != "sum_value" {
		t.Errorf("value column named %q", tbl.Columns[1])
	}
	if tbl.Rows[0][0] != "2024-01" || tbl.Rows[0][1] != "15" {
		t.Errorf("january bucket = %v, want 2024-01/15", tbl.Rows[0])
	}

	// Count mode when no value column is given.
	tbl, err = analysis.ResampleMonth(ds, "date", "")
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Columns[1] != "count" || tbl.Rows[0][1] != "2" {
		t.Errorf("count mode = %v / %v", tbl.Columns, tbl.Rows)
	}

	if _, err := analysis.ResampleMonth(ds, "value", ""); err == nil {
		t.Error("resampling on a numeric column should error")
	}
}

func TestAnomalies(t *testing.T) {
	var b strings.Builder
	b.WriteString("v\n")
	for i := 0; i < 30; i++ {
		b.WriteString("10\n")
	}
	b.WriteString("1000\n")
	ds := mustLoad(t, "t.csv", b.String())
	tbl := analysis.Anomalies(ds, 3, 20)
	if len(tbl.Rows) != 1 {
		t.Fatalf("want exactly the outlier row, got %d rows", len(tbl.Rows))
	}
	if tbl.Rows[0][0] != "1000" {
		t.Errorf("flagged row = %v", tbl.Rows[0])
	}
	if tbl.Columns[len(tbl.Columns)-1] != "max_abs_z" {
		t.Errorf("last column = %q, want max_abs_z", tbl.Columns[len(tbl.Columns)-1])
	}
}

func TestCorr(t *testing.T) {
	ds := mustLoad(t, "t.csv", "x,y,z\n1,2,9\n2,4,1\n3,6,5\n4,8,3\n")
	m := analysis.Corr(ds)
	if len(m.Columns) != 3 {
		t.Fatalf("want 3 numeric columns, got %v", m.Columns)
	}
	if math.Abs(m.Values[0][1]-1) > 1e-9 {
		t.Errorf("corr(x,y) = %v, want 1", m.Values[0][1])
	}
	if m.Values[0][0] != 1 || m.Values[1][1] != 1 {
		t.Error("diagonal should be 1")
	}
	if m.Values[0][2] != m.Values[2][0] {
		t.Error("matrix should be symmetric")
	}
	tbl := m.Table()
	if len(tbl.Rows) != 3 || tbl.Rows[0][1] != "1.000" {
		t.Errorf("table rendering off: %v", tbl.Rows)
	}
}

func TestSummary(t *testing.T) {
	ds := mustLoad(t, "t.csv", "name,v\na,1\nb,\n")
	s := analysis.Summary(ds)
	if !strings.Contains(s, "Rows: 2, Columns: 2") {
		t.Errorf("summary missing shape: %q", s)
	}
	if !strings.Contains(s, "v:1") {
		t.Errorf("summary should report the missing cell: %q", s)
	}
}

func TestReport(t *testing.T) {
	ds := mustLoad(t, "sales.csv", "date,region,value\n2024-01-05,north,10.5\n2024-02-09,south,12\n")
	r := analysis.Report(ds)
	for _, want := range []string{"[DATASET SUMMARY]", "[SCHEMA]", "[SAMPLE ROWS]", "date", "region", "value"} {
		if !strings.Contains(r, want) {
			t.Errorf("report missing %q", want)
		}
	}
}
