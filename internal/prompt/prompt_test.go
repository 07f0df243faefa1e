package prompt_test

import (
	"strings"
	"testing"

	"github.com/mrityunjay5004/personal-ai-data-analyst/internal/dataset"
	"github.com/mrityunjay5004/personal-ai-data-analyst/internal/prompt"
)

func hasSuggestion(sug []string, substr string) bool {
	for _, s := range sug {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}

func TestSuggestionsDatetimePlusOneNumeric(t *testing.T) {
	profiles := []dataset.ColumnProfile{
		{Name: "date", Kind: dataset.KindDatetime},
		{Name: "value", Kind: dataset.KindNumeric},
	}
	sug := prompt.Suggestions(profiles)
	if !hasSuggestion(sug, "monthly sum of 'value' using the datetime column 'date'") {
		t.Errorf("want time-series suggestion, got %v", sug)
	}
	if hasSuggestion(sug, "correlation") {
		t.Errorf("one numeric column should not suggest a correlation heatmap: %v", sug)
	}
	if hasSuggestion(sug, "scatter") {
		t.Errorf("one numeric column should not suggest a scatter plot: %v", sug)
	}
	if !hasSuggestion(sug, "anomalies") {
		t.Errorf("anomaly suggestion should always be present: %v", sug)
	}
}

func TestSuggestionsCapped(t *testing.T) {
	profiles := []dataset.ColumnProfile{
		{Name: "date", Kind: dataset.KindDatetime},
		{Name: "a", Kind: dataset.KindNumeric},
		{Name: "b", Kind: dataset.KindNumeric},
		{Name: "cat", Kind: dataset.KindCategorical},
	}
	sug := prompt.Suggestions(profiles)
	if len(sug) > 8 {
		t.Fatalf("at most 8 suggestions, got %d", len(sug))
	}
	if !hasSuggestion(sug, "scatter plot comparing 'a' (x) vs 'b' (y)") {
		t.Errorf("two numeric columns should suggest a scatter plot: %v", sug)
	}
}

func TestSuggestionsTextOnly(t *testing.T) {
	profiles := []dataset.ColumnProfile{{Name: "notes", Kind: dataset.KindText}}
	sug := prompt.Suggestions(profiles)
	// Summary and anomalies are unconditional; nothing numeric-specific.
	if len(sug) != 2 {
		t.Fatalf("want 2 suggestions for a text-only dataset, got %v", sug)
	}
}

func TestBuildDeterministic(t *testing.T) {
	report := "[SCHEMA]\n- date (datetime)\n- value (numeric)"
	a := prompt.Build(report, "what is the trend?")
	b := prompt.Build(report, "what is the trend?")
	if a != b {
		t.Fatal("identical inputs must produce identical prompts")
	}
	if !strings.Contains(a, "date") || !strings.Contains(a, "value") {
		t.Error("prompt should carry the schema column names")
	}
	if !strings.Contains(a, "what is the trend?") {
		t.Error("prompt should carry the question")
	}
	if !strings.Contains(a, "``` code block") {
		t.Error("prompt should ask for a fenced code block")
	}
}

func TestBuildTruncatesHugeSchema(t *testing.T) {
	huge := strings.Repeat("- col (numeric)\n", 5000)
	p := prompt.Build(huge, "q")
	if len(p) >= len(huge) {
		t.Fatal("oversized schema report should be truncated")
	}
}

func TestToScript(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{
			"Summarize the dataset in 5 bullet points (rows, columns, missing values, numeric columns, top categorical).",
			"result = df.summary()\n",
		},
		{
			"Show the top 10 counts for the categorical column 'region'.",
			"result = df.value_counts(\"region\", 10)\n",
		},
		{
			"Show summary statistics (count, mean, std, min, 25%, 50%, 75%, max) for numeric columns.",
			"result = df.describe()\n",
		},
		{
			"Create a histogram of the numeric column 'value'.",
			"plot.hist(df, \"value\", bins=30)\n",
		},
		{
			"Create a scatter plot comparing 'a' (x) vs 'b' (y).",
			"plot.scatter(df, \"a\", \"b\")\n",
		},
		{
			"Show the top 10 rows sorted by 'value' descending.",
			"result = df.sort_by(\"value\", ascending=False).head(10)\n",
		},
		{
			"Create a time series of monthly sum of 'value' using the datetime column 'date'.",
			"result = df.resample_month(\"date\", \"value\")\n",
		},
		{
			"Show counts per month using the datetime column 'date'.",
			"result = df.resample_month(\"date\")\n",
		},
		{
			"Show the correlation matrix heatmap for numeric columns.",
			"plot.heatmap(df)\n",
		},
		{
			"Find rows that look like anomalies using z-score > 3 on numeric columns and show top 20.",
			"result = df.anomalies(3.0, 20)\n",
		},
	}
	for _, tc := range cases {
		got, ok := prompt.ToScript(tc.in)
		if !ok {
			t.Errorf("ToScript(%q) not recognized", tc.in)
			continue
		}
		if got != tc.want {
			t.Errorf("ToScript(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestToScriptFreeForm(t *testing.T) {
	if _, ok := prompt.ToScript("why did revenue dip in March?"); ok {
		t.Fatal("free-form questions must fall through to the model")
	}
}
