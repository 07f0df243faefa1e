// Package prompt holds the rule-based suggestion engine and the templates
// used to talk to the LLM. Everything here is a pure function of the column
// profile and the user's question.
package prompt

import (
	"fmt"
	"strings"

	"github.com/mrityunjay5004/personal-ai-data-analyst/internal/dataset"
	"github.com/mrityunjay5004/personal-ai-data-analyst/internal/utils"
)

const maxSuggestions = 8

// maxSchemaTokens bounds the schema report embedded in a prompt so wide
// datasets cannot blow the model's context window.
const maxSchemaTokens = 1500

// Suggestions returns ready-to-run analysis prompts for the dataset, driven
// by the column-type mix. No LLM is involved.
func Suggestions(profiles []dataset.ColumnProfile) []string {
	var numeric, datetime, categorical []string
	for _, p := range profiles {
		switch p.Kind {
		case dataset.KindNumeric:
			numeric = append(numeric, p.Name)
		case dataset.KindDatetime:
			datetime = append(datetime, p.Name)
		case dataset.KindCategorical:
			categorical = append(categorical, p.Name)
		}
	}

	var out []string
	out = append(out, "Summarize the dataset in 5 bullet points (rows, columns, missing values, numeric columns, top categorical).")
	if len(categorical) > 0 {
		out = append(out, fmt.Sprintf("Show the top 10 counts for the categorical column '%s'.", categorical[0]))
	}
	if len(numeric) > 0 {
		out = append(out, "Show summary statistics (count, mean, std, min, 25%, 50%, 75%, max) for numeric columns.")
		out = append(out, fmt.Sprintf("Create a histogram of the numeric column '%s'.", numeric[0]))
		if len(numeric) >= 2 {
			out = append(out, fmt.Sprintf("Create a scatter plot comparing '%s' (x) vs '%s' (y).", numeric[0], numeric[1]))
		}
		out = append(out, fmt.Sprintf("Show the top 10 rows sorted by '%s' descending.", numeric[0]))
	}
	if len(datetime) > 0 {
		if len(numeric) > 0 {
			out = append(out, fmt.Sprintf("Create a time series of monthly sum of '%s' using the datetime column '%s'.", numeric[0], datetime[0]))
		} else {
			out = append(out, fmt.Sprintf("Show counts per month using the datetime column '%s'.", datetime[0]))
		}
	}
	if len(numeric) >= 2 {
		out = append(out, "Show the correlation matrix heatmap for numeric columns.")
	}
	out = append(out, "Find rows that look like anomalies using z-score > 3 on numeric columns and show top 20.")

	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}

// Build composes the user prompt sent to the LLM: the schema report followed
// by the question. Deterministic: identical inputs produce identical text.
func Build(schemaReport, question string) string {
	var b strings.Builder
	b.WriteString("The user wants the following analysis on the loaded dataset:\n")
	b.WriteString(strings.TrimSpace(question))
	b.WriteString("\n\nDataset schema:\n")
	b.WriteString(utils.TruncateToTokenLimit(strings.TrimSpace(schemaReport), maxSchemaTokens))
	b.WriteString("\n\nReturn only code inside a single ``` code block.")
	return b.String()
}

// System is the fixed system prompt documenting the script API the model
// must target.
func System() string {
	return `You are a helpful data analyst. You MUST respond with a short Starlark script inside a single ` + "```" + ` code block. No explanations outside the block.

The dataset is bound as df. Available API:
  df.columns() -> list of column names
  df.num_rows() -> int
  df.column(name) -> list of cell values (floats for numeric columns)
  df.head(n=10) -> frame of the first n rows
  df.describe() -> frame of summary statistics for numeric columns
  df.value_counts(col, n=10) -> frame of the n most frequent values
  df.sort_by(col, ascending=False) -> frame of all rows sorted by col
  df.select(cols) -> frame of just the named columns, e.g. df.select(["a", "b"])
  df.resample_month(date_col, value_col="") -> frame of monthly sums (or row counts if value_col is empty)
  df.anomalies(threshold=3.0, limit=20) -> frame of rows with |z-score| above threshold
  df.corr() -> frame of the Pearson correlation matrix
  df.summary() -> text summary of the dataset
  frame.head(n) -> frame limited to the first n rows

Charts (each call produces the chart artifact shown to the user):
  plot.hist(df, col, bins=30)
  plot.scatter(df, x_col, y_col)
  plot.line(df, date_col, value_col)
  plot.heatmap(df)

Assign the value to show to a variable named result, or call one plot function. Do not use while loops, recursion, or any name not listed above.`
}
