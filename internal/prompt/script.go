package prompt

import (
	"fmt"
	"regexp"
	"strings"
)

var quoted = regexp.MustCompile(`'([^']+)'`)
var scatterPair = regexp.MustCompile(`'([^']+)' \(x\) vs '([^']+)' \(y\)`)
var monthlySum = regexp.MustCompile(`sum of '([^']+)' using the datetime column '([^']+)'`)

// ToScript converts recognized suggestion prompts into runnable scripts so
// the built-in analyses never need the LLM. Unrecognized prompts return
// ok=false and fall through to the model.
func ToScript(p string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(p))

	switch {
	case strings.HasPrefix(lower, "summarize the dataset"):
		return "result = df.summary()\n", true

	case strings.Contains(lower, "top 10 counts for the categorical column"):
		if m := quoted.FindStringSubmatch(p); m != nil {
			return fmt.Sprintf("result = df.value_counts(%q, 10)\n", m[1]), true
		}

	case strings.Contains(lower, "summary statistics") || strings.Contains(lower, "describe"):
		return "result = df.describe()\n", true

	case strings.Contains(lower, "histogram of the numeric column"):
		if m := quoted.FindStringSubmatch(p); m != nil {
			return fmt.Sprintf("plot.hist(df, %q, bins=30)\n", m[1]), true
		}

	case strings.Contains(lower, "scatter plot comparing"):
		if m := scatterPair.FindStringSubmatch(p); m != nil {
			return fmt.Sprintf("plot.scatter(df, %q, %q)\n", m[1], m[2]), true
		}

	case strings.HasPrefix(lower, "show the top 10 rows sorted by"):
		if m := quoted.FindStringSubmatch(p); m != nil {
			return fmt.Sprintf("result = df.sort_by(%q, ascending=False).head(10)\n", m[1]), true
		}

	case strings.Contains(lower, "monthly sum") && strings.Contains(lower, "using the datetime column"):
		if m := monthlySum.FindStringSubmatch(p); m != nil {
			return fmt.Sprintf("result = df.resample_month(%q, %q)\n", m[2], m[1]), true
		}

	case strings.Contains(lower, "counts per month using the datetime column"):
		if m := quoted.FindStringSubmatch(p); m != nil {
			return fmt.Sprintf("result = df.resample_month(%q)\n", m[1]), true
		}

	case strings.Contains(lower, "correlation matrix heatmap") || strings.Contains(lower, "correlation heatmap"):
		return "plot.heatmap(df)\n", true

	case strings.Contains(lower, "anomalies") && strings.Contains(lower, "z-score"):
		return "result = df.anomalies(3.0, 20)\n", true
	}
	return "", false
}
