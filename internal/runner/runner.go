// Package runner executes analysis scripts against a loaded dataset inside a
// Starlark interpreter.
//
// Trust boundary: scripts come from an LLM and are untrusted. Starlark has
// no filesystem, network, process or import capability; the only names a
// script can reach are the predeclared `df` dataset value, the `plot`
// module, and Starlark's own builtins. A wall-clock timeout cancels the
// interpreter thread, so a runaway script returns an error instead of
// hanging the host.
package runner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/mrityunjay5004/personal-ai-data-analyst/internal/dataset"
)

// DefaultTimeout bounds a single script execution.
const DefaultTimeout = 10 * time.Second

// ResultKind discriminates what a script produced.
type ResultKind string

const (
	KindText  ResultKind = "text"
	KindTable ResultKind = "table"
	KindChart ResultKind = "chart"
)

// Result is the captured outcome of one script execution: a chart artifact,
// a tabular value, or text output.
type Result struct {
	Kind  ResultKind
	Text  string
	Table *dataset.Table
	PNG   []byte
}

// ExecError reports a script that failed, timed out, or referenced a
// disallowed capability.
type ExecError struct {
	Err error
}

func (e *ExecError) Error() string { return fmt.Sprintf("execution error: %v", e.Err) }
func (e *ExecError) Unwrap() error { return e.Err }

// Runner executes scripts with a fixed allow-list and timeout.
type Runner struct {
	Timeout time.Duration
}

// New returns a Runner with the given wall-clock timeout per execution.
func New(timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{Timeout: timeout}
}

// Recursion stays off: the interpreter then rejects recursive calls with an
// EvalError instead of letting a runaway script overflow the Go stack.
// While loops remain available and are bounded by the wall-clock timeout.
var fileOpts = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
}

// Run executes code with the dataset bound as `df`. The returned error is
// always an *ExecError when the script itself is at fault.
func (r *Runner) Run(ctx context.Context, code string, ds *dataset.Dataset) (*Result, error) {
	state := &runState{}
	predeclared := starlark.StringDict{
		"df":   &dfValue{ds: ds},
		"plot": plotModule(state),
	}

	var printed strings.Builder
	thread := &starlark.Thread{
		Name: "analysis",
		Print: func(_ *starlark.Thread, msg string) {
			printed.WriteString(msg)
			printed.WriteByte('\n')
		},
	}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			thread.Cancel("wall-clock timeout exceeded")
		case <-done:
		}
	}()
	globals, err := starlark.ExecFileOptions(fileOpts, thread, "analysis.star", code, predeclared)
	close(done)
	if err != nil {
		if evalErr, ok := err.(*starlark.EvalError); ok {
			return nil, &ExecError{Err: fmt.Errorf("%s", evalErr.Msg)}
		}
		return nil, &ExecError{Err: err}
	}

	// Capture precedence: chart, then the result global, then printed text.
	if state.png != nil {
		return &Result{Kind: KindChart, PNG: state.png}, nil
	}
	if v, ok := globals["result"]; ok && v != starlark.None {
		switch rv := v.(type) {
		case *frameValue:
			return &Result{Kind: KindTable, Table: rv.t}, nil
		case starlark.String:
			return &Result{Kind: KindText, Text: rv.GoString()}, nil
		default:
			return &Result{Kind: KindText, Text: rv.String()}, nil
		}
	}
	if out := strings.TrimSpace(printed.String()); out != "" {
		return &Result{Kind: KindText, Text: out}, nil
	}
	return &Result{Kind: KindText, Text: "Execution finished. No result produced."}, nil
}

// runState collects side effects (the chart artifact) of one execution.
type runState struct {
	png []byte
}
