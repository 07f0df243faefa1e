package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrityunjay5004/personal-ai-data-analyst/internal/ai"
	"github.com/mrityunjay5004/personal-ai-data-analyst/internal/analysis"
	"github.com/mrityunjay5004/personal-ai-data-analyst/internal/dataset"
	"github.com/mrityunjay5004/personal-ai-data-analyst/internal/prompt"
	"github.com/mrityunjay5004/personal-ai-data-analyst/internal/runner"
)

// Asker is the LLM surface the pipeline needs; satisfied by *ai.Client and
// by test stubs.
type Asker interface {
	Ask(ctx context.Context, system, user string) (string, error)
}

// Stage names the step of the query pipeline at which a failure occurred.
type Stage string

const (
	StagePromptBuilt   Stage = "prompt_built"
	StageAwaitingLLM   Stage = "awaiting_llm"
	StageCodeExtracted Stage = "code_extracted"
	StageExecuting     Stage = "executing"
	StageRendered      Stage = "rendered"
)

// QueryError carries the stage that failed along with the cause. No stage is
// retried; a failure terminates the query.
type QueryError struct {
	Stage Stage
	Err   error
}

func (e *QueryError) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }
func (e *QueryError) Unwrap() error { return e.Err }

// Pipeline executes one user question against a dataset: deterministic
// script mapping first, LLM code generation as the fallback.
type Pipeline struct {
	LLM    Asker // nil when no API key is configured
	Runner *runner.Runner
}

// Answer runs the full query pipeline and returns the execution result.
func (p *Pipeline) Answer(ctx context.Context, ds *dataset.Dataset, question string) (*runner.Result, error) {
	if ds == nil {
		return nil, &QueryError{Stage: StagePromptBuilt, Err: errors.New("no dataset loaded; upload a file first")}
	}

	code, ok := prompt.ToScript(question)
	if !ok {
		if p.LLM == nil {
			return nil, &QueryError{Stage: StagePromptBuilt, Err: errors.New(
				"this prompt cannot be answered without the LLM; configure an API key or pick a suggested analysis")}
		}
		built := prompt.Build(analysis.Report(ds), question)

		raw, err := p.LLM.Ask(ctx, prompt.System(), built)
		if err != nil {
			return nil, &QueryError{Stage: StageAwaitingLLM, Err: err}
		}
		code, ok = ai.ExtractCode(raw)
		if !ok {
			return nil, &QueryError{Stage: StageCodeExtracted, Err: fmt.Errorf("model did not return a code block; raw output: %.500s", raw)}
		}
	}

	res, err := p.Runner.Run(ctx, code, ds)
	if err != nil {
		return nil, &QueryError{Stage: StageExecuting, Err: err}
	}
	return res, nil
}
