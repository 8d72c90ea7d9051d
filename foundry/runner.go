// Copyright (c) Microsoft. All rights reserved.

package foundry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/contoso/pizzabot/tools"
)

// RunOption configures a single [Client.RunAndWait] call.
type RunOption func(*runConfig)

type runConfig struct {
	tools         []tools.Tool
	pollInterval  time.Duration
	timeout       time.Duration
	maxToolErrors int
}

// WithTools registers local tools the run may call. Tool calls for
// unregistered names produce an error output instead of aborting the run.
func WithTools(ts ...tools.Tool) RunOption {
	return func(c *runConfig) { c.tools = append(c.tools, ts...) }
}

// WithPollInterval sets how often the run status is polled. Default: 500ms.
func WithPollInterval(d time.Duration) RunOption {
	return func(c *runConfig) { c.pollInterval = d }
}

// WithRunTimeout bounds the total wait for a run. Default: 2 minutes.
func WithRunTimeout(d time.Duration) RunOption {
	return func(c *runConfig) { c.timeout = d }
}

// WithMaxToolErrors sets the consecutive tool error cap. Default: 3.
func WithMaxToolErrors(n int) RunOption {
	return func(c *runConfig) { c.maxToolErrors = n }
}

// RunAndWait starts a run and polls it to completion, resolving requested
// tool calls against the registered local tools along the way.
//
// A failed, expired, or cancelled run returns a wrapped [ErrRun] sentinel
// with the service's failure detail when available.
func (c *Client) RunAndWait(ctx context.Context, threadID, agentID string, opts ...RunOption) (*Run, error) {
	cfg := &runConfig{
		pollInterval:  500 * time.Millisecond,
		timeout:       2 * time.Minute,
		maxToolErrors: 3,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	toolMap := make(map[string]tools.Tool, len(cfg.tools))
	for _, t := range cfg.tools {
		toolMap[t.Name()] = t
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	run, err := c.CreateRun(ctx, threadID, agentID)
	if err != nil {
		return nil, err
	}

	consecutiveErrors := 0

	for {
		switch {
		case run.Status == RunStatusRequiresAction:
			run, consecutiveErrors, err = c.resolveToolCalls(ctx, run, toolMap, consecutiveErrors, cfg.maxToolErrors)
			if err != nil {
				return nil, err
			}
			continue

		case run.Status.Terminal():
			return finishRun(run)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: waiting for run %s: %v", ErrRun, run.ID, ctx.Err())
		case <-time.After(cfg.pollInterval):
		}

		run, err = c.GetRun(ctx, threadID, run.ID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: waiting for run: %v", ErrRun, ctx.Err())
			}
			return nil, err
		}
	}
}

// resolveToolCalls invokes the requested local tools and submits their outputs.
func (c *Client) resolveToolCalls(ctx context.Context, run *Run, toolMap map[string]tools.Tool, consecutiveErrors, maxErrors int) (*Run, int, error) {
	if run.RequiredAction == nil || run.RequiredAction.SubmitToolOutputs == nil {
		return nil, consecutiveErrors, fmt.Errorf("%w: run %s requires action without tool calls", ErrInvalidResponse, run.ID)
	}

	calls := run.RequiredAction.SubmitToolOutputs.ToolCalls
	outputs := make([]ToolOutput, 0, len(calls))

	for _, call := range calls {
		tool, ok := toolMap[call.Function.Name]
		if !ok {
			consecutiveErrors++
			slog.WarnContext(ctx, "unknown tool called",
				"tool", call.Function.Name,
				"run_id", run.ID,
				"consecutive_errors", consecutiveErrors,
			)
			if consecutiveErrors >= maxErrors {
				return nil, consecutiveErrors, fmt.Errorf("%w: max consecutive tool errors reached (%d)", tools.ErrToolExecution, consecutiveErrors)
			}
			outputs = append(outputs, ToolOutput{ToolCallID: call.ID, Output: "error: unknown tool"})
			continue
		}

		result, err := tool.Invoke(ctx, json.RawMessage(call.Function.Arguments))
		if err != nil {
			consecutiveErrors++
			slog.WarnContext(ctx, "tool invocation error",
				"tool", call.Function.Name,
				"error", err,
				"consecutive_errors", consecutiveErrors,
			)
			if consecutiveErrors >= maxErrors {
				return nil, consecutiveErrors, fmt.Errorf("%w: max consecutive tool errors reached (%d)", tools.ErrToolExecution, consecutiveErrors)
			}
			outputs = append(outputs, ToolOutput{ToolCallID: call.ID, Output: "error invoking tool"})
			continue
		}

		consecutiveErrors = 0
		out, err := marshalOutput(result)
		if err != nil {
			return nil, consecutiveErrors, fmt.Errorf("%w: marshal output of %q: %v", tools.ErrToolExecution, call.Function.Name, err)
		}
		slog.DebugContext(ctx, "tool call resolved", "tool", call.Function.Name, "run_id", run.ID)
		outputs = append(outputs, ToolOutput{ToolCallID: call.ID, Output: out})
	}

	next, err := c.SubmitToolOutputs(ctx, run.ThreadID, run.ID, outputs)
	if err != nil {
		return nil, consecutiveErrors, err
	}
	return next, consecutiveErrors, nil
}

// finishRun maps a terminal run to its result or sentinel error.
func finishRun(run *Run) (*Run, error) {
	switch run.Status {
	case RunStatusCompleted:
		return run, nil
	case RunStatusFailed:
		if run.LastError != nil {
			return nil, fmt.Errorf("%w: %s: %s", ErrRunFailed, run.LastError.Code, run.LastError.Message)
		}
		return nil, fmt.Errorf("%w: run %s", ErrRunFailed, run.ID)
	case RunStatusExpired:
		return nil, fmt.Errorf("%w: run %s", ErrRunExpired, run.ID)
	case RunStatusCancelled:
		return nil, fmt.Errorf("%w: run %s", ErrRunCancelled, run.ID)
	default:
		return nil, fmt.Errorf("%w: unexpected terminal status %q", ErrRun, run.Status)
	}
}

// marshalOutput renders a tool result as the string the service expects.
func marshalOutput(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
