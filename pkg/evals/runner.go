package evals

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/synthetic-lab/synbad/pkg/llm"
)

// Runner executes evals against a client
type Runner struct {
	Client llm.Client
	Model  string
	// Count is the number of attempts per eval; any failed attempt fails the eval
	Count int
	// Stream requests a streamed completion and assembles it with llm.Assemble
	Stream bool
	// ValidateShape checks each response against the message contract before
	// the eval's own test runs
	ValidateShape bool
	// Out receives the progress lines; nil discards them
	Out    io.Writer
	Logger *slog.Logger
}

// Report summarizes a run
type Report struct {
	Found    int
	Passed   int
	Failures []string
}

// OK reports whether every eval passed
func (r Report) OK() bool {
	return r.Passed == r.Found
}

// Summary renders the report the way it is printed at the end of a run
func (r Report) Summary() string {
	if r.OK() {
		return "All evals passed!"
	}
	return fmt.Sprintf("%d/%d evals passed. Failures:\n\n- %s", r.Passed, r.Found, strings.Join(r.Failures, "\n- "))
}

// Run executes each eval in order. It stops early only when ctx is done.
func (r *Runner) Run(ctx context.Context, evals []Eval) (Report, error) {
	out := r.Out
	if out == nil {
		out = io.Discard
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	count := r.Count
	if count < 1 {
		count = 1
	}

	var report Report
	for _, e := range evals {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Found++

		fmt.Fprintf(out, "Running %s...", e.Name)
		err := r.runEval(ctx, e, count, out, logger)
		if err != nil {
			fmt.Fprintf(out, " failed\n")
			logger.Error("eval failed", "eval", e.Name, "error", err)
			report.Failures = append(report.Failures, e.Name)
			continue
		}
		fmt.Fprintf(out, " passed\n")
		report.Passed++
	}
	return report, nil
}

func (r *Runner) runEval(ctx context.Context, e Eval, count int, out io.Writer, logger *slog.Logger) error {
	for i := 0; i < count; i++ {
		if count > 1 {
			fmt.Fprintf(out, " %d/%d", i+1, count)
		}

		start := time.Now()
		msg, finishReason, err := r.complete(ctx, e)
		if err != nil {
			return fmt.Errorf("attempt %d: %w", i+1, err)
		}
		logger.Debug("eval response",
			"eval", e.Name,
			"attempt", i+1,
			"finish_reason", finishReason,
			"duration", time.Since(start),
		)

		if r.ValidateShape {
			if err := msg.Validate(); err != nil {
				logResponse(logger, e.Name, msg)
				return fmt.Errorf("attempt %d: %w", i+1, err)
			}
		}
		if err := e.Test(*msg); err != nil {
			logResponse(logger, e.Name, msg)
			return fmt.Errorf("attempt %d: %w", i+1, err)
		}
	}
	return nil
}

// complete sends the eval's request and returns the assistant message
func (r *Runner) complete(ctx context.Context, e Eval) (*llm.AssembledMessage, string, error) {
	req := e.Request
	req.Model = r.Model
	req.Stream = r.Stream

	if r.Stream {
		events, err := r.Client.StreamChatCompletion(ctx, req)
		if err != nil {
			return nil, "", err
		}
		return llm.Assemble(ctx, events)
	}

	resp, err := r.Client.ChatCompletion(ctx, req)
	if err != nil {
		return nil, "", err
	}
	msg, ok := resp.FirstMessage()
	if !ok {
		return nil, "", fmt.Errorf("response has no choices")
	}
	return &msg, resp.Choices[0].FinishReason, nil
}

func logResponse(logger *slog.Logger, name string, msg *llm.AssembledMessage) {
	data, err := json.MarshalIndent(msg, "", "  ")
	if err != nil {
		logger.Error("encode response", "eval", name, "error", err)
		return
	}
	logger.Error("response", "eval", name, "message", string(data))
}
