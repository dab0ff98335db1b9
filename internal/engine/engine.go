// Package engine executes planned jobs as external processes under a bounded
// worker pool. One phase's jobs run concurrently and unordered; phase
// sequencing belongs to the caller.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vincentlogarzo/archilume/internal/model"
)

// ExecutionError describes one job's launch failure or non-zero exit. It is
// attached to that job's result and never aborts sibling jobs.
type ExecutionError struct {
	Output   string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("job for %s failed (exit %d): %v", e.Output, e.ExitCode, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// Summary reports aggregate phase counts to the caller.
type Summary struct {
	Succeeded int
	Failed    int
}

// Engine runs jobs with at most a configured number of in-flight processes.
type Engine struct {
	log *zap.Logger
}

func New(log *zap.Logger) *Engine {
	return &Engine{log: log}
}

// Run executes every job and returns one result per job, indexed by
// submission order. Completion order across jobs is unspecified. A failed
// job is recorded and counted; the remaining jobs still run.
func (e *Engine) Run(ctx context.Context, jobs []model.Job, workers int) ([]model.JobResult, Summary) {
	if workers < 1 {
		workers = 1
	}

	results := make([]model.JobResult, len(jobs))
	var g errgroup.Group
	g.SetLimit(workers)
	for i := range jobs {
		i := i
		g.Go(func() error {
			// Workers never return errors: failure isolation means a bad
			// job must not stop the pool.
			results[i] = e.runJob(ctx, jobs[i])
			return nil
		})
	}
	g.Wait()

	var s Summary
	for _, r := range results {
		if r.Success {
			s.Succeeded++
		} else {
			s.Failed++
		}
	}
	return results, s
}

func (e *Engine) runJob(ctx context.Context, job model.Job) model.JobResult {
	inv := job.Spec.Invocation()
	start := time.Now()

	pw := newProgressWriter(e.log, job.Output)
	cmd := exec.CommandContext(ctx, inv.Program, inv.Args...)
	cmd.Stderr = pw

	var outFile *os.File
	if inv.Stdout != "" {
		f, err := os.Create(inv.Stdout)
		if err != nil {
			return e.failed(job, -1, "", fmt.Errorf("failed to open output: %w", err), time.Since(start))
		}
		outFile = f
		cmd.Stdout = f
	} else {
		cmd.Stdout = io.Discard
	}

	e.log.Debug("starting job",
		zap.Stringer("phase", job.Phase),
		zap.String("command", inv.String()))

	err := cmd.Run()
	pw.flush()
	if outFile != nil {
		if closeErr := outFile.Close(); err == nil {
			err = closeErr
		}
	}
	dur := time.Since(start)

	if err != nil {
		// A partial stdout artifact would be mistaken for a finished one on
		// the next run.
		if outFile != nil {
			os.Remove(inv.Stdout)
		}
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return e.failed(job, code, pw.Tail(), err, dur)
	}

	e.log.Info("job completed",
		zap.Stringer("phase", job.Phase),
		zap.String("output", job.Output),
		zap.Duration("duration", dur))
	return model.JobResult{Job: job, Success: true, Duration: dur}
}

func (e *Engine) failed(job model.Job, code int, stderr string, err error, dur time.Duration) model.JobResult {
	execErr := &ExecutionError{Output: job.Output, ExitCode: code, Stderr: stderr, Err: err}
	e.log.Warn("job failed",
		zap.Stringer("phase", job.Phase),
		zap.String("output", job.Output),
		zap.Int("exit", code),
		zap.Duration("duration", dur),
		zap.String("stderr", stderr))
	return model.JobResult{Job: job, Success: false, ExitCode: code, Err: execErr, Duration: dur}
}
