package release

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/oshokin/client-release/internal/logger"
)

// Stage is one named step of the pipeline.
type Stage struct {
	Name string
	Run  func(ctx context.Context) error
}

// Status is the outcome of a stage.
type Status string

const (
	// StatusSucceeded marks a stage that completed.
	StatusSucceeded Status = "succeeded"
	// StatusFailed marks the stage that stopped the run.
	StatusFailed Status = "failed"
	// StatusSkipped marks stages after a failure.
	StatusSkipped Status = "skipped"
)

// Result records one stage execution.
type Result struct {
	Name     string
	Status   Status
	Duration time.Duration
	Err      error
}

// Report lists stage results in execution order.
type Report struct {
	Results []Result
}

// Pipeline runs stages strictly in order.
type Pipeline struct {
	stages []Stage
	now    func() time.Time
}

// NewPipeline creates a pipeline over stages.
func NewPipeline(stages ...Stage) *Pipeline {
	return &Pipeline{
		stages: stages,
		now:    time.Now,
	}
}

// Names returns the stage names in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, 0, len(p.stages))
	for _, stage := range p.stages {
		names = append(names, stage.Name)
	}

	return names
}

// Run executes every stage after the previous one finished. The first error
// stops the run; the remaining stages are reported as skipped.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{Results: make([]Result, 0, len(p.stages))}

	var runErr error

	for i, stage := range p.stages {
		if runErr != nil {
			report.Results = append(report.Results, Result{Name: stage.Name, Status: StatusSkipped})

			continue
		}

		stageCtx := logger.WithKV(ctx, "stage", stage.Name)

		logger.InfoKV(stageCtx, "Stage started", "step", fmt.Sprintf("%d/%d", i+1, len(p.stages)))

		started := p.now()

		err := ctx.Err()
		if err == nil {
			err = stage.Run(stageCtx)
		}

		result := Result{Name: stage.Name, Status: StatusSucceeded, Duration: p.now().Sub(started)}

		if err != nil {
			result.Status = StatusFailed
			result.Err = err
			runErr = fmt.Errorf("stage %s: %w", stage.Name, err)

			logger.ErrorKV(stageCtx, "Stage failed", "error", err, "duration", result.Duration)
		} else {
			logger.InfoKV(stageCtx, "Stage finished", "duration", result.Duration)
		}

		report.Results = append(report.Results, result)
	}

	return report, runErr
}

// Failed returns the failed result, if any.
func (r *Report) Failed() (Result, bool) {
	for _, result := range r.Results {
		if result.Status == StatusFailed {
			return result, true
		}
	}

	return Result{}, false
}

// Render writes the summary table to w.
func (r *Report) Render(w io.Writer) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"#", "Stage", "Status", "Duration"})

	var total time.Duration

	for i, result := range r.Results {
		duration := ""
		if result.Status != StatusSkipped {
			duration = result.Duration.Round(time.Millisecond).String()
		}

		total += result.Duration

		tw.AppendRow(table.Row{i + 1, result.Name, result.Status, duration})
	}

	tw.AppendFooter(table.Row{"", "", "total", total.Round(time.Millisecond).String()})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})

	tw.Render()
}
