package batch

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/harunnryd/studioport/internal/concurrency"
	"github.com/harunnryd/studioport/internal/convert"
	spErrors "github.com/harunnryd/studioport/internal/errors"
	"github.com/harunnryd/studioport/internal/logger"
	"github.com/harunnryd/studioport/internal/output"
	"github.com/harunnryd/studioport/internal/render"
)

// Outcome is the result of one job. Err is nil on success.
type Outcome struct {
	Job    string
	Result *convert.Result
	Paths  []string
	Err    error
}

func (o Outcome) Status() string {
	switch {
	case o.Err == nil:
		return render.JobStatusOK
	case errors.Is(o.Err, spErrors.ErrEmptyResult):
		return render.JobStatusEmpty
	default:
		return render.JobStatusFail
	}
}

type Runner struct {
	params      convert.Params
	factory     *render.FormatterFactory
	writer      *output.Writer
	concurrency int
	opts        []convert.Option
}

func NewRunner(params convert.Params, factory *render.FormatterFactory, writer *output.Writer, concurrency int, opts ...convert.Option) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Runner{
		params:      params,
		factory:     factory,
		writer:      writer,
		concurrency: concurrency,
		opts:        opts,
	}
}

// Run converts every job with at most concurrency jobs in flight. A failing
// job is recorded in its Outcome and does not stop the others; the returned
// error is only set when ctx is cancelled.
func (r *Runner) Run(ctx context.Context, m *Manifest) ([]Outcome, error) {
	outcomes := make([]Outcome, len(m.Jobs))
	base := m.Generation.Apply(r.params)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, job := range m.Jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			jobCtx := logger.WithJob(gctx, job.Name)
			err := concurrency.SafeCall("job "+job.Name, func() error {
				outcomes[i] = r.runJob(jobCtx, job, job.Generation.Apply(base))
				return nil
			})
			if err != nil {
				outcomes[i] = Outcome{Job: job.Name, Err: err}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return outcomes, err
	}
	if err := ctx.Err(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

func (r *Runner) runJob(ctx context.Context, job Job, params convert.Params) Outcome {
	log := logger.From(ctx)
	outcome := Outcome{Job: job.Name}

	toolsJSON, err := os.ReadFile(job.Tools)
	if err != nil {
		outcome.Err = fmt.Errorf("read tools: %w", err)
		return outcome
	}
	transcriptJSON, err := os.ReadFile(job.Transcript)
	if err != nil {
		outcome.Err = fmt.Errorf("read transcript: %w", err)
		return outcome
	}

	res, err := convert.ConvertJSON(toolsJSON, transcriptJSON, params, r.opts...)
	if err != nil {
		log.Warn("Job conversion failed", "category", spErrors.Category(err), "error", err)
		outcome.Err = err
		return outcome
	}
	outcome.Result = res

	artifacts, err := output.Build(r.factory, res)
	if err != nil {
		outcome.Err = err
		return outcome
	}

	if r.writer != nil {
		paths, err := r.writer.Write(job.Name, artifacts)
		outcome.Paths = paths
		if err != nil {
			outcome.Err = err
			return outcome
		}
	}

	log.Info("Job converted", "messages", res.MessageCount, "tools", res.ToolCount)
	return outcome
}

// Rows maps outcomes to summary table rows.
func Rows(outcomes []Outcome) []render.JobRow {
	rows := make([]render.JobRow, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Job == "" && o.Err == nil && o.Result == nil {
			continue
		}
		row := render.JobRow{Name: o.Job, Status: o.Status()}
		if o.Result != nil {
			row.Messages = o.Result.MessageCount
			row.Tools = o.Result.ToolCount
		}
		if o.Err != nil {
			row.Detail = o.Err.Error()
		} else if len(o.Paths) > 0 {
			row.Detail = o.Paths[0]
		}
		rows = append(rows, row)
	}
	return rows
}

// Failed counts outcomes that are neither successful nor empty.
func Failed(outcomes []Outcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Status() == render.JobStatusFail && o.Job != "" {
			n++
		}
	}
	return n
}
