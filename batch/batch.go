// Package batch compares many baseline/candidate pairs concurrently.
package batch

import (
	"context"
	"log/slog"
	"runtime"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/calumari/jdelta"
)

// SpanName is the name of the span recorded for each comparison.
const SpanName = "jdelta.compare"

// Pair is one comparison to run.
type Pair struct {
	ID        string
	Baseline  jdelta.Value
	Candidate jdelta.Value
}

// Result is the outcome of comparing one Pair. Exactly one of Report and Err
// is set.
type Result struct {
	ID     string
	Report *jdelta.Report
	Err    error
}

// Runner runs comparisons on a bounded pool of goroutines.
type Runner struct {
	workers     int
	logger      *slog.Logger
	metrics     *Metrics
	tracer      trace.Tracer
	compareOpts []jdelta.Option
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers sets the number of concurrent comparisons. Values < 1 are
// ignored.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithLogger sets the logger for per-pair failures and debug output.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithMetrics records every comparison in m.
func WithMetrics(m *Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithTracer sets the tracer used for per-pair spans.
func WithTracer(t trace.Tracer) Option {
	return func(r *Runner) { r.tracer = t }
}

// WithCompareOptions sets the options passed to jdelta.Build for every pair.
func WithCompareOptions(opts ...jdelta.Option) Option {
	return func(r *Runner) { r.compareOpts = append(r.compareOpts, opts...) }
}

// New returns a Runner. By default it uses GOMAXPROCS workers, slog.Default,
// the global tracer provider and no metrics.
func New(opts ...Option) *Runner {
	r := &Runner{
		workers: runtime.GOMAXPROCS(0),
		logger:  slog.Default(),
		tracer:  otel.Tracer("github.com/calumari/jdelta/batch"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run compares every pair and returns the results in input order. A failing
// comparison is recorded in its Result and does not stop the others. Run
// returns an error only when ctx is cancelled before every pair was
// compared; those pairs carry the context error.
func (r *Runner) Run(ctx context.Context, pairs []Pair) ([]Result, error) {
	results := make([]Result, len(pairs))
	done := make([]bool, len(pairs))

	var g errgroup.Group
	g.SetLimit(r.workers)
	for i, p := range pairs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			results[i] = r.compare(ctx, p)
			done[i] = true
			return nil
		})
	}
	_ = g.Wait()

	if !slices.Contains(done, false) {
		return results, nil
	}
	err := ctx.Err()
	skipped := 0
	for i := range results {
		if !done[i] {
			results[i] = Result{ID: pairs[i].ID, Err: err}
			skipped++
		}
	}
	r.logger.WarnContext(ctx, "batch cancelled",
		slog.Int("pairs", len(pairs)),
		slog.Int("skipped", skipped),
		slog.Any("error", err),
	)
	return results, err
}

func (r *Runner) compare(ctx context.Context, p Pair) Result {
	ctx, span := r.tracer.Start(ctx, SpanName, trace.WithAttributes(
		attribute.String("jdelta.pair.id", p.ID),
	))
	defer span.End()

	start := time.Now()
	rep, err := jdelta.Build(p.Baseline, p.Candidate, r.compareOpts...)
	elapsed := time.Since(start)

	outcome := outcomeOf(err)
	r.metrics.observe(outcome, rep, elapsed)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		r.logger.WarnContext(ctx, "comparison failed",
			slog.String("id", p.ID),
			slog.String("outcome", outcome),
			slog.Any("error", err),
		)
		return Result{ID: p.ID, Err: err}
	}

	span.SetAttributes(attribute.Float64("jdelta.score", rep.Score))
	span.SetStatus(codes.Ok, "")
	r.logger.DebugContext(ctx, "comparison complete",
		slog.String("id", p.ID),
		slog.Float64("score", rep.Score),
		slog.Duration("elapsed", elapsed),
	)
	return Result{ID: p.ID, Report: rep}
}

// Summary aggregates the results of a batch.
type Summary struct {
	Total  int
	Failed int
	// Below counts successful comparisons scoring under the threshold passed
	// to Summarize.
	Below int
	// Mean is the mean score of successful comparisons, or 0 when there are
	// none.
	Mean float64
	Min  float64
}

// Summarize computes a Summary over results, counting scores below
// threshold.
func Summarize(results []Result, threshold float64) Summary {
	s := Summary{Total: len(results), Min: 1}
	var sum float64
	ok := 0
	for _, res := range results {
		if res.Err != nil || res.Report == nil {
			s.Failed++
			continue
		}
		ok++
		sum += res.Report.Score
		s.Min = min(s.Min, res.Report.Score)
		if res.Report.Score < threshold {
			s.Below++
		}
	}
	if ok == 0 {
		s.Min = 0
		return s
	}
	s.Mean = sum / float64(ok)
	return s
}
