// Package pipeline runs the load, filter, save and notify stages over a wearable dataset.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"example.com/activityfilter/internal/csvio"
	"example.com/activityfilter/internal/domain"
	"example.com/activityfilter/internal/observability"
)

// Publisher forwards the retained rows somewhere beyond the output file.
type Publisher interface {
	Publish(ctx context.Context, runID string, ds domain.Dataset) (int, error)
}

// Result describes a completed run.
type Result struct {
	RunID        string
	InputPath    string
	OutputPath   string
	RowsRead     int
	RowsRetained int
	Published    int
	Risk         domain.RiskSummary
	Duration     time.Duration
}

// Option configures optional behaviour for the Pipeline.
type Option func(*Pipeline)

// WithLogger overrides the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithStdout sets the writer receiving the confirmation line.
func WithStdout(w io.Writer) Option {
	return func(p *Pipeline) {
		p.stdout = w
	}
}

// WithPublisher enables the publish stage.
func WithPublisher(pub Publisher) Option {
	return func(p *Pipeline) {
		p.publisher = pub
	}
}

// WithRunID fixes the run identifier instead of generating one.
func WithRunID(id string) Option {
	return func(p *Pipeline) {
		p.newRunID = func() string { return id }
	}
}

// Pipeline filters a CSV dataset down to its running rows.
type Pipeline struct {
	logger    *slog.Logger
	stdout    io.Writer
	publisher Publisher
	newRunID  func() string
	now       func() time.Time
}

// New constructs a Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		stdout:   os.Stdout,
		newRunID: uuid.NewString,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes every stage in order and stops at the first failure. The
// confirmation line is written only when all stages succeed.
func (p *Pipeline) Run(ctx context.Context, inputPath, outputPath string) (res Result, err error) {
	start := p.now()
	res = Result{
		RunID:      p.newRunID(),
		InputPath:  inputPath,
		OutputPath: outputPath,
	}
	log := p.logger.With("run_id", res.RunID)

	defer func() {
		res.Duration = p.now().Sub(start)
		outcome := observability.OutcomeSuccess
		if err != nil {
			outcome = domain.Kind(err)
		}
		stats := observability.RunStats{
			RowsRead:      res.RowsRead,
			RowsRetained:  res.RowsRetained,
			RowsPublished: res.Published,
			Duration:      res.Duration,
			FinishedAt:    p.now(),
			Outcome:       outcome,
		}
		if res.Risk.Samples > 0 {
			stats.AverageRisk = int(res.Risk.AverageLevel)
			stats.RiskCounts = make(map[int]int, len(res.Risk.Counts))
			for level, n := range res.Risk.Counts {
				stats.RiskCounts[int(level)] = n
			}
		}
		observability.RecordRun(stats)
	}()

	log.Debug("loading dataset", "path", inputPath)
	ds, err := csvio.Load(inputPath)
	if err != nil {
		return res, fmt.Errorf("load: %w", err)
	}
	res.RowsRead = ds.Len()
	log.Debug("dataset loaded", "rows", ds.Len(), "columns", len(ds.Columns))

	if err := ctx.Err(); err != nil {
		return res, err
	}

	filtered, err := domain.FilterRunning(ds)
	if err != nil {
		return res, fmt.Errorf("filter: %w", err)
	}
	res.RowsRetained = filtered.Len()
	log.Debug("dataset filtered", "retained", filtered.Len(), "dropped", ds.Len()-filtered.Len())

	res.Risk = domain.SummarizeRisk(domain.AssessDataset(filtered))
	log.Debug("risk assessed",
		"average_level", int(res.Risk.AverageLevel),
		"decision", res.Risk.MostFrequentDecision,
		"high", res.Risk.Counts[domain.RiskHigh],
	)

	if err := ctx.Err(); err != nil {
		return res, err
	}

	if err := csvio.Save(outputPath, filtered); err != nil {
		return res, fmt.Errorf("save: %w", err)
	}
	log.Debug("output written", "path", outputPath)

	if p.publisher != nil {
		n, err := p.publisher.Publish(ctx, res.RunID, filtered)
		if err != nil {
			return res, fmt.Errorf("publish: %w", err)
		}
		res.Published = n
		log.Debug("records published", "count", n)
	}

	if _, err := fmt.Fprintf(p.stdout, "Filtered dataset saved as %s\n", outputPath); err != nil {
		return res, fmt.Errorf("notify: %w", err)
	}
	return res, nil
}
