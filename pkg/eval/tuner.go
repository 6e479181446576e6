package eval

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/CTAG07/charpredict/pkg/ngram"
)

// SourceFunc opens a fresh pass over the training lines. The Tuner trains one
// model per n-gram order, so the lines are read once per order.
type SourceFunc func() (ngram.LineSource, error)

// Trial is the outcome of one grid combination.
type Trial struct {
	Config    ngram.Config `json:"config"`
	Contexts  int          `json:"contexts"`
	Dev       Result       `json:"dev"`
	Reference *Result      `json:"reference,omitempty"`
}

// Recorder receives every finished trial, in evaluation order.
type Recorder interface {
	RecordTrial(ctx context.Context, trial Trial) error
}

// Tuner runs a grid search over model hyperparameters.
type Tuner struct {
	grid      Grid
	k         int
	reference *Dataset
	recorder  Recorder
	logger    *slog.Logger
}

// TunerOption configures a Tuner.
type TunerOption func(*Tuner)

// WithK sets how many guesses are scored per example.
// Default: 3
func WithK(k int) TunerOption {
	return func(t *Tuner) {
		t.k = k
	}
}

// WithReference adds a second dataset that is scored for every trial but does
// not affect the ranking.
func WithReference(data Dataset) TunerOption {
	return func(t *Tuner) {
		t.reference = &data
	}
}

// WithRecorder sends every trial to r as soon as it finishes.
func WithRecorder(r Recorder) TunerOption {
	return func(t *Tuner) {
		t.recorder = r
	}
}

// NewTuner creates a Tuner for grid.
func NewTuner(grid Grid, opts ...TunerOption) (*Tuner, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	t := &Tuner{
		grid:   grid,
		k:      DefaultK,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.k < 1 {
		return nil, fmt.Errorf("k must be positive, got %d", t.k)
	}
	if t.reference != nil {
		if err := t.reference.Validate(); err != nil {
			return nil, fmt.Errorf("reference dataset: %w", err)
		}
	}
	return t, nil
}

// SetLogger sets the logger for the Tuner. By default, all logs are discarded.
func (t *Tuner) SetLogger(logger *slog.Logger) {
	if logger != nil {
		t.logger = logger
	}
}

// Run evaluates every grid combination on dev and returns the trials sorted
// by dev accuracy, best first. Equal accuracies keep grid order.
//
// One model is trained per n-gram order with the loosest caps on the grid.
// Each (min context count, max contexts) pair is derived from it by pruning,
// and each (discount, alpha) pair is a re-smoothed view of the pruned model,
// so no combination retrains.
func (t *Tuner) Run(ctx context.Context, open SourceFunc, dev Dataset) ([]Trial, error) {
	if err := dev.Validate(); err != nil {
		return nil, fmt.Errorf("dev dataset: %w", err)
	}

	total := t.grid.Size()
	trials := make([]Trial, 0, total)
	loose := t.grid.trainingLimits()
	started := time.Now()

	for _, order := range t.grid.Orders {
		base, err := t.train(ctx, open, order, loose)
		if err != nil {
			return nil, err
		}

		for _, mcc := range t.grid.MinContextCounts {
			for _, maxCtx := range t.grid.MaxContexts {
				pruned, err := base.Pruned(ngram.Limits{
					MinContextCount:    mcc,
					MaxContexts:        maxCtx,
					MaxCharsPerContext: t.grid.MaxCharsPerContext,
				})
				if err != nil {
					return nil, err
				}

				for _, d := range t.grid.Discounts {
					for _, a := range t.grid.Alphas {
						if err := ctx.Err(); err != nil {
							return nil, err
						}
						m, err := pruned.WithSmoothing(d, a)
						if err != nil {
							return nil, err
						}
						trial, err := t.evaluate(m, dev)
						if err != nil {
							return nil, err
						}
						if t.recorder != nil {
							if err := t.recorder.RecordTrial(ctx, trial); err != nil {
								return nil, fmt.Errorf("failed to record trial: %w", err)
							}
						}
						trials = append(trials, trial)

						done := len(trials)
						eta := time.Since(started) / time.Duration(done) * time.Duration(total-done)
						t.logger.InfoContext(ctx, "Tuning trial completed",
							slog.Int("trial", done),
							slog.Int("of", total),
							slog.Duration("eta", eta.Round(time.Second)),
							slog.Float64("dev_accuracy", trial.Dev.Accuracy),
							slog.Int("ngram_order", order),
							slog.Float64("kn_discount", d),
							slog.Float64("laplace_alpha", a),
							slog.Int("min_context_count", mcc),
							slog.Int("max_contexts", maxCtx),
						)
					}
				}
			}
		}
	}

	sort.SliceStable(trials, func(i, j int) bool {
		return trials[i].Dev.Accuracy > trials[j].Dev.Accuracy
	})
	return trials, nil
}

func (t *Tuner) train(ctx context.Context, open SourceFunc, order int, l ngram.Limits) (*ngram.Model, error) {
	src, err := open()
	if err != nil {
		return nil, fmt.Errorf("failed to open training data: %w", err)
	}
	if c, ok := src.(io.Closer); ok {
		defer func(c io.Closer) {
			_ = c.Close()
		}(c)
	}

	m, err := ngram.New(
		ngram.WithOrder(order),
		ngram.WithMinContextCount(l.MinContextCount),
		ngram.WithMaxContexts(l.MaxContexts),
		ngram.WithMaxCharsPerContext(l.MaxCharsPerContext),
	)
	if err != nil {
		return nil, err
	}
	m.SetLogger(t.logger)

	start := time.Now()
	if err := m.Fit(ctx, src); err != nil {
		return nil, fmt.Errorf("failed to train order %d model: %w", order, err)
	}
	t.logger.InfoContext(ctx, "Trained base model for tuning",
		slog.Int("ngram_order", order),
		slog.Duration("took", time.Since(start)),
		slog.Int("contexts", len(m.Contexts())),
	)
	return m, nil
}

func (t *Tuner) evaluate(m *ngram.Model, dev Dataset) (Trial, error) {
	cfg := m.Config()
	label := fmt.Sprintf("n=%d d=%g a=%g mcc=%d max=%d", cfg.Order, cfg.Discount, cfg.Alpha, cfg.MinContextCount, cfg.MaxContexts)

	trial := Trial{Config: cfg, Contexts: len(m.Contexts())}
	res, err := Evaluate(m, dev, t.k)
	if err != nil {
		return Trial{}, err
	}
	res.Label = label
	trial.Dev = res

	if t.reference != nil {
		ref, err := Evaluate(m, *t.reference, t.k)
		if err != nil {
			return Trial{}, err
		}
		ref.Label = label
		trial.Reference = &ref
	}
	return trial, nil
}
