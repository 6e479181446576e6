package eval

import (
	"context"
	"errors"
	"testing"

	"github.com/CTAG07/charpredict/pkg/ngram"
)

func smallGrid() Grid {
	return Grid{
		Orders:             []int{3, 4},
		Discounts:          []float64{0.5, 0.9},
		Alphas:             []float64{0.1},
		MinContextCounts:   []int{1, 2},
		MaxContexts:        []int{5, 0},
		MaxCharsPerContext: 8,
	}
}

func TestTunerRun(t *testing.T) {
	rec := &memoryRecorder{}
	tuner, err := NewTuner(smallGrid(), WithRecorder(rec), WithReference(devData()))
	if err != nil {
		t.Fatalf("NewTuner() error = %v", err)
	}
	trials, err := tuner.Run(context.Background(), sliceSource(), devData())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(trials) != smallGrid().Size() {
		t.Fatalf("Run() returned %d trials, want %d", len(trials), smallGrid().Size())
	}
	if len(rec.trials) != len(trials) {
		t.Errorf("recorder saw %d trials, want %d", len(rec.trials), len(trials))
	}
	seen := make(map[ngram.Config]bool, len(trials))
	for i, trial := range trials {
		if i > 0 && trial.Dev.Accuracy > trials[i-1].Dev.Accuracy {
			t.Errorf("trial %d is more accurate than trial %d", i, i-1)
		}
		if trial.Reference == nil || trial.Reference.Total != len(trainingLines) {
			t.Errorf("trial %d has reference result %+v", i, trial.Reference)
		}
		if trial.Config.MaxContexts > 0 && trial.Contexts > trial.Config.MaxContexts {
			t.Errorf("trial %d kept %d contexts with a cap of %d", i, trial.Contexts, trial.Config.MaxContexts)
		}
		if seen[trial.Config] {
			t.Errorf("configuration %+v evaluated twice", trial.Config)
		}
		seen[trial.Config] = true
	}
}

func TestTunerMatchesDirectTraining(t *testing.T) {
	grid := Grid{
		Orders:             []int{4},
		Discounts:          []float64{0.75},
		Alphas:             []float64{1},
		MinContextCounts:   []int{1, 2},
		MaxContexts:        []int{0},
		MaxCharsPerContext: 8,
	}
	tuner, err := NewTuner(grid)
	if err != nil {
		t.Fatal(err)
	}
	trials, err := tuner.Run(context.Background(), sliceSource(), devData())
	if err != nil {
		t.Fatal(err)
	}
	for _, trial := range trials {
		m, err := ngram.New(ngram.WithConfig(trial.Config))
		if err != nil {
			t.Fatal(err)
		}
		if err := m.FitLines(context.Background(), trainingLines); err != nil {
			t.Fatal(err)
		}
		direct, err := Evaluate(m, devData(), DefaultK)
		if err != nil {
			t.Fatal(err)
		}
		if direct.Correct != trial.Dev.Correct {
			t.Errorf("config %+v: tuned %d correct, direct training %d", trial.Config, trial.Dev.Correct, direct.Correct)
		}
	}
}

func TestTunerErrors(t *testing.T) {
	if _, err := NewTuner(Grid{}); !errors.Is(err, ErrEmptyGrid) {
		t.Errorf("NewTuner(empty) error = %v, want ErrEmptyGrid", err)
	}
	if _, err := NewTuner(smallGrid(), WithK(0)); err == nil {
		t.Error("NewTuner() accepted k = 0")
	}

	tuner, err := NewTuner(smallGrid())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := tuner.Run(ctx, sliceSource(), devData()); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}

	boom := errors.New("no corpus")
	failing := func() (ngram.LineSource, error) { return nil, boom }
	if _, err := tuner.Run(context.Background(), failing, devData()); !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want %v", err, boom)
	}
}
