package eval

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/CTAG07/charpredict/pkg/ngram"
)

// trainingLines is a small repetitive corpus a model can learn quickly.
var trainingLines = []string{
	"the cat sat on the mat",
	"the dog sat on the log",
	"the cat ate the rat",
	"a dog and a cat",
	"the rat ran to the mat",
	"on the mat the cat sat",
}

// devData asks for the last character of each training line.
func devData() Dataset {
	d := Dataset{Name: "dev"}
	for _, line := range trainingLines {
		d.Inputs = append(d.Inputs, line[:len(line)-1])
		d.Answers = append(d.Answers, line[len(line)-1:])
	}
	return d
}

func sliceSource() SourceFunc {
	return func() (ngram.LineSource, error) {
		src := ngram.SliceSource(trainingLines)
		return &src, nil
	}
}

// fixedPredictor returns the same guesses for every input.
type fixedPredictor string

func (f fixedPredictor) PredictBatch(inputs []string, _ int) []string {
	out := make([]string, len(inputs))
	for i := range out {
		out[i] = string(f)
	}
	return out
}

// memoryRecorder keeps every recorded trial.
type memoryRecorder struct {
	mu     sync.Mutex
	trials []Trial
}

func (r *memoryRecorder) RecordTrial(_ context.Context, trial Trial) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trials = append(r.trials, trial)
	return nil
}

func newTrainedModel(t *testing.T) *ngram.Model {
	t.Helper()
	m, err := ngram.New(ngram.WithOrder(4), ngram.WithMinContextCount(1))
	if err != nil {
		t.Fatal(err)
	}
	if err := m.FitLines(context.Background(), trainingLines); err != nil {
		t.Fatal(err)
	}
	return m
}

func repeat(s string, n int) []string {
	return strings.Split(strings.Repeat(s+"\n", n-1)+s, "\n")
}
