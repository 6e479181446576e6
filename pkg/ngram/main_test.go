package ngram

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
)

// sampleCorpus is a small multilingual corpus used across tests.
var sampleCorpus = []string{
	"the cat sat on the mat",
	"the dog sat on the log",
	"the bat flew over the hat",
	"a quick brown fox jumps over the lazy dog",
	"le chat est sur le tapis",
	"der Hund schläft auf dem Sofa",
	"猫はマットの上に座った。",
	"el gato está en la alfombra",
	"the cat and the dog are friends",
	"the end of the story",
}

// newTrainedModel trains a model on lines and fails the test on error.
func newTrainedModel(t testing.TB, lines []string, opts ...Option) *Model {
	t.Helper()
	m, err := New(opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := m.FitLines(context.Background(), lines); err != nil {
		t.Fatalf("FitLines() error = %v", err)
	}
	return m
}

var (
	benchmarkLines []string
	benchLinesOnce sync.Once
)

// createBenchmarkLines builds a deterministic corpus large enough to exercise
// trimming.
func createBenchmarkLines() []string {
	benchLinesOnce.Do(func() {
		words := strings.Fields("alpha beta gamma delta epsilon zeta eta theta iota kappa lambda mu nu xi omicron pi rho sigma tau upsilon phi chi psi omega")
		for i := 0; i < 5000; i++ {
			var sb strings.Builder
			for j := 0; j < 12; j++ {
				if j > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(words[(i*7+j*13)%len(words)])
			}
			sb.WriteString(fmt.Sprintf(" %d.", i%97))
			benchmarkLines = append(benchmarkLines, sb.String())
		}
	})
	return benchmarkLines
}
