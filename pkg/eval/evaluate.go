package eval

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultK is the number of guesses scored per example.
const DefaultK = 3

// accuracyEpsilon is the difference below which two accuracies are equal.
const accuracyEpsilon = 1e-12

// ErrMismatchedData is returned when inputs and answers differ in length.
var ErrMismatchedData = errors.New("inputs and answers differ in length")

// Predictor is anything that can predict k characters for a batch of inputs.
// *ngram.Model satisfies it.
type Predictor interface {
	PredictBatch(inputs []string, k int) []string
}

// Dataset is a named list of inputs with the expected next character of each.
type Dataset struct {
	Name    string
	Inputs  []string
	Answers []string
}

// Validate reports whether the dataset can be evaluated.
func (d Dataset) Validate() error {
	if len(d.Inputs) != len(d.Answers) {
		return fmt.Errorf("%w: %d inputs, %d answers", ErrMismatchedData, len(d.Inputs), len(d.Answers))
	}
	return nil
}

// Result is the outcome of one evaluation.
type Result struct {
	Label       string        `json:"label"`
	Dataset     string        `json:"dataset"`
	Correct     int           `json:"correct"`
	Total       int           `json:"total"`
	Accuracy    float64       `json:"accuracy"`
	Elapsed     time.Duration `json:"elapsed"`
	MsPerSample float64       `json:"ms_per_sample"`
}

// String formats the result on one line.
func (r Result) String() string {
	return fmt.Sprintf("acc %.4f (%d/%d) in %.4fs, %.4f ms/sample",
		r.Accuracy, r.Correct, r.Total, r.Elapsed.Seconds(), r.MsPerSample)
}

// Evaluate predicts k characters for every input of data and counts an
// example as correct when its answer appears among the guesses. An empty
// answer never matches. The timing covers prediction only.
func Evaluate(p Predictor, data Dataset, k int) (Result, error) {
	if err := data.Validate(); err != nil {
		return Result{}, err
	}
	if k < 1 {
		return Result{}, fmt.Errorf("k must be positive, got %d", k)
	}

	start := time.Now()
	preds := p.PredictBatch(data.Inputs, k)
	elapsed := time.Since(start)
	if len(preds) != len(data.Inputs) {
		return Result{}, fmt.Errorf("expected %d predictions but got %d", len(data.Inputs), len(preds))
	}

	res := Result{Dataset: data.Name, Total: len(data.Answers), Elapsed: elapsed}
	for i, answer := range data.Answers {
		if answer != "" && strings.Contains(preds[i], answer) {
			res.Correct++
		}
	}
	if res.Total > 0 {
		res.Accuracy = float64(res.Correct) / float64(res.Total)
		res.MsPerSample = elapsed.Seconds() * 1000 / float64(res.Total)
	}
	return res, nil
}

// Comparison names the better of two results.
type Comparison struct {
	Winner       string  `json:"winner"`
	ByAccuracy   bool    `json:"by_accuracy"`   // accuracies differed
	AccuracyDiff float64 `json:"accuracy_diff"` // a minus b
}

// Compare picks the more accurate result. Equal accuracies go to the faster
// one, and a full tie goes to a.
func Compare(a, b Result) Comparison {
	diff := a.Accuracy - b.Accuracy
	c := Comparison{AccuracyDiff: diff, ByAccuracy: diff > accuracyEpsilon || diff < -accuracyEpsilon}
	switch {
	case c.ByAccuracy && diff > 0, !c.ByAccuracy && a.Elapsed <= b.Elapsed:
		c.Winner = a.Label
	default:
		c.Winner = b.Label
	}
	return c
}
