package eval

import (
	"errors"
	"testing"
	"time"
)

func TestEvaluate(t *testing.T) {
	data := Dataset{
		Name:    "fixed",
		Inputs:  repeat("x", 5),
		Answers: []string{"a", "b", "z", "", "c"},
	}
	res, err := Evaluate(fixedPredictor("abc"), data, 3)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if res.Correct != 3 || res.Total != 5 {
		t.Errorf("Evaluate() = %d/%d, want 3/5", res.Correct, res.Total)
	}
	if res.Accuracy != 0.6 {
		t.Errorf("Accuracy = %v, want 0.6", res.Accuracy)
	}
	if res.Dataset != "fixed" {
		t.Errorf("Dataset = %q", res.Dataset)
	}
	if res.MsPerSample < 0 {
		t.Errorf("MsPerSample = %v", res.MsPerSample)
	}
}

func TestEvaluateModel(t *testing.T) {
	m := newTrainedModel(t)
	res, err := Evaluate(m, devData(), 3)
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != len(trainingLines) {
		t.Errorf("Total = %d, want %d", res.Total, len(trainingLines))
	}
	// Every dev example was seen in training.
	if res.Accuracy < 0.5 {
		t.Errorf("Accuracy = %v on training lines, want at least 0.5", res.Accuracy)
	}
}

func TestEvaluateErrors(t *testing.T) {
	mismatched := Dataset{Inputs: []string{"a", "b"}, Answers: []string{"c"}}
	if _, err := Evaluate(fixedPredictor("abc"), mismatched, 3); !errors.Is(err, ErrMismatchedData) {
		t.Errorf("Evaluate() error = %v, want ErrMismatchedData", err)
	}
	ok := Dataset{Inputs: []string{"a"}, Answers: []string{"b"}}
	if _, err := Evaluate(fixedPredictor("abc"), ok, 0); err == nil {
		t.Error("Evaluate() accepted k = 0")
	}

	empty, err := Evaluate(fixedPredictor("abc"), Dataset{}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if empty.Accuracy != 0 || empty.MsPerSample != 0 {
		t.Errorf("empty dataset result = %+v", empty)
	}
}

func TestCompare(t *testing.T) {
	testCases := []struct {
		name       string
		a, b       Result
		winner     string
		byAccuracy bool
	}{
		{
			name:       "a more accurate",
			a:          Result{Label: "a", Accuracy: 0.6, Elapsed: time.Second},
			b:          Result{Label: "b", Accuracy: 0.5, Elapsed: time.Millisecond},
			winner:     "a",
			byAccuracy: true,
		},
		{
			name:       "b more accurate",
			a:          Result{Label: "a", Accuracy: 0.4},
			b:          Result{Label: "b", Accuracy: 0.5},
			winner:     "b",
			byAccuracy: true,
		},
		{
			name:   "tie goes to the faster",
			a:      Result{Label: "a", Accuracy: 0.5, Elapsed: 2 * time.Second},
			b:      Result{Label: "b", Accuracy: 0.5, Elapsed: time.Second},
			winner: "b",
		},
		{
			name:   "full tie goes to a",
			a:      Result{Label: "a", Accuracy: 0.5, Elapsed: time.Second},
			b:      Result{Label: "b", Accuracy: 0.5, Elapsed: time.Second},
			winner: "a",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Compare(tc.a, tc.b)
			if got.Winner != tc.winner || got.ByAccuracy != tc.byAccuracy {
				t.Errorf("Compare() = %+v, want winner %q byAccuracy %v", got, tc.winner, tc.byAccuracy)
			}
		})
	}
}
