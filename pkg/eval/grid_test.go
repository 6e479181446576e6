package eval

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/CTAG07/charpredict/pkg/ngram"
)

func TestDefaultGrid(t *testing.T) {
	g := DefaultGrid()
	if err := g.Validate(); err != nil {
		t.Fatalf("default grid is invalid: %v", err)
	}
	if got := g.Size(); got != 324 {
		t.Errorf("Size() = %d, want 324", got)
	}
	want := ngram.Limits{MinContextCount: 2, MaxContexts: 1000000, MaxCharsPerContext: 48}
	if got := g.trainingLimits(); got != want {
		t.Errorf("trainingLimits() = %+v, want %+v", got, want)
	}
}

func TestLoadGrid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "grid.yaml")
	doc := "ngram_order: [3, 4]\nkn_discount: [0.6]\nmax_contexts: [0, 100]\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	g, err := LoadGrid(path)
	if err != nil {
		t.Fatalf("LoadGrid() error = %v", err)
	}
	want := DefaultGrid()
	want.Orders = []int{3, 4}
	want.Discounts = []float64{0.6}
	want.MaxContexts = []int{0, 100}
	if !reflect.DeepEqual(g, want) {
		t.Errorf("LoadGrid() = %+v, want %+v", g, want)
	}
	if got := g.trainingLimits().MaxContexts; got != 0 {
		t.Errorf("uncapped axis value was not kept for training, got %d", got)
	}
}

func TestLoadGridErrors(t *testing.T) {
	dir := t.TempDir()
	testCases := []struct {
		name   string
		doc    string
		target error
	}{
		{name: "empty axis", doc: "laplace_alpha: []\n", target: ErrEmptyGrid},
		{name: "bad discount", doc: "kn_discount: [1.5]\n", target: ngram.ErrInvalidConfig},
		{name: "bad order", doc: "ngram_order: [0]\n", target: ngram.ErrInvalidConfig},
		{name: "bad chars", doc: "max_chars_per_context: 0\n", target: ngram.ErrInvalidConfig},
		{name: "not yaml", doc: "ngram_order: [3, \n", target: nil},
	}
	for i, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, "grid"+string(rune('a'+i))+".yaml")
			if err := os.WriteFile(path, []byte(tc.doc), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadGrid(path)
			if err == nil {
				t.Fatal("LoadGrid() succeeded")
			}
			if tc.target != nil && !errors.Is(err, tc.target) {
				t.Errorf("LoadGrid() error = %v, want %v", err, tc.target)
			}
		})
	}
}
