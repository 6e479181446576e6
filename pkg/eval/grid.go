package eval

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/CTAG07/charpredict/pkg/ngram"
)

// ErrEmptyGrid is returned when a grid axis has no values.
var ErrEmptyGrid = errors.New("grid axis has no values")

// Grid lists the hyperparameter values tried by a Tuner. Every combination is
// evaluated.
type Grid struct {
	Orders             []int     `yaml:"ngram_order"`
	Discounts          []float64 `yaml:"kn_discount"`
	Alphas             []float64 `yaml:"laplace_alpha"`
	MinContextCounts   []int     `yaml:"min_context_count"`
	MaxContexts        []int     `yaml:"max_contexts"`
	MaxCharsPerContext int       `yaml:"max_chars_per_context"`
}

// DefaultGrid returns the grid searched when no grid file is given.
func DefaultGrid() Grid {
	return Grid{
		Orders:             []int{5, 6, 7, 8},
		Discounts:          []float64{0.5, 0.75, 0.9},
		Alphas:             []float64{0.01, 0.1, 1.0},
		MinContextCounts:   []int{2, 3, 5},
		MaxContexts:        []int{300000, 500000, 1000000},
		MaxCharsPerContext: 48,
	}
}

// LoadGrid reads a YAML grid from path. Axes the file leaves out keep their
// DefaultGrid values.
func LoadGrid(path string) (Grid, error) {
	grid := DefaultGrid()
	data, err := os.ReadFile(path)
	if err != nil {
		return Grid{}, fmt.Errorf("failed to read grid file: %w", err)
	}
	if err := yaml.Unmarshal(data, &grid); err != nil {
		return Grid{}, fmt.Errorf("failed to parse grid file %s: %w", path, err)
	}
	if err := grid.Validate(); err != nil {
		return Grid{}, err
	}
	return grid, nil
}

// Validate checks that every axis is non-empty and every combination is a
// valid model configuration.
func (g Grid) Validate() error {
	axes := map[string]int{
		"ngram_order":       len(g.Orders),
		"kn_discount":       len(g.Discounts),
		"laplace_alpha":     len(g.Alphas),
		"min_context_count": len(g.MinContextCounts),
		"max_contexts":      len(g.MaxContexts),
	}
	for name, n := range axes {
		if n == 0 {
			return fmt.Errorf("%w: %s", ErrEmptyGrid, name)
		}
	}
	for _, o := range g.Orders {
		for _, d := range g.Discounts {
			for _, a := range g.Alphas {
				cfg := ngram.Config{Order: o, Discount: d, Alpha: a, MaxCharsPerContext: g.MaxCharsPerContext}
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
		}
	}
	for _, mcc := range g.MinContextCounts {
		l := ngram.Limits{MinContextCount: mcc, MaxCharsPerContext: g.MaxCharsPerContext}
		if err := l.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Size returns the number of combinations in the grid.
func (g Grid) Size() int {
	return len(g.Orders) * len(g.Discounts) * len(g.Alphas) * len(g.MinContextCounts) * len(g.MaxContexts)
}

// trainingLimits returns the loosest caps on the grid, so that every
// combination can be reached by pruning one model per order.
func (g Grid) trainingLimits() ngram.Limits {
	l := ngram.Limits{
		MinContextCount:    g.MinContextCounts[0],
		MaxContexts:        g.MaxContexts[0],
		MaxCharsPerContext: g.MaxCharsPerContext,
	}
	for _, n := range g.MinContextCounts[1:] {
		l.MinContextCount = min(l.MinContextCount, n)
	}
	for _, n := range g.MaxContexts {
		if n <= 0 {
			l.MaxContexts = 0
			break
		}
		l.MaxContexts = max(l.MaxContexts, n)
	}
	return l
}
