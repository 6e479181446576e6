package corpus

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"unicode/utf8"
)

const (
	// DevInputFile and DevAnswerFile are the names written by DevSet.Write.
	DevInputFile  = "dev_input.txt"
	DevAnswerFile = "dev_answer.txt"
)

// ErrEmptyDevSet is returned by BuildDevSet when no file had a usable line.
var ErrEmptyDevSet = errors.New("no usable lines for a dev set")

// DevSetOptions controls dev set sampling.
type DevSetOptions struct {
	PerFile int    // examples sampled from each file
	MinLen  int    // minimum line length in characters
	Seed    uint64 // sampling and shuffling seed
}

// DefaultDevSetOptions returns 200 examples per file of at least two
// characters, seeded with 42.
func DefaultDevSetOptions() DevSetOptions {
	return DevSetOptions{PerFile: 200, MinLen: 2, Seed: 42}
}

// DevFileStats records how many lines were drawn from one file.
type DevFileStats struct {
	Path      string `json:"path"`
	Taken     int    `json:"taken"`
	Available int    `json:"available"`
}

// DevSet is a set of (prefix, next character) examples.
type DevSet struct {
	Inputs  []string
	Answers []string
	Files   []DevFileStats
}

// Len returns the number of examples.
func (d *DevSet) Len() int {
	return len(d.Inputs)
}

// BuildDevSet samples up to opts.PerFile lines of at least opts.MinLen
// characters from each file, splits every line into its prefix and final
// character, and shuffles the examples. The same files and options always
// give the same set. Unreadable files are skipped.
func BuildDevSet(files []string, opts DevSetOptions, logger *slog.Logger) (*DevSet, error) {
	if opts.PerFile < 1 {
		return nil, fmt.Errorf("per-file sample size must be positive, got %d", opts.PerFile)
	}
	minLen := max(opts.MinLen, 1)
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed))

	type example struct{ input, answer string }
	var (
		examples []example
		stats    []DevFileStats
	)
	for _, path := range files {
		lines, err := ReadLines(path)
		if err != nil {
			if logger != nil {
				logger.Warn("Skipping unreadable dev set file", slog.String("path", path), slog.String("error", err.Error()))
			}
			continue
		}
		var valid []string
		for _, line := range lines {
			if utf8.RuneCountInString(line) >= minLen {
				valid = append(valid, line)
			}
		}
		if len(valid) == 0 {
			continue
		}

		n := min(opts.PerFile, len(valid))
		for _, idx := range rng.Perm(len(valid))[:n] {
			line := valid[idx]
			_, size := utf8.DecodeLastRuneInString(line)
			cut := len(line) - size
			examples = append(examples, example{input: line[:cut], answer: line[cut:]})
		}
		stats = append(stats, DevFileStats{Path: path, Taken: n, Available: len(valid)})
	}
	if len(examples) == 0 {
		return nil, ErrEmptyDevSet
	}

	rng.Shuffle(len(examples), func(i, j int) {
		examples[i], examples[j] = examples[j], examples[i]
	})

	set := &DevSet{
		Inputs:  make([]string, len(examples)),
		Answers: make([]string, len(examples)),
		Files:   stats,
	}
	for i, ex := range examples {
		set.Inputs[i] = ex.input
		set.Answers[i] = ex.answer
	}
	return set, nil
}

// Write stores the set as DevInputFile and DevAnswerFile in dir and returns
// their paths.
func (d *DevSet) Write(dir string) (inputPath, answerPath string, err error) {
	inputPath = filepath.Join(dir, DevInputFile)
	answerPath = filepath.Join(dir, DevAnswerFile)
	if err = WriteLines(inputPath, d.Inputs); err != nil {
		return "", "", err
	}
	if err = WriteLines(answerPath, d.Answers); err != nil {
		return "", "", err
	}
	return inputPath, answerPath, nil
}

// ReadDevSet reads an input file and its answer file. They must have the same
// number of lines.
func ReadDevSet(inputPath, answerPath string) (*DevSet, error) {
	inputs, err := ReadLines(inputPath)
	if err != nil {
		return nil, err
	}
	answers, err := ReadLines(answerPath)
	if err != nil {
		return nil, err
	}
	if len(inputs) != len(answers) {
		return nil, fmt.Errorf("mismatched input/answer size: %d vs %d", len(inputs), len(answers))
	}
	return &DevSet{Inputs: inputs, Answers: answers}, nil
}
