package ngram

import (
	"errors"
	"fmt"
	"slices"
	"unicode/utf8"
)

// ErrInvalidInput is reported for a prefix that is not valid UTF-8 or a
// non-positive k.
var ErrInvalidInput = errors.New("invalid prediction input")

// Prediction is the result of scoring one prefix. On success Guesses holds
// exactly k characters, best first. On failure Err is set and Guesses is nil;
// callers substitute FallbackGuesses.
type Prediction struct {
	Guesses []rune
	Err     error
}

// String returns the guesses as a string.
func (p Prediction) String() string {
	return string(p.Guesses)
}

// Predict scores prefix and returns the k most likely next characters.
//
// Starting from the lowest-order distribution, every trailing context of the
// normalized prefix, shortest first, that is present in the table replaces
// the running scores s with
//
//	s'(c) = max(count(c) - D, 0) / total + lambda * s(c),  lambda = D * types / total
//
// where total and types are the context's summed count and number of
// distinct next characters. The final scores are ranked highest first (ties
// by ascending code point); if fewer than k characters were scored the
// fallback symbols and then spaces fill the rest.
func (m *Model) Predict(prefix string, k int) Prediction {
	if k < 1 {
		return Prediction{Err: fmt.Errorf("%w: k must be positive, got %d", ErrInvalidInput, k)}
	}
	if !utf8.ValidString(prefix) {
		return Prediction{Err: fmt.Errorf("%w: prefix is not valid UTF-8", ErrInvalidInput)}
	}

	seq := NormalizePrefix(prefix)

	// Running scores are kept as scale*base(c) + extra(c), so characters that
	// no context mentions never need to be touched.
	scale := 1.0
	var extra map[rune]float64

	end := len(seq)
	start := end
	for l := 1; l < m.config.Order && start > 0; l++ {
		_, size := utf8.DecodeLastRuneInString(seq[:start])
		start -= size

		counts, ok := m.contexts[seq[start:end]]
		if !ok || len(counts) == 0 {
			continue
		}
		total := counts.Total()
		if total <= 0 {
			continue
		}
		fTotal := float64(total)
		lambda := m.config.Discount * float64(len(counts)) / fTotal

		if extra == nil {
			extra = make(map[rune]float64, len(counts))
		}
		for r := range extra {
			extra[r] *= lambda
		}
		scale *= lambda
		for r, n := range counts {
			if isLineTerminator(r) {
				continue
			}
			extra[r] += max(float64(n)-m.config.Discount, 0) / fTotal
		}
	}

	ranked := make([]scoredChar, 0, len(extra)+k)
	for r, e := range extra {
		ranked = append(ranked, scoredChar{char: r, score: e + scale*m.baseScore[r]})
	}
	// base is already sorted, so the best untouched characters are its first
	// k entries not in extra.
	taken := 0
	for _, sc := range m.base {
		if taken == k {
			break
		}
		if _, touched := extra[sc.char]; touched {
			continue
		}
		ranked = append(ranked, scoredChar{char: sc.char, score: scale * sc.score})
		taken++
	}
	sortScored(ranked)

	guesses := make([]rune, 0, k)
	for _, sc := range ranked {
		if len(guesses) == k {
			break
		}
		guesses = append(guesses, sc.char)
	}
	return Prediction{Guesses: m.fill(guesses, k)}
}

// fill completes guesses to exactly k characters with fallback symbols not
// already present, then spaces.
func (m *Model) fill(guesses []rune, k int) []rune {
	for _, r := range m.fallback {
		if len(guesses) >= k {
			break
		}
		if isLineTerminator(r) || slices.Contains(guesses, r) {
			continue
		}
		guesses = append(guesses, r)
	}
	for len(guesses) < k {
		guesses = append(guesses, ' ')
	}
	return guesses[:k]
}

// FallbackGuesses returns k characters taken from the fallback list, padded
// with spaces. It is what PredictBatch emits for an input that cannot be
// scored.
func (m *Model) FallbackGuesses(k int) []rune {
	if k < 1 {
		return nil
	}
	return m.fill(make([]rune, 0, k), k)
}

// PredictTopK returns exactly k characters for prefix, best first. Inputs that
// cannot be scored yield FallbackGuesses.
func (m *Model) PredictTopK(prefix string, k int) []rune {
	p := m.Predict(prefix, k)
	if p.Err != nil {
		return m.FallbackGuesses(k)
	}
	return p.Guesses
}

// PredictBatch predicts k characters for each input and returns one string
// per input, in input order. An input that cannot be scored gets the
// fallback symbols; the other results are unaffected.
func (m *Model) PredictBatch(inputs []string, k int) []string {
	out := make([]string, len(inputs))
	for i, in := range inputs {
		p := m.Predict(in, k)
		if p.Err != nil {
			m.logger.Debug("Prediction fell back", "index", i, "error", p.Err)
			out[i] = string(m.FallbackGuesses(k))
			continue
		}
		out[i] = p.String()
	}
	return out
}
