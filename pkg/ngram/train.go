package ngram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

var (
	// ErrNoTrainingData is returned by Fit when the lines held no countable characters.
	ErrNoTrainingData = errors.New("no usable training data")
	// ErrAlreadyTrained is returned by Fit on a model that already holds counts.
	ErrAlreadyTrained = errors.New("model is already trained")
)

// LineSource supplies raw training lines one at a time.
type LineSource interface {
	// Next returns the next line. It returns io.EOF once the source is
	// exhausted; any other error aborts training.
	Next() (string, error)
}

// SliceSource is a LineSource over an in-memory slice of lines.
type SliceSource []string

// Next implements LineSource.
func (s *SliceSource) Next() (string, error) {
	if len(*s) == 0 {
		return "", io.EOF
	}
	line := (*s)[0]
	*s = (*s)[1:]
	return line, nil
}

// FitLines trains the model on an in-memory slice of lines.
func (m *Model) FitLines(ctx context.Context, lines []string) error {
	src := SliceSource(lines)
	return m.Fit(ctx, &src)
}

// Fit trains the model with a single pass over the lines of src. Each line
// is normalized, and for every character that is not a line terminator Fit
// counts the character itself, every trailing context of 1 to Order-1
// characters before it, and the (previous, next) pair used for continuation
// counts. The context table is then trimmed to the configured limits and the
// fallback list refreshed.
//
// Fit returns ErrNoTrainingData if no character was counted. After any
// error the model must be discarded.
func (m *Model) Fit(ctx context.Context, src LineSource) error {
	// checkEvery is how many lines are processed between context checks.
	const checkEvery = 1024

	if m.trained {
		return ErrAlreadyTrained
	}

	maxContext := m.config.Order - 1
	seenPairs := make(map[[2]rune]struct{})
	// offsets[i] is the byte offset of the i-th character of the current line.
	offsets := make([]int, 0, 256)

	var lineCount, tokenCount int64
	for {
		raw, err := src.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("reading training line %d: %w", lineCount+1, err)
		}
		lineCount++
		if lineCount%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		line := Normalize(raw)
		offsets = offsets[:0]
		var prev rune
		for pos, next := range line {
			idx := len(offsets)
			offsets = append(offsets, pos)
			if !isLineTerminator(next) {
				m.unigram[next]++
				tokenCount++

				for l := 1; l <= min(maxContext, idx); l++ {
					m.contexts.Add(line[offsets[idx-l]:pos], next)
				}

				if idx > 0 && !isLineTerminator(prev) {
					pair := [2]rune{prev, next}
					if _, ok := seenPairs[pair]; !ok {
						seenPairs[pair] = struct{}{}
						m.continuation[next]++
					}
				}
			}
			prev = next
		}
	}

	if tokenCount == 0 {
		return fmt.Errorf("%w: %d lines read", ErrNoTrainingData, lineCount)
	}

	m.pairs = len(seenPairs)
	rawContexts := len(m.contexts)
	stats := m.contexts.Trim(m.config.Limits())
	m.refreshFallback()
	m.rebuildBase()
	m.trained = true

	m.logger.InfoContext(ctx, "Training completed",
		slog.Int64("lines_processed", lineCount),
		slog.Int64("characters_counted", tokenCount),
		slog.Int("contexts_seen", rawContexts),
		slog.Int("contexts_kept", stats.ContextsAfter),
		slog.Int("distinct_pairs", m.pairs),
		slog.Int("vocabulary", len(m.unigram)),
	)
	return nil
}
