package ngram

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/natefinch/atomic"
)

// CheckpointFile is the name of the checkpoint inside a work directory.
const CheckpointFile = "model.checkpoint"

// checkpointVersion is the schema version written by Save. The schema is
// additive only: newer versions add fields, never rename or remove them.
const checkpointVersion = 1

// ErrMalformedCheckpoint is returned by Load when the artifact cannot be
// decoded or fails validation.
var ErrMalformedCheckpoint = errors.New("malformed checkpoint")

// CheckpointPath returns the checkpoint location for a work directory.
func CheckpointPath(workDir string) string {
	return filepath.Join(workDir, CheckpointFile)
}

// checkpoint is the on-disk schema. Every field is optional; a field missing
// from an older artifact takes the default noted beside it.
type checkpoint struct {
	Version            *int                      `json:"schema_version,omitempty"`        // 1
	Order              *int                      `json:"ngram_order,omitempty"`           // DefaultOrder
	Alpha              *float64                  `json:"laplace_alpha,omitempty"`         // DefaultAlpha
	MaxCharsPerContext *int                      `json:"max_chars_per_context,omitempty"` // DefaultMaxCharsPerContext
	MinContextCount    *int                      `json:"min_context_count,omitempty"`     // DefaultMinContextCount
	MaxContexts        *int                      `json:"max_contexts,omitempty"`          // DefaultMaxContexts
	Discount           *float64                  `json:"kn_discount,omitempty"`           // DefaultDiscount
	Contexts           map[string]map[string]int `json:"context_counts,omitempty"`        // empty
	Unigram            map[string]int            `json:"unigram,omitempty"`               // empty
	Continuation       map[string]int            `json:"continuation_counts,omitempty"`   // empty
	DistinctPairs      *int                      `json:"total_bigram_types,omitempty"`    // 0
	Fallback           []string                  `json:"default_chars,omitempty"`         // DefaultFallback()
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

// Save writes the complete model state to w as gzip-compressed JSON.
func (m *Model) Save(w io.Writer) error {
	version := checkpointVersion
	cfg := m.config
	payload := checkpoint{
		Version:            &version,
		Order:              &cfg.Order,
		Alpha:              &cfg.Alpha,
		MaxCharsPerContext: &cfg.MaxCharsPerContext,
		MinContextCount:    &cfg.MinContextCount,
		MaxContexts:        &cfg.MaxContexts,
		Discount:           &cfg.Discount,
		Contexts:           make(map[string]map[string]int, len(m.contexts)),
		Unigram:            encodeCounts(m.unigram),
		Continuation:       encodeCounts(m.continuation),
		DistinctPairs:      &m.pairs,
		Fallback:           make([]string, len(m.fallback)),
	}
	for ctx, counts := range m.contexts {
		payload.Contexts[ctx] = encodeCounts(counts)
	}
	for i, r := range m.fallback {
		payload.Fallback[i] = string(r)
	}

	gz := gzip.NewWriter(w)
	if err := json.NewEncoder(gz).Encode(payload); err != nil {
		_ = gz.Close()
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to compress checkpoint: %w", err)
	}
	return nil
}

// SaveFile writes the checkpoint to path, creating its directory if needed.
// The file is replaced atomically, so a failed write leaves any previous
// checkpoint at path intact.
func (m *Model) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create checkpoint directory: %w", err)
	}
	var buf bytes.Buffer
	if err := m.Save(&buf); err != nil {
		return err
	}
	size := buf.Len()
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("failed to write checkpoint %s: %w", path, err)
	}
	m.logger.Info("Checkpoint saved",
		slog.String("path", path),
		slog.Int("bytes", size),
		slog.Int("contexts", len(m.contexts)),
	)
	return nil
}

// Load reconstructs a model from a checkpoint written by Save. Fields absent
// from the artifact take their documented defaults. The returned model is
// trained and read-only.
func Load(r io.Reader) (*Model, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedCheckpoint, err)
	}
	defer func(gz *gzip.Reader) {
		_ = gz.Close()
	}(gz)

	var payload checkpoint
	if err = json.NewDecoder(gz).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedCheckpoint, err)
	}
	return payload.model()
}

// LoadFile reads a checkpoint from path.
func LoadFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	m, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return m, nil
}

// model validates the payload once and builds the Model it describes.
func (p *checkpoint) model() (*Model, error) {
	cfg := Config{
		Order:              valueOr(p.Order, DefaultOrder),
		Discount:           valueOr(p.Discount, DefaultDiscount),
		Alpha:              valueOr(p.Alpha, DefaultAlpha),
		MaxCharsPerContext: valueOr(p.MaxCharsPerContext, DefaultMaxCharsPerContext),
		MinContextCount:    valueOr(p.MinContextCount, DefaultMinContextCount),
		MaxContexts:        valueOr(p.MaxContexts, DefaultMaxContexts),
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedCheckpoint, err)
	}

	m := newModel(cfg)
	m.trained = true

	var err error
	for ctx, counts := range p.Contexts {
		if ctx == "" || !utf8.ValidString(ctx) {
			return nil, fmt.Errorf("%w: invalid context key %q", ErrMalformedCheckpoint, ctx)
		}
		if len(counts) == 0 {
			continue
		}
		if m.contexts[ctx], err = decodeCounts(counts); err != nil {
			return nil, fmt.Errorf("%w: context %q: %w", ErrMalformedCheckpoint, ctx, err)
		}
	}
	if m.unigram, err = decodeCounts(p.Unigram); err != nil {
		return nil, fmt.Errorf("%w: unigram: %w", ErrMalformedCheckpoint, err)
	}
	if m.continuation, err = decodeCounts(p.Continuation); err != nil {
		return nil, fmt.Errorf("%w: continuation counts: %w", ErrMalformedCheckpoint, err)
	}

	m.pairs = valueOr(p.DistinctPairs, 0)
	if m.pairs < 0 {
		return nil, fmt.Errorf("%w: negative distinct pair count %d", ErrMalformedCheckpoint, m.pairs)
	}

	if p.Fallback != nil {
		m.fallback = make([]rune, 0, len(p.Fallback))
		for _, s := range p.Fallback {
			r, ok := singleRune(s)
			if !ok {
				return nil, fmt.Errorf("%w: fallback symbol %q is not a single character", ErrMalformedCheckpoint, s)
			}
			m.fallback = append(m.fallback, r)
		}
	}

	m.rebuildBase()
	return m, nil
}

func encodeCounts(c Counts) map[string]int {
	out := make(map[string]int, len(c))
	for r, n := range c {
		out[string(r)] = n
	}
	return out
}

func decodeCounts(in map[string]int) (Counts, error) {
	out := make(Counts, len(in))
	for s, n := range in {
		r, ok := singleRune(s)
		if !ok {
			return nil, fmt.Errorf("key %q is not a single character", s)
		}
		if n <= 0 {
			return nil, fmt.Errorf("non-positive count %d for %q", n, s)
		}
		out[r] = n
	}
	return out, nil
}
