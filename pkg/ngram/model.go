package ngram

import (
	"io"
	"log/slog"
	"sort"
	"unicode/utf8"
)

// defaultFallback is the script-diverse list of symbols used when the scorer
// cannot rank enough characters.
var defaultFallback = []rune{' ', '.', ',', '。', '،', '।', '，', '・', '-'}

// DefaultFallback returns a copy of the static fallback symbols.
func DefaultFallback() []rune {
	return append([]rune(nil), defaultFallback...)
}

// Model is a character-level n-gram language model.
//
// A Model is populated once by Fit (or reconstructed by Load) and is
// read-only afterwards; all prediction methods are safe for concurrent use.
// Fit itself must not run concurrently with anything else on the same Model.
type Model struct {
	config Config

	contexts     ContextTable
	unigram      Counts
	continuation Counts // distinct left neighbours per character
	pairs        int    // distinct (previous, next) character pairs

	fallback []rune
	trained  bool

	// Lowest-order distribution, derived from the tables above.
	base      []scoredChar // sorted by score, highest first
	baseScore map[rune]float64

	logger *slog.Logger
}

type scoredChar struct {
	char  rune
	score float64
}

// New creates an empty, untrained Model. Hyperparameters start from
// DefaultConfig and are overridden by the given options.
func New(opts ...Option) (*Model, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := newModel(cfg)
	m.rebuildBase()
	return m, nil
}

func newModel(cfg Config) *Model {
	return &Model{
		config:       cfg,
		contexts:     make(ContextTable),
		unigram:      make(Counts),
		continuation: make(Counts),
		fallback:     DefaultFallback(),
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// SetLogger sets the logger for the Model. By default, all logs are discarded.
func (m *Model) SetLogger(logger *slog.Logger) {
	if logger != nil {
		m.logger = logger
	}
}

// Config returns the model's hyperparameters.
func (m *Model) Config() Config {
	return m.config
}

// Trained reports whether the model holds counts from Fit or Load.
func (m *Model) Trained() bool {
	return m.trained
}

// Contexts returns the model's context table. It must not be modified.
func (m *Model) Contexts() ContextTable {
	return m.contexts
}

// Unigram returns the global character counts. It must not be modified.
func (m *Model) Unigram() Counts {
	return m.unigram
}

// Continuation returns, per character, the number of distinct characters it
// has followed. It must not be modified.
func (m *Model) Continuation() Counts {
	return m.continuation
}

// DistinctPairs returns the number of distinct (previous, next) character
// pairs observed during training.
func (m *Model) DistinctPairs() int {
	return m.pairs
}

// Fallback returns a copy of the model's fallback symbol list.
func (m *Model) Fallback() []rune {
	return append([]rune(nil), m.fallback...)
}

// WithSmoothing returns a view of the model that uses a different discount
// and alpha. The counts are shared with the receiver, which stays unchanged.
func (m *Model) WithSmoothing(discount, alpha float64) (*Model, error) {
	cfg := m.config
	cfg.Discount = discount
	cfg.Alpha = alpha
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	view := *m
	view.config = cfg
	view.rebuildBase()
	return &view, nil
}

// Pruned returns a copy of the model whose context table has been trimmed to
// the given limits. The limits become the copy's hyperparameters and its
// fallback list is refreshed. The receiver is not modified, so a loaded
// checkpoint can be shrunk without the original training data.
func (m *Model) Pruned(l Limits) (*Model, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	p := *m
	p.config = m.config.withLimits(l)
	p.contexts = m.contexts.Clone()
	p.fallback = m.Fallback()
	stats := p.contexts.Trim(l)
	p.refreshFallback()
	p.rebuildBase()

	m.logger.Info("Model pruned",
		slog.Int("min_context_count", l.MinContextCount),
		slog.Int("max_contexts", l.MaxContexts),
		slog.Int("max_chars_per_context", l.MaxCharsPerContext),
		slog.Int("contexts_before", stats.ContextsBefore),
		slog.Int("contexts_after", stats.ContextsAfter),
	)
	return &p, nil
}

// refreshFallback rebuilds the fallback list from the most frequent
// characters followed by the static symbols, keeping first occurrences.
func (m *Model) refreshFallback() {
	if len(m.unigram) == 0 {
		return
	}
	merged := make([]rune, 0, m.config.MaxCharsPerContext+len(defaultFallback))
	seen := make(map[rune]struct{}, cap(merged))
	add := func(r rune) {
		if isLineTerminator(r) {
			return
		}
		if _, dup := seen[r]; dup {
			return
		}
		seen[r] = struct{}{}
		merged = append(merged, r)
	}
	for _, cc := range m.unigram.Top(m.config.MaxCharsPerContext) {
		add(cc.Char)
	}
	for _, r := range defaultFallback {
		add(r)
	}
	m.fallback = merged
}

// rebuildBase computes the lowest-order distribution. When distinct pairs
// were observed it is the add-alpha continuation distribution, otherwise the
// add-alpha unigram distribution.
func (m *Model) rebuildBase() {
	source, total := m.continuation, m.pairs
	if m.pairs <= 0 {
		source, total = m.unigram, m.unigram.Total()
	}

	vocab := max(1, len(source))
	denom := float64(total) + m.config.Alpha*float64(vocab)

	m.base = m.base[:0:0]
	m.baseScore = make(map[rune]float64, len(source))
	if denom <= 0 {
		return
	}
	for r, n := range source {
		if isLineTerminator(r) {
			continue
		}
		score := (float64(n) + m.config.Alpha) / denom
		m.base = append(m.base, scoredChar{char: r, score: score})
		m.baseScore[r] = score
	}
	sortScored(m.base)
}

// sortScored orders by score, highest first, then by ascending code point.
func sortScored(s []scoredChar) {
	sort.Slice(s, func(i, j int) bool {
		if s[i].score != s[j].score {
			return s[i].score > s[j].score
		}
		return s[i].char < s[j].char
	})
}

// singleRune decodes s when it holds exactly one valid character.
func singleRune(s string) (rune, bool) {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || size != len(s) || (r == utf8.RuneError && size == 1) {
		return 0, false
	}
	return r, true
}
