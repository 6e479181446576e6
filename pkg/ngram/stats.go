package ngram

import "unicode/utf8"

// Stats holds aggregated statistics for a Model.
type Stats struct {
	Config            Config `json:"config"`
	Trained           bool   `json:"trained"`
	Contexts          int    `json:"contexts"`           // stored contexts
	Entries           int    `json:"entries"`            // stored (context, next character) pairs
	LongestContext    int    `json:"longest_context"`    // in characters
	Vocabulary        int    `json:"vocabulary"`         // distinct characters seen
	Tokens            int    `json:"tokens"`             // characters counted
	ContinuationVocab int    `json:"continuation_vocab"` // characters with a left neighbour
	DistinctPairs     int    `json:"distinct_pairs"`
	FallbackSize      int    `json:"fallback_size"`
}

// Stats returns a snapshot of the model's table sizes.
func (m *Model) Stats() Stats {
	st := Stats{
		Config:            m.config,
		Trained:           m.trained,
		Contexts:          len(m.contexts),
		Entries:           m.contexts.Entries(),
		Vocabulary:        len(m.unigram),
		Tokens:            m.unigram.Total(),
		ContinuationVocab: len(m.continuation),
		DistinctPairs:     m.pairs,
		FallbackSize:      len(m.fallback),
	}
	for ctx := range m.contexts {
		st.LongestContext = max(st.LongestContext, utf8.RuneCountInString(ctx))
	}
	return st
}
