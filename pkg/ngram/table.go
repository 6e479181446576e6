package ngram

import (
	"fmt"
	"sort"
	"strings"
)

// Counts maps a character to the number of times it was observed.
type Counts map[rune]int

// Total returns the sum of all counts.
func (c Counts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Top returns up to n characters ranked by count, highest first. Ties are
// broken by ascending code point so the order is deterministic. A negative n
// returns every character.
func (c Counts) Top(n int) []CharCount {
	ranked := make([]CharCount, 0, len(c))
	for r, count := range c {
		ranked = append(ranked, CharCount{Char: r, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Char < ranked[j].Char
	})
	if n >= 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// CharCount pairs a character with its count.
type CharCount struct {
	Char  rune
	Count int
}

// ContextTable maps a context, the characters immediately preceding a
// position, to the counts of the characters observed after it. Keys are the
// UTF-8 encoding of the context. A stored context always has at least one
// positive count.
type ContextTable map[string]Counts

// Add records one occurrence of next after context.
func (t ContextTable) Add(context string, next rune) {
	counts, ok := t[context]
	if !ok {
		counts = make(Counts, 1)
		// The key may be a slice of a much longer line; don't pin it.
		t[strings.Clone(context)] = counts
	}
	counts[next]++
}

// Entries returns the number of (context, next character) pairs stored.
func (t ContextTable) Entries() int {
	n := 0
	for _, counts := range t {
		n += len(counts)
	}
	return n
}

// Clone returns a deep copy of the table.
func (t ContextTable) Clone() ContextTable {
	out := make(ContextTable, len(t))
	for ctx, counts := range t {
		c := make(Counts, len(counts))
		for r, n := range counts {
			c[r] = n
		}
		out[ctx] = c
	}
	return out
}

// Limits bounds the size of a ContextTable.
type Limits struct {
	MinContextCount    int // contexts with a smaller total count are dropped
	MaxContexts        int // keep only this many contexts; <= 0 means no cap
	MaxCharsPerContext int // keep only this many next characters per context
}

// Validate reports whether the limits can be applied.
func (l Limits) Validate() error {
	if l.MaxCharsPerContext < 1 {
		return fmt.Errorf("%w: max chars per context must be at least 1, got %d", ErrInvalidConfig, l.MaxCharsPerContext)
	}
	if l.MinContextCount < 0 {
		return fmt.Errorf("%w: min context count must be non-negative, got %d", ErrInvalidConfig, l.MinContextCount)
	}
	return nil
}

// TrimStats summarizes what a Trim removed.
type TrimStats struct {
	ContextsBefore int `json:"contexts_before"`
	ContextsAfter  int `json:"contexts_after"`
	EntriesBefore  int `json:"entries_before"`
	EntriesAfter   int `json:"entries_after"`
}

type rankedContext struct {
	key   string
	total int
}

// Trim bounds the table in place:
//
//  1. contexts whose total count is below MinContextCount are dropped;
//  2. the survivors are ranked by total count, highest first with ties
//     broken by ascending key, and only the first MaxContexts are kept;
//  3. each kept context keeps its MaxCharsPerContext most frequent next
//     characters (ties by ascending code point), and is dropped if what is
//     left is empty or no longer reaches MinContextCount.
//
// Non-positive counts are discarded along the way. Trimming an already
// trimmed table with the same or looser limits changes nothing.
func (t ContextTable) Trim(l Limits) TrimStats {
	stats := TrimStats{ContextsBefore: len(t), EntriesBefore: t.Entries()}

	ranked := make([]rankedContext, 0, len(t))
	for key, counts := range t {
		for r, n := range counts {
			if n <= 0 {
				delete(counts, r)
			}
		}
		total := counts.Total()
		if len(counts) == 0 || total < l.MinContextCount {
			delete(t, key)
			continue
		}
		ranked = append(ranked, rankedContext{key: key, total: total})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].total != ranked[j].total {
			return ranked[i].total > ranked[j].total
		}
		return ranked[i].key < ranked[j].key
	})
	if l.MaxContexts > 0 && len(ranked) > l.MaxContexts {
		for _, rc := range ranked[l.MaxContexts:] {
			delete(t, rc.key)
		}
		ranked = ranked[:l.MaxContexts]
	}

	for _, rc := range ranked {
		counts := t[rc.key]
		if len(counts) <= l.MaxCharsPerContext {
			continue
		}
		kept := make(Counts, l.MaxCharsPerContext)
		total := 0
		for _, cc := range counts.Top(l.MaxCharsPerContext) {
			kept[cc.Char] = cc.Count
			total += cc.Count
		}
		if len(kept) == 0 || total < l.MinContextCount {
			delete(t, rc.key)
			continue
		}
		t[rc.key] = kept
	}

	stats.ContextsAfter = len(t)
	stats.EntriesAfter = t.Entries()
	return stats
}
