package ngram

import "testing"

func TestStats(t *testing.T) {
	m, err := New(WithOrder(3), WithMinContextCount(1))
	if err != nil {
		t.Fatal(err)
	}
	if st := m.Stats(); st.Trained || st.Contexts != 0 || st.FallbackSize != len(defaultFallback) {
		t.Errorf("untrained stats = %+v", st)
	}

	m = newTrainedModel(t, []string{"abab", "ba"}, WithOrder(3), WithMinContextCount(1))
	st := m.Stats()
	want := Stats{
		Config:            m.Config(),
		Trained:           true,
		Contexts:          4, // a, b, ab, ba
		Entries:           4,
		LongestContext:    2,
		Vocabulary:        2,
		Tokens:            6,
		ContinuationVocab: 2,
		DistinctPairs:     2,
		FallbackSize:      len(defaultFallback) + 2,
	}
	if st != want {
		t.Errorf("Stats() = %+v, want %+v", st, want)
	}
}
