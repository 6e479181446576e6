package corpus

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"slices"
	"testing"

	"github.com/CTAG07/charpredict/pkg/ngram"
)

func TestSourceStreamsFiles(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "first.txt", "alpha\r\n\n   \nbe\xfft\xfea\n")
	second := writeFile(t, dir, "second.txt", "gamma\ndelta")
	missing := filepath.Join(dir, "missing.txt")

	s := NewSource([]string{first, missing, second})
	got := drain(t, s)
	want := []string{"alpha", "beta", "gamma", "delta"}
	if !slices.Equal(got, want) {
		t.Errorf("lines = %q, want %q", got, want)
	}
	if s.Lines() != 4 || s.FilesOpened() != 2 {
		t.Errorf("Lines() = %d, FilesOpened() = %d", s.Lines(), s.FilesOpened())
	}
	if skipped := s.Skipped(); !slices.Equal(skipped, []string{missing}) {
		t.Errorf("Skipped() = %v, want [%s]", skipped, missing)
	}
	if _, err := s.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Next() after the end error = %v, want io.EOF", err)
	}
}

func TestSourceMaxLines(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "1\n2\n3\n")
	b := writeFile(t, dir, "b.txt", "4\n5\n")

	s := NewSource([]string{a, b}, WithMaxLines(4))
	if got := drain(t, s); !slices.Equal(got, []string{"1", "2", "3", "4"}) {
		t.Errorf("lines = %q", got)
	}
}

func TestSourceTrainsModel(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "train.txt", "the cat\nthe dog\nthe bat\n")

	m, err := ngram.New(ngram.WithOrder(4), ngram.WithMinContextCount(1))
	if err != nil {
		t.Fatal(err)
	}
	s := NewSource([]string{path})
	defer func(s *Source) {
		_ = s.Close()
	}(s)
	if err := m.Fit(context.Background(), s); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if got := m.Contexts()["he "].Total(); got != 3 {
		t.Errorf(`context "he " total = %d, want 3`, got)
	}
}

func TestSourceNoFiles(t *testing.T) {
	s := NewSource([]string{filepath.Join(t.TempDir(), "nope.txt")})
	m, err := ngram.New()
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Fit(context.Background(), s); !errors.Is(err, ngram.ErrNoTrainingData) {
		t.Errorf("Fit() error = %v, want ErrNoTrainingData", err)
	}
}
