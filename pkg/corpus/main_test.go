package corpus

import (
	"os"
	"path/filepath"
	"testing"
)

// writeFile creates path below dir with the given content and returns the
// full path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// drain reads every line from s.
func drain(t *testing.T, s *Source) []string {
	t.Helper()
	var lines []string
	for {
		line, err := s.Next()
		if err != nil {
			break
		}
		lines = append(lines, line)
	}
	t.Cleanup(func() { _ = s.Close() })
	return lines
}
