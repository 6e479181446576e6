package corpus

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"strings"
)

// maxLineBytes bounds a single line. Longer lines end the file they are in.
const maxLineBytes = 4 * 1024 * 1024

// Source streams non-blank lines from a list of files, one file after the
// other. Files that cannot be opened or read are skipped with a warning.
// Invalid UTF-8 bytes are dropped. Source implements ngram.LineSource.
type Source struct {
	files    []string
	maxLines int

	next    int // index of the next file to open
	file    *os.File
	scanner *bufio.Scanner

	lines   int
	opened  int
	skipped []string

	logger *slog.Logger
}

// SourceOption configures a Source.
type SourceOption func(*Source)

// WithMaxLines stops the Source after n lines. A value of 0 or less means no limit.
// Default: 0
func WithMaxLines(n int) SourceOption {
	return func(s *Source) {
		s.maxLines = n
	}
}

// NewSource creates a Source over files.
func NewSource(files []string, opts ...SourceOption) *Source {
	s := &Source{
		files:  append([]string(nil), files...),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetLogger sets the logger for the Source. By default, all logs are discarded.
func (s *Source) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Next returns the next non-blank line with its line ending removed. It
// returns io.EOF when every file has been read or the line cap is reached.
func (s *Source) Next() (string, error) {
	for {
		if s.maxLines > 0 && s.lines >= s.maxLines {
			s.closeFile()
			return "", io.EOF
		}
		if s.scanner == nil && !s.openNext() {
			return "", io.EOF
		}
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				s.logger.Warn("Skipping rest of unreadable training file",
					slog.String("path", s.file.Name()),
					slog.String("error", err.Error()),
				)
				s.skipped = append(s.skipped, s.file.Name())
			}
			s.closeFile()
			continue
		}
		line := cleanLine(s.scanner.Text())
		if strings.TrimSpace(line) == "" {
			continue
		}
		s.lines++
		return line, nil
	}
}

// openNext opens the next readable file. It reports false when none is left.
func (s *Source) openNext() bool {
	for s.next < len(s.files) {
		path := s.files[s.next]
		s.next++
		f, err := os.Open(path)
		if err != nil {
			s.logger.Warn("Skipping unreadable training file",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			s.skipped = append(s.skipped, path)
			continue
		}
		s.logger.Debug("Reading training file", slog.String("path", path))
		s.file = f
		s.scanner = bufio.NewScanner(f)
		s.scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		s.opened++
		return true
	}
	return false
}

func (s *Source) closeFile() {
	if s.file != nil {
		_ = s.file.Close()
	}
	s.file = nil
	s.scanner = nil
}

// Close releases the file currently being read. The Source returns io.EOF
// afterwards.
func (s *Source) Close() error {
	s.closeFile()
	s.next = len(s.files)
	return nil
}

// Lines returns how many lines have been returned so far.
func (s *Source) Lines() int {
	return s.lines
}

// FilesOpened returns how many files were opened successfully.
func (s *Source) FilesOpened() int {
	return s.opened
}

// Skipped returns the files that could not be opened or read to the end.
func (s *Source) Skipped() []string {
	return append([]string(nil), s.skipped...)
}

// cleanLine drops a trailing carriage return and any invalid UTF-8 bytes.
func cleanLine(line string) string {
	line = strings.TrimSuffix(line, "\r")
	return strings.ToValidUTF8(line, "")
}
