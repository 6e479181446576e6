package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

const (
	// EnvTrainFiles lists training files, separated by colons. When set it
	// replaces directory discovery.
	EnvTrainFiles = "CHARPREDICT_TRAIN_FILES"
	// EnvMaxTrainLines caps the number of training lines read.
	EnvMaxTrainLines = "CHARPREDICT_MAX_TRAIN_LINES"
)

// DefaultDirs are searched recursively for *.txt training files.
var DefaultDirs = []string{"data", "corpus", "train"}

// FallbackFile is used when no other training file can be found.
const FallbackFile = "example/input.txt"

// ResolveTrainingFiles returns the training files to read. Paths listed in
// EnvTrainFiles win; otherwise every *.txt file under DefaultDirs inside root
// is used, sorted and without duplicates; failing that, FallbackFile inside
// root. The files are not checked for readability.
func ResolveTrainingFiles(root string) ([]string, error) {
	if env := strings.TrimSpace(os.Getenv(EnvTrainFiles)); env != "" {
		var files []string
		for _, p := range strings.Split(env, ":") {
			if p != "" {
				files = append(files, p)
			}
		}
		if len(files) > 0 {
			return files, nil
		}
	}

	files, err := FindTextFiles(root, DefaultDirs...)
	if err != nil {
		return nil, err
	}
	if len(files) > 0 {
		return files, nil
	}
	return []string{filepath.Join(root, FallbackFile)}, nil
}

// FindTextFiles walks each of dirs below root and returns the regular *.txt
// files found, sorted and de-duplicated. Missing directories are ignored.
func FindTextFiles(root string, dirs ...string) ([]string, error) {
	var files []string
	for _, dir := range dirs {
		base := filepath.Join(root, dir)
		err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == base && errors.Is(err, fs.ErrNotExist) {
					return fs.SkipDir
				}
				return err
			}
			if d.Type().IsRegular() && strings.EqualFold(filepath.Ext(path), ".txt") {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to search %s for training files: %w", base, err)
		}
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

// MaxLinesFromEnv returns the line cap from EnvMaxTrainLines, or 0 when it is
// unset.
func MaxLinesFromEnv() (int, error) {
	v := strings.TrimSpace(os.Getenv(EnvMaxTrainLines))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s value %q", EnvMaxTrainLines, v)
	}
	return n, nil
}
