package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// trainingText is a small corpus written for command tests.
var trainingText = strings.Join([]string{
	"the cat sat on the mat",
	"the dog sat on the log",
	"the bat flew over the hat",
	"the cat and the dog are friends",
	"le chat est sur le tapis",
	"猫はマットの上に座った。",
}, "\n") + "\n"

// testEnv is a scratch directory with a config file and a training corpus.
type testEnv struct {
	dir        string
	configPath string
	workDir    string
}

// setupTestEnv writes a config whose paths all live in a temporary directory
// and points the training file variable at a small corpus.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		dir:        dir,
		configPath: filepath.Join(dir, "charpredict.json"),
		workDir:    filepath.Join(dir, "work"),
	}

	cfg := DefaultConfig()
	cfg.App.LogLevel = "error"
	cfg.App.WorkDir = env.workDir
	cfg.App.DatabasePath = filepath.Join(dir, "db", "runs.db")
	cfg.Model.MinContextCount = 1
	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err = os.WriteFile(env.configPath, data, 0o644); err != nil {
		t.Fatal(err)
	}

	corpusPath := env.path("train.txt")
	if err = os.WriteFile(corpusPath, []byte(trainingText), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CHARPREDICT_TRAIN_FILES", corpusPath)
	t.Setenv("CHARPREDICT_MAX_TRAIN_LINES", "")
	return env
}

func (e *testEnv) path(name string) string {
	return filepath.Join(e.dir, name)
}

// run executes the CLI with args and returns what it printed.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// mustRun is run that fails the test on error.
func (e *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	if err != nil {
		t.Fatalf("%v failed: %v\n%s", args, err, out)
	}
	return out
}
