package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/euroalt/trustscore/internal/catalog"
	"github.com/euroalt/trustscore/internal/lint"
)

func testdata(name string) string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "..", "..", "testdata", name)
}

// run executes the CLI with an isolated config environment.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TRUSTSCORE_DATA_DIR", "")
	t.Setenv("TRUSTSCORE_LOG_LEVEL", "error")
	t.Setenv("TRUSTSCORE_JSON_LOG", "")

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), err
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return 0
	}
	var ee *exitErr
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitGeneric
}

func TestExitError(t *testing.T) {
	err := exitError(exitLint, "lint failed: %d errors", 3)
	var ee *exitErr
	if !errors.As(err, &ee) {
		t.Fatal("expected *exitErr")
	}
	if ee.code != exitLint {
		t.Errorf("code = %d, want %d", ee.code, exitLint)
	}
	if err.Error() != "lint failed: 3 errors" {
		t.Errorf("msg = %q", err.Error())
	}
}

func TestScoreJSON(t *testing.T) {
	out, err := run(t, "score", "--data", testdata("catalog"), "--now", "2025-06-01")
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	var report catalog.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(report.Entries) != 6 {
		t.Fatalf("got %d entries, want 6", len(report.Entries))
	}
	s, ok := report.Find("mailbox-de")
	if !ok || s.Score != 7.5 {
		t.Errorf("mailbox-de = %+v", s)
	}
	if !strings.HasPrefix(report.DataHash, "sha256:") {
		t.Errorf("DataHash = %q", report.DataHash)
	}
}

func TestScoreSingleEntry(t *testing.T) {
	out, err := run(t, "score", "--data", testdata("catalog"), "--now", "2025-06-01", "--id", "tor-browser")
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	var s catalog.Scored
	if err := json.Unmarshal([]byte(out), &s); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if s.Entry.ID != "tor-browser" || s.Score != 9.6 {
		t.Errorf("got %s = %v", s.Entry.ID, s.Score)
	}
}

func TestScoreMarkdownSorted(t *testing.T) {
	out, err := run(t, "score", "--data", testdata("catalog"), "--now", "2025-06-01", "--format", "md", "--sort", "score")
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	tor := strings.Index(out, "tor-browser")
	search := strings.Index(out, "search-us")
	if tor < 0 || search < 0 || tor > search {
		t.Errorf("expected tor-browser before search-us:\n%s", out)
	}
}

func TestScoreToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.txt")
	out, err := run(t, "score", "--data", testdata("catalog"), "--now", "2025-06-01", "--format", "text", "--out", path)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if out != "" {
		t.Errorf("expected nothing on stdout, got %q", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "ENTRY") {
		t.Errorf("unexpected file content:\n%s", data)
	}
}

func TestScoreErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"bad format", []string{"score", "--data", testdata("catalog"), "--format", "xml"}, exitInput},
		{"bad sort", []string{"score", "--data", testdata("catalog"), "--sort", "name"}, exitInput},
		{"bad now", []string{"score", "--data", testdata("catalog"), "--now", "tomorrow"}, exitInput},
		{"missing data", []string{"score", "--data", filepath.Join(os.TempDir(), "trustscore-nope")}, exitInput},
		{"unknown id", []string{"score", "--data", testdata("catalog"), "--id", "nope"}, exitInput},
		{"explain unknown", []string{"explain", "nope", "--data", testdata("catalog")}, exitInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if got := exitCode(t, err); got != tt.code {
				t.Errorf("exit code = %d, want %d (err: %v)", got, tt.code, err)
			}
		})
	}
}

func TestExplain(t *testing.T) {
	out, err := run(t, "explain", "mailbox-de", "--data", testdata("catalog"), "--now", "2025-06-01")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	for _, want := range []string{"# Mailbox (mailbox-de)", "Final: 75 / 100", "scaled to the cumulative cap"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestLintClean(t *testing.T) {
	out, err := run(t, "lint", "--data", testdata("catalog"), "--now", "2025-06-01")
	if err != nil {
		t.Fatalf("lint: %v\n%s", err, out)
	}
	if !strings.Contains(out, "0 errors") && !strings.Contains(out, "No problems found") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestLintFailures(t *testing.T) {
	out, err := run(t, "lint", "--data", testdata("lint"), "--now", "2025-06-01", "--format", "json")
	if got := exitCode(t, err); got != exitLint {
		t.Fatalf("exit code = %d, want %d", got, exitLint)
	}
	var findings []lint.Finding
	if err := json.Unmarshal([]byte(out), &findings); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if !lint.HasErrors(findings) {
		t.Error("expected error findings")
	}
}

func TestConfigFileDisablesEstimation(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	content := "now = \"2025-06-01\"\n\n[policy]\nestimate_unvetted = false\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "score", "--config", cfgPath, "--data", testdata("catalog"), "--id", "notes-ch")
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	var s catalog.Scored
	if err := json.Unmarshal([]byte(out), &s); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	// 65 base + 8 unvetted baseline, informational reservation ignored
	if s.Score != 7.3 {
		t.Errorf("notes-ch = %v, want 7.3", s.Score)
	}
}
