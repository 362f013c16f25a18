package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sowferyowman/BiomechFit-app/internal/pose/posetest"
)

func writeSquatSet(t *testing.T, root string, reps int) {
	t.Helper()
	dir := filepath.Join(root, "squat")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	for range reps {
		for _, lms := range []any{posetest.Leg(178, 175), posetest.Leg(85, 90), posetest.Leg(178, 175)} {
			data, err := json.Marshal(lms)
			if err != nil {
				t.Fatal(err)
			}
			buf.Write(data)
			buf.WriteByte('\n')
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "set1.jsonl"), buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// TestReplayLocal verifies a local replay prints the table and summary, and
// a second run skips the recording.
func TestReplayLocal(t *testing.T) {
	root := t.TempDir()
	stateDir := t.TempDir()
	writeSquatSet(t, root, 2)

	out, err := runCLI(t, "--path", root, "--state-dir", stateDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"set1.jsonl", "Squat", "1 recording(s): 1 replayed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out, err = runCLI(t, "--path", root, "--state-dir", stateDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "1 skipped") {
		t.Errorf("second run should skip:\n%s", out)
	}
	var row string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "set1.jsonl") {
			row = line
		}
	}
	for _, want := range []string{"Squat", "/5", "already replayed"} {
		if !strings.Contains(row, want) {
			t.Errorf("skipped row missing %q: %q", want, row)
		}
	}
}

// TestReplayRequiresPath verifies --path is mandatory.
func TestReplayRequiresPath(t *testing.T) {
	if _, err := runCLI(t); err == nil {
		t.Fatal("expected error without --path")
	}
}

// TestReplayServerNeedsKey verifies --server without a key is rejected.
func TestReplayServerNeedsKey(t *testing.T) {
	t.Setenv("BIOMECHFIT_API_KEY", "")
	_, err := runCLI(t, "--path", t.TempDir(), "--state-dir", t.TempDir(), "--server", "http://localhost:1")
	if err == nil || !strings.Contains(err.Error(), "--api-key") {
		t.Fatalf("err = %v, want api key error", err)
	}
}

// TestRenderTable verifies headers, cells and missing cells.
func TestRenderTable(t *testing.T) {
	got := renderTable([]string{"A", "B"}, [][]string{{"x"}}, []columnAlignment{alignLeft, alignRight}, false)
	for _, want := range []string{"A", "B", "x", "╭"} {
		if !strings.Contains(got, want) {
			t.Errorf("table missing %q:\n%s", want, got)
		}
	}
	if renderTable(nil, nil, nil, false) != "" {
		t.Error("empty headers should render nothing")
	}
}
