package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func setTestDirs(t *testing.T) {
	t.Helper()
	base := t.TempDir()
	t.Setenv("FITVAULT_DATA_DIR", filepath.Join(base, "data"))
	t.Setenv("FITVAULT_VAULT_DIR", filepath.Join(base, "vault"))
	t.Setenv("FITVAULT_KEY_DIR", filepath.Join(base, "keys"))
	t.Setenv("FITVAULT_LOG_LEVEL", "error")
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("execute %v: %v", args, err)
	}
	return buf.String()
}

func TestRootHelp(t *testing.T) {
	out := run(t, "--help")
	if out == "" {
		t.Fatal("expected help output")
	}
}

func TestMacroGoalSetAndToday(t *testing.T) {
	setTestDirs(t)

	run(t, "macro", "goal", "set", "--calories", "2000", "--protein", "150", "--carbs", "200", "--fat", "67")
	run(t, "macro", "log", "--meal", "breakfast", "--name", "Oats", "--calories", "700", "--protein", "50")

	out := run(t, "macro", "today")
	if !strings.Contains(out, "Calories: 700 / 2000 (35%)") {
		t.Errorf("unexpected today output:\n%s", out)
	}
}

func TestStatusOnFreshState(t *testing.T) {
	setTestDirs(t)

	out := run(t, "status")
	if !strings.Contains(out, "Level 1") {
		t.Errorf("unexpected status output:\n%s", out)
	}
}

func TestHealthCounters(t *testing.T) {
	setTestDirs(t)

	run(t, "health", "steps", "4000")
	out := run(t, "health", "water", "500")
	if !strings.Contains(out, "4000 steps, 500 ml water") {
		t.Errorf("unexpected counters output:\n%s", out)
	}
}
