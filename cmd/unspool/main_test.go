package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	configPath  string
	incomingDir string
	outputDir   string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	env := &cliTestEnv{
		configPath:  filepath.Join(base, "config.toml"),
		incomingDir: filepath.Join(base, "incoming"),
		outputDir:   filepath.Join(base, "output"),
	}
	content := fmt.Sprintf(
		"[paths]\nincoming_dir = %q\noutput_dir = %q\nlog_dir = %q\napi_bind = %q\n",
		env.incomingDir,
		env.outputDir,
		filepath.Join(base, "logs"),
		"127.0.0.1:0",
	)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate", env.configPath}, "")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "is valid")

	tmp := t.TempDir()
	target := filepath.Join(tmp, "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--output", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	// A second init without --overwrite refuses to clobber.
	if _, _, err := runCLI(t, []string{"config", "init", "--output", target}, ""); err == nil {
		t.Fatal("expected init to fail on existing file")
	}

	out, _, err = runCLI(t, []string{"config", "show", env.configPath}, "")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "incoming_dir")
	requireContains(t, out, env.incomingDir)
}

func TestQueueAddListClear(t *testing.T) {
	env := setupCLITestEnv(t)

	source := filepath.Join(t.TempDir(), "feature.mkv")
	if err := os.WriteFile(source, []byte("container-bytes"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "add", source}, env.configPath)
	if err != nil {
		t.Fatalf("queue add: %v", err)
	}
	requireContains(t, out, "Enqueued")

	// The file was copied into the incoming directory.
	if _, err := os.Stat(filepath.Join(env.incomingDir, "feature.mkv")); err != nil {
		t.Fatalf("expected copied file: %v", err)
	}

	out, _, err = runCLI(t, []string{"queue", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	requireContains(t, out, "pending")

	out, _, err = runCLI(t, []string{"queue", "list", "--status", "completed"}, env.configPath)
	if err != nil {
		t.Fatalf("queue list filtered: %v", err)
	}
	requireContains(t, out, "Queue is empty")

	out, _, err = runCLI(t, []string{"queue", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("queue clear: %v", err)
	}
	requireContains(t, out, "Removed 1 queue items")
}

func TestTitlesAndTracksCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	titleDir := filepath.Join(env.outputDir, "20260830-080000-demo-ab12cd34")
	if err := os.MkdirAll(titleDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for _, name := range []string{"master.mp4", "audio_en.aac", "sub_ja.vtt"} {
		if err := os.WriteFile(filepath.Join(titleDir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	out, _, err := runCLI(t, []string{"titles"}, env.configPath)
	if err != nil {
		t.Fatalf("titles: %v", err)
	}
	requireContains(t, out, "20260830-080000-demo-ab12cd34/master.mp4")

	out, _, err = runCLI(t, []string{"tracks", "20260830-080000-demo-ab12cd34"}, env.configPath)
	if err != nil {
		t.Fatalf("tracks: %v", err)
	}
	requireContains(t, out, "audio_en.aac")
	requireContains(t, out, "sub_ja.vtt")

	if _, _, err := runCLI(t, []string{"tracks", "missing-title"}, env.configPath); err == nil {
		t.Fatal("expected error for missing title")
	}
}

func TestUnknownStatusFilterFails(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"queue", "list", "--status", "bogus"}, env.configPath); err == nil {
		t.Fatal("expected unknown status error")
	}
}
