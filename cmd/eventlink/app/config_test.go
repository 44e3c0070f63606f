package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/agentstation/eventlink/pkg/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// TestLoadConfig verifies basic config loading.
func TestLoadConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if config.LogFormat != "auto" {
		t.Errorf("LogFormat = %q, want auto", config.LogFormat)
	}
	if config.LogOutput != "stderr" {
		t.Errorf("LogOutput = %q, want stderr", config.LogOutput)
	}
	if config.ConfigFile != "" {
		t.Errorf("ConfigFile = %q, want none", config.ConfigFile)
	}
}

// TestConfig_EnvironmentVariables verifies environment variable loading.
func TestConfig_EnvironmentVariables(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("EVENTLINK_VERBOSE", "true")
	t.Setenv("EVENTLINK_FORMAT", "json")
	t.Setenv("EVENTLINK_RULES_FILE", "custom.yaml")

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if !config.Verbose {
		t.Error("EVENTLINK_VERBOSE not loaded")
	}
	if config.Format != "json" {
		t.Errorf("Format = %s, want json", config.Format)
	}
	if config.RulesFile != "custom.yaml" {
		t.Errorf("RulesFile = %s, want custom.yaml", config.RulesFile)
	}
}

// TestConfig_File verifies the config file and that the environment wins over it.
func TestConfig_File(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())
	writeFile(t, dir, ".eventlink.yaml", "format: yaml\nmetrics_file: /tmp/eventlink.prom\nlog_level: debug\n")
	t.Setenv("EVENTLINK_LOG_LEVEL", "error")

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if config.Format != "yaml" {
		t.Errorf("Format = %s, want yaml", config.Format)
	}
	if config.MetricsFile != "/tmp/eventlink.prom" {
		t.Errorf("MetricsFile = %s, want /tmp/eventlink.prom", config.MetricsFile)
	}
	if config.LogLevel != "error" {
		t.Errorf("LogLevel = %s, want error from the environment", config.LogLevel)
	}
	if filepath.Base(config.ConfigFile) != ".eventlink.yaml" {
		t.Errorf("ConfigFile = %s", config.ConfigFile)
	}
}

// TestConfig_ExplicitFileMissing verifies that a named config file must exist.
func TestConfig_ExplicitFileMissing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("LoadConfig() succeeded for a missing file")
	}
	var resErr *errors.ResourceError
	if !errors.As(err, &resErr) {
		t.Errorf("error = %T, want *errors.ResourceError", err)
	}
}

// TestConfig_DotEnv verifies .env loading and that .env.local wins.
func TestConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())
	writeFile(t, dir, ".env", "EVENTLINK_METRICS_FILE=from-env.prom\nEVENTLINK_FORMAT=csv\n")
	writeFile(t, dir, ".env.local", "EVENTLINK_METRICS_FILE=from-local.prom\n")
	t.Cleanup(func() {
		os.Unsetenv("EVENTLINK_METRICS_FILE")
		os.Unsetenv("EVENTLINK_FORMAT")
	})

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if config.MetricsFile != "from-local.prom" {
		t.Errorf("MetricsFile = %s, want from-local.prom", config.MetricsFile)
	}
	if config.Format != "csv" {
		t.Errorf("Format = %s, want csv", config.Format)
	}
}

// TestConfig_UpdateFromFlags verifies only set flags override.
func TestConfig_UpdateFromFlags(t *testing.T) {
	config := &Config{Format: "yaml", RulesFile: "a.yaml", Verbose: true}
	set := map[string]bool{"format": true, "quiet": true}

	config.UpdateFromFlags(Flags{
		Format:    "json",
		Quiet:     true,
		RulesFile: "ignored.yaml",
		changed:   func(name string) bool { return set[name] },
	})

	if config.Format != "json" {
		t.Errorf("Format = %s, want json", config.Format)
	}
	if !config.Quiet {
		t.Error("Quiet not updated")
	}
	if config.RulesFile != "a.yaml" {
		t.Errorf("RulesFile = %s, want a.yaml (flag not set)", config.RulesFile)
	}
	if !config.Verbose {
		t.Error("Verbose cleared by an unset flag")
	}
}
