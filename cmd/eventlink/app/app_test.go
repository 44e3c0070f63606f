package app

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/agentstation/eventlink/pkg/config"
	"github.com/agentstation/eventlink/pkg/logging"
)

func newTestApp(t *testing.T, opts ...Option) *App {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	logger := zerolog.Nop()
	app, err := New("1.0.0", "abc123", "2024-01-01", "test", append([]Option{WithLogger(&logger)}, opts...)...)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return app
}

// TestApp_New verifies app initialization.
func TestApp_New(t *testing.T) {
	app := newTestApp(t)

	if app.Version() != "1.0.0" {
		t.Errorf("Version() = %s, want 1.0.0", app.Version())
	}
	if app.Commit() != "abc123" {
		t.Errorf("Commit() = %s, want abc123", app.Commit())
	}
	if app.Date() != "2024-01-01" {
		t.Errorf("Date() = %s, want 2024-01-01", app.Date())
	}
	if app.BuiltBy() != "test" {
		t.Errorf("BuiltBy() = %s, want test", app.BuiltBy())
	}
	if app.Logger() == nil {
		t.Error("Logger() returned nil")
	}
	if app.Config() == nil {
		t.Error("Config() returned nil")
	}
}

// TestApp_New_SetsDefaultLogger verifies the package default logger follows the CLI config.
func TestApp_New_SetsDefaultLogger(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("EVENTLINK_LOG_LEVEL", "error")

	previous := *logging.Default()
	globalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		logging.SetDefault(previous)
		zerolog.SetGlobalLevel(globalLevel)
	})

	app, err := New("1.0.0", "abc123", "2024-01-01", "test")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if got := logging.Default().GetLevel(); got != zerolog.ErrorLevel {
		t.Errorf("default logger level = %v, want %v", got, zerolog.ErrorLevel)
	}
	if got := app.Logger().GetLevel(); got != zerolog.ErrorLevel {
		t.Errorf("app logger level = %v, want %v", got, zerolog.ErrorLevel)
	}
}

// TestApp_Rules_Default verifies the built-in rules are used without a file.
func TestApp_Rules_Default(t *testing.T) {
	app := newTestApp(t)

	rules, err := app.Rules()
	if err != nil {
		t.Fatalf("Rules() failed: %v", err)
	}
	if rules.ToleranceDays != config.Default().ToleranceDays {
		t.Errorf("ToleranceDays = %d, want default", rules.ToleranceDays)
	}
}

// TestApp_Rules_WorkingDirectory verifies ./eventlink.rules.yaml is picked up.
func TestApp_Rules_WorkingDirectory(t *testing.T) {
	app := newTestApp(t)
	writeFile(t, ".", "eventlink.rules.yaml", "tolerance_days: 4\n")

	rules, err := app.Rules()
	if err != nil {
		t.Fatalf("Rules() failed: %v", err)
	}
	if rules.ToleranceDays != 4 {
		t.Errorf("ToleranceDays = %d, want 4", rules.ToleranceDays)
	}
}

// TestApp_Rules_Singleton verifies concurrent Rules() calls share one value.
func TestApp_Rules_Singleton(t *testing.T) {
	app := newTestApp(t)

	const goroutines = 50
	var wg sync.WaitGroup
	results := make([]*config.Rules, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx], _ = app.Rules()
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		if r == nil || r != results[0] {
			t.Fatalf("Rules() call %d returned a different instance", i)
		}
	}
}

// TestApp_Execute_Version verifies the version command and flag setup.
func TestApp_Execute_Version(t *testing.T) {
	app := newTestApp(t)

	var out bytes.Buffer
	root := app.createRootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"version", "--verbose"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("version failed: %v", err)
	}

	got := out.String()
	if !strings.HasPrefix(got, "eventlink 1.0.0\n") {
		t.Errorf("output = %q", got)
	}
	if !strings.Contains(got, "commit:   abc123") {
		t.Errorf("verbose output missing commit: %q", got)
	}
}

// TestApp_Execute_RulesFlag verifies --rules and --format reach the commands.
func TestApp_Execute_RulesFlag(t *testing.T) {
	app := newTestApp(t)
	path := writeFile(t, t.TempDir(), "custom.yaml", "tolerance_days: 2\n")

	var out bytes.Buffer
	root := app.createRootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"rules", "--rules", path, "--format", "json"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("rules failed: %v", err)
	}

	if !strings.Contains(out.String(), `"tolerance_days": 2`) {
		t.Errorf("output = %s", out.String())
	}
	if app.OutputFormat() != "json" {
		t.Errorf("OutputFormat() = %s, want json", app.OutputFormat())
	}
}

// TestApp_Execute_ConfigFlag verifies --config reloads configuration.
func TestApp_Execute_ConfigFlag(t *testing.T) {
	app := newTestApp(t)
	dir := t.TempDir()
	cfg := writeFile(t, dir, "eventlink.yaml", "metrics_file: "+filepath.Join(dir, "m.prom")+"\n")

	root := app.createRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"version", "--config", cfg})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("version failed: %v", err)
	}

	if app.MetricsFile() != filepath.Join(dir, "m.prom") {
		t.Errorf("MetricsFile() = %s", app.MetricsFile())
	}
}

// TestApp_Execute_UnknownCommand verifies errors are returned, not printed.
func TestApp_Execute_UnknownCommand(t *testing.T) {
	app := newTestApp(t)
	if err := app.Execute(context.Background(), []string{"bogus"}); err == nil {
		t.Error("Execute() succeeded for an unknown command")
	}
}
