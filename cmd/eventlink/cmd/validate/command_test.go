package validate

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/eventlink/cmd/application"
	"github.com/agentstation/eventlink/pkg/config"
	"github.com/agentstation/eventlink/pkg/errors"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	app := &application.Mock{OutputFormatFunc: func() string { return "csv" }}
	cmd := NewCommand(app)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidate_RulesOnly(t *testing.T) {
	stdout, stderr, err := execute(t)
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Rules are valid")

	_, _, err = execute(t, "--tolerance-days=-1")
	assert.True(t, errors.IsValidationError(err))
}

func TestValidate_Warnings(t *testing.T) {
	events := writeFile(t, "events.csv",
		"Date of the Event,Select Your School,Event Name\n"+
			"2024-03-01,UCLA,Info Session\n"+
			"later,UCLA,Fair\n"+
			"2024-03-02,USC,Mixer\n")

	stdout, stderr, err := execute(t, "--events", events)
	require.NoError(t, err)
	assert.Contains(t, stdout, `unparseable timestamp ""later""`)
	assert.Contains(t, stdout, "USC")
	assert.Contains(t, stderr, "Validation passed with 2 warnings")
}

func TestValidate_Errors(t *testing.T) {
	outreach := writeFile(t, "ucla.csv", "ID,Date,Name\no-1,2024-03-05,Ada\no-1,2024-03-06,Ben\n")
	lookup := writeFile(t, "approved.csv", "name\nAda\n")

	stdout, stderr, err := execute(t, "--outreach", "UCLA="+outreach, "--lookup", "approved="+lookup)
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	assert.Contains(t, stdout, "memberName")
	assert.Contains(t, stdout, "o-1")
	assert.Contains(t, stderr, "Validation failed with 2 errors")
}

func TestValidate_RulesError(t *testing.T) {
	app := &application.Mock{RulesFunc: func() (*config.Rules, error) {
		return nil, errors.NewConfigError("aliases", "conflict", nil)
	}}
	cmd := NewCommand(app)
	cmd.SetArgs([]string{})
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	var cfg *errors.ConfigError
	assert.True(t, errors.As(err, &cfg))
}
