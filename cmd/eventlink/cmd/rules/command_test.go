package rules

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/eventlink/cmd/application"
	"github.com/agentstation/eventlink/pkg/config"
	"github.com/agentstation/eventlink/pkg/errors"
)

func execute(t *testing.T, app application.Application, args ...string) (string, error) {
	t.Helper()
	cmd := NewCommand(app)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs(append([]string{}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func TestRules_YAMLRoundTrip(t *testing.T) {
	custom, err := config.Parse([]byte("tolerance_days: 3\n"), "custom.yaml")
	require.NoError(t, err)
	app := &application.Mock{
		RulesFunc:        func() (*config.Rules, error) { return custom, nil },
		OutputFormatFunc: func() string { return "" },
	}

	out, err := execute(t, app)
	require.NoError(t, err)
	assert.Contains(t, out, "tolerance_days: 3")

	parsed, err := config.Parse([]byte(out), "stdout")
	require.NoError(t, err)
	assert.Equal(t, custom, parsed)
}

func TestRules_Default(t *testing.T) {
	app := &application.Mock{
		RulesFunc:        func() (*config.Rules, error) { return nil, errors.New("not called") },
		OutputFormatFunc: func() string { return "yaml" },
	}
	out, err := execute(t, app, "--default")
	require.NoError(t, err)
	assert.Contains(t, out, "tolerance_days: 10")
}

func TestRules_Formats(t *testing.T) {
	for format, want := range map[string]string{
		"json":  `"join_key": "memberName"`,
		"table": "Veronica Nims",
		"csv":   "Join Key,memberName",
	} {
		t.Run(format, func(t *testing.T) {
			app := &application.Mock{OutputFormatFunc: func() string { return format }}
			out, err := execute(t, app)
			require.NoError(t, err)
			assert.Contains(t, out, want)
		})
	}
}

func TestRules_Error(t *testing.T) {
	app := &application.Mock{RulesFunc: func() (*config.Rules, error) {
		return nil, errors.NewNotFoundError("rules file", "x.yaml")
	}}
	_, err := execute(t, app)
	assert.True(t, errors.IsNotFound(err))
}
