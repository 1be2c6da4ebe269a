package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("MCP_PROVIDERS", "tools.math;prompts.examples;tools.kv")
	t.Setenv("REDIS_URL", "")
	t.Setenv("LOG_ENABLED", "false")

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestInvokeCommand(t *testing.T) {
	out, err := run(t, "invoke", "tool", "add", "--params", `{"a": 2, "b": 3}`)
	require.NoError(t, err)

	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, true, res["success"])
	assert.Equal(t, 5.0, res["data"].(map[string]any)["result"])
}

func TestInvokeCommand_Failure(t *testing.T) {
	out, err := run(t, "invoke", "tool", "divide", "--params", `{"a": 1, "b": 0}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DIVISION_BY_ZERO")
	assert.Contains(t, out, `"success": false`)
}

func TestInvokeCommand_BadInput(t *testing.T) {
	_, err := run(t, "invoke", "gadget", "add")
	assert.ErrorContains(t, err, "unknown capability kind")

	_, err = run(t, "invoke", "tool", "add", "--params", `[1]`)
	assert.ErrorContains(t, err, "--params must be a JSON object")
}

func TestCapabilitiesCommand(t *testing.T) {
	out, err := run(t, "capabilities", "tools")
	require.NoError(t, err)
	assert.Contains(t, out, "KIND")
	assert.Contains(t, out, "divide")
	assert.NotContains(t, out, "code-review")

	out, err = run(t, "capabilities")
	require.NoError(t, err)
	assert.Contains(t, out, "code-review")
}

func TestConfigCommand(t *testing.T) {
	out, err := run(t, "config", "--port", "9123", "--transport", "stdio")
	require.NoError(t, err)
	assert.Contains(t, out, "port: 9123")
	assert.Contains(t, out, "transport: stdio")
}
