package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestGraphCommand(t *testing.T) {
	out, err := run(t, "graph", "--check")
	require.NoError(t, err)
	assert.Contains(t, out, "flows ok")
	assert.Contains(t, out, "fetch_schema --> generate_query")
	assert.Contains(t, out, `summary(["summary"])`)

	out, err = run(t, "graph", "--flow", "agent", "--check=false")
	require.NoError(t, err)
	assert.Contains(t, out, "translate_nl --> query_database")

	_, err = run(t, "graph", "--flow", "nope")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "civicflow version")
}
