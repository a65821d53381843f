package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestTranslateJSON(t *testing.T) {
	out, _, err := run(t, "translate", "--format", "json", "testdata/sample.yaml")
	require.Nil(t, err)

	var docs []struct {
		Method string `json:"method"`
		Edges  []struct {
			Kind string `json:"kind"`
		} `json:"edges"`
	}
	require.Nil(t, json.Unmarshal([]byte(out), &docs))
	require.Len(t, docs, 2)
	require.Equal(t, "Sample.Program::Main", docs[0].Method)
	require.Equal(t, "Sample.Program::Using", docs[1].Method)

	var kinds []string
	for _, e := range docs[1].Edges {
		kinds = append(kinds, e.Kind)
	}
	require.Contains(t, kinds, "finally")
	require.Contains(t, kinds, "leave")
}

func TestTranslateDOT(t *testing.T) {
	out, _, err := run(t, "translate", "-f", "dot", "--method", "Sample.Program::Main", "testdata/sample.yaml")
	require.Nil(t, err)
	require.Equal(t, 1, strings.Count(out, "digraph"))
	require.Contains(t, out, `digraph "Sample.Program::Main" {`)
	require.Contains(t, out, `[label="true"]`)
}

func TestTranslateTable(t *testing.T) {
	out, _, err := run(t, "translate", "testdata/sample.yaml")
	require.Nil(t, err)
	require.Contains(t, out, "Sample.Program::Using")
	require.Contains(t, out, "IL_0003 (finally)")
	require.Contains(t, out, "SUCCESSORS")
}

func TestTranslateTargetFilter(t *testing.T) {
	out, _, err := run(t, "translate", "-f", "json", "--leave-policy", "target-filter",
		"--no-exceptional", "testdata/sample.yaml")
	require.Nil(t, err)
	require.NotContains(t, out, "exceptional")
}

func TestTranslateFailures(t *testing.T) {
	out, stderr, err := run(t, "translate", "-f", "json", "testdata/broken.yaml")
	require.NotNil(t, err)
	require.Equal(t, "1 of 2 methods failed to translate", err.Error())
	require.Contains(t, stderr, "Broken::Bad: malformed input at IL_0000: branch target IL_0028")
	require.Contains(t, out, "Broken::Good")
}

func TestTranslateRejectedMethod(t *testing.T) {
	out, stderr, err := run(t, "translate", "-f", "json", "testdata/rejected.yaml")
	require.NotNil(t, err)
	require.Equal(t, "1 of 2 methods failed to translate", err.Error())
	require.Contains(t, stderr, "Rejected::NoTarget: malformed input at IL_0000: leave.s takes exactly one target, got 0")
	require.Contains(t, out, "Rejected::Good")

	out, _, err = run(t, "translate", "--method", "Rejected::Good", "testdata/rejected.yaml")
	require.Nil(t, err)
	require.Contains(t, out, "Rejected::Good")
}

func TestDisRejectedMethod(t *testing.T) {
	out, stderr, err := run(t, "dis", "testdata/rejected.yaml")
	require.EqualError(t, err, "1 of 2 methods could not be loaded")
	require.True(t, strings.HasPrefix(out, "Rejected::Good\n"))
	require.Contains(t, stderr, "Rejected::NoTarget")
}

func TestTranslateArgumentErrors(t *testing.T) {
	_, _, err := run(t, "translate", "-f", "svg", "testdata/sample.yaml")
	require.EqualError(t, err, "unknown output format: svg")

	_, _, err = run(t, "translate", "--leave-policy", "both", "testdata/sample.yaml")
	require.NotNil(t, err)

	_, _, err = run(t, "translate", "--method", "Nope::Nope", "testdata/sample.yaml")
	require.EqualError(t, err, `method "Nope::Nope" not found`)

	_, _, err = run(t, "translate", "testdata/missing.yaml")
	require.NotNil(t, err)

	_, _, err = run(t, "translate")
	require.NotNil(t, err)
}

func TestDis(t *testing.T) {
	out, _, err := run(t, "dis", "--method", "Sample.Program::Using", "testdata/sample.yaml")
	require.Nil(t, err)
	require.True(t, strings.HasPrefix(out, "Sample.Program::Using\n"))
	require.Contains(t, out, "leave.s")
	require.Contains(t, out, "finally")
	require.NotContains(t, out, "Sample.Program::Main")
}

func TestOpcodes(t *testing.T) {
	out, _, err := run(t, "opcodes")
	require.Nil(t, err)
	require.Contains(t, out, "leave.s")
	require.Contains(t, out, "0xfe11")
	require.NotContains(t, out, "unclaimed")
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version", "--json")
	require.Nil(t, err)
	var info map[string]string
	require.Nil(t, json.Unmarshal([]byte(out), &info))
	require.Equal(t, "dev", info["version"])

	out, _, err = run(t, "version")
	require.Nil(t, err)
	require.Equal(t, "cilsil dev (commit unknown, built unknown)\n", out)
}
