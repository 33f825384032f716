package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const bothPreferXYAML = `proposers: [A, B]
reviewers: [X, Y]
preferences:
  A: [X, Y]
  B: [X, Y]
  X: [A, B]
  Y: [A, B]
`

const displacementYAML = `proposers: [A, B]
reviewers: [X, Y]
preferences:
  A: [X, Y]
  B: [X, Y]
  X: [B, A]
  Y: [A, B]
`

// executeCommand runs the root command with args and captures both streams.
func executeCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	cmd := NewRootCommand()
	outBuf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	cmd.SetOut(outBuf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(args)

	err = cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

// writeFile creates name under dir with content and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// decodeResponse parses a JSON CLI response and re-decodes its data into v.
func decodeResponse(t *testing.T, out string, v any) CLIResponse {
	t.Helper()

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	if v != nil && resp.Data != nil {
		raw, err := json.Marshal(resp.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, v))
	}
	return resp
}

// matchIntoDB runs `match --db` on the YAML content and returns the run ID.
func matchIntoDB(t *testing.T, dbPath, content string, extra ...string) string {
	t.Helper()

	path := writeFile(t, t.TempDir(), "instance.yaml", content)
	args := append([]string{"match", path, "--db", dbPath, "--format", "json"}, extra...)
	out, _, err := executeCommand(t, args...)
	require.NoError(t, err, "output: %s", out)

	var result MatchResult
	resp := decodeResponse(t, out, &result)
	require.NotEmpty(t, resp.RunID)
	return resp.RunID
}
