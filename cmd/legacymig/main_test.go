package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legacymig/pkg/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c, err := config.Load("")
	require.NoError(t, err)
	return c
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, v))
}

func TestWriteJSONFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	require.NoError(t, writeJSONFile(path, map[string]string{"name": "José <b>"}))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"José <b>"`, "no ASCII or HTML escaping")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file is renamed away")
}

func TestRunExtract(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "extracted")
	require.NoError(t, os.WriteFile(filepath.Join(in, "snapshot-users.log"), []byte(
		"- role: option\n  name: Jane Doe (jdoe)\n- role: cell\n  name: Manila\n- role: row\n  name: \"Fix printer  Jane Doe  John Roe  Approval  2024-01-05\"\n",
	), 0o644))

	require.NoError(t, runExtract(context.Background(), testConfig(t), in, out))

	var users []map[string]any
	readJSON(t, filepath.Join(out, "users.json"), &users)
	require.Len(t, users, 1)
	assert.Equal(t, "jdoe", users[0]["username"])
	assert.Nil(t, users[0]["last_day"])

	var branches []string
	readJSON(t, filepath.Join(out, "branches.json"), &branches)
	assert.Equal(t, []string{"Manila"}, branches)

	var articles []any
	readJSON(t, filepath.Join(out, "cerebro_articles.json"), &articles)
	assert.Empty(t, articles)

	for _, name := range []string{"roles.json", "requests.json"} {
		assert.FileExists(t, filepath.Join(out, name))
	}
}

func TestRunTransform(t *testing.T) {
	dir := t.TempDir()
	exportPath := filepath.Join(dir, "export.json")
	require.NoError(t, os.WriteFile(exportPath, []byte(`[
	  {"type":"table","name":"intra_users","data":[{"id":"42","username":"jdoe","branch":"3"}]},
	  {"type":"table","name":"intra_branches","data":[{"branch_id":"3","branch_name":"Manila"}]},
	  {"type":"table","name":"intra_users_branches","data":[{"user_id":"42","branch_id":"3"}]}
	]`), 0o644))
	out := filepath.Join(dir, "import_data")

	require.NoError(t, runTransform(testConfig(t), exportPath, out))

	var users []map[string]any
	readJSON(t, filepath.Join(out, "users.json"), &users)
	require.Len(t, users, 1)
	assert.Equal(t, "jdoe@lafamilia.local", users[0]["email"])

	var rel []map[string]any
	readJSON(t, filepath.Join(out, "user_branches.json"), &rel)
	require.Len(t, rel, 1)
	assert.Equal(t, true, rel[0]["lastUsed"])

	for _, name := range []string{"branches.json", "roles.json", "requests.json", "cerebro.json", "tasks.json", "user_roles.json"} {
		assert.FileExists(t, filepath.Join(out, name))
	}
}

func TestRunTransformRejectsNonExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"not":"an export"}`), 0o644))

	err := runTransform(testConfig(t), path, t.TempDir())
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"version"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "legacymig dev")
}

func TestSetupDotEnv(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		chdir(t, t.TempDir())
		require.NoError(t, setup(extractCmd, nil))
		assert.NotNil(t, cfg)
	})

	t.Run("unreadable file is reported", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(dir, ".env"), 0o755))
		chdir(t, dir)

		err := setup(extractCmd, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading .env")
	})
}

// chdir changes the working directory for the duration of the test
// (stand-in for testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
