package commands

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/bettersql/internal/cli/config"
	"github.com/leapstack-labs/bettersql/internal/cli/testutil"
)

const userSQL = "\nselect\n  user.id\nfrom user\nlimit 1\n"

func TestCompile_Stdin(t *testing.T) {
	for _, args := range [][]string{nil, {"-"}} {
		res := testutil.Execute(t, NewCompileCommand(), "select user { id }", args...)
		require.NoError(t, res.Err)
		assert.Equal(t, userSQL, res.Out)
		testutil.AssertNoANSI(t, res.Out)
	}
}

func TestCompile_Files(t *testing.T) {
	dir := testutil.WriteQueries(t, map[string]string{
		"a.bsql": "select user { id }",
		"b.bsql": "select post [ title ]",
	})

	res := testutil.Execute(t, NewCompileCommand(), "",
		filepath.Join(dir, "a.bsql"), filepath.Join(dir, "b.bsql"))
	require.NoError(t, res.Err)

	assert.Contains(t, res.Out, "-- "+filepath.Join(dir, "a.bsql"))
	assert.Contains(t, res.Out, "from user")
	assert.Contains(t, res.Out, "-- "+filepath.Join(dir, "b.bsql"))
	assert.Contains(t, res.Out, "from post")
}

func TestCompile_SyntaxError(t *testing.T) {
	dir := testutil.WriteQueries(t, map[string]string{
		"ok.bsql":  "select user { id }",
		"bad.bsql": "select user {\n  id\n",
	})

	res := testutil.Execute(t, NewCompileCommand(), "",
		filepath.Join(dir, "ok.bsql"), filepath.Join(dir, "bad.bsql"))
	require.Error(t, res.Err)
	assert.Equal(t, "1 of 2 queries failed to compile", res.Err.Error())

	assert.Contains(t, res.ErrOut, `missing close bracket "}" for table "user"`)
	assert.Contains(t, res.ErrOut, filepath.Join(dir, "bad.bsql")+":2:3")
	assert.Contains(t, res.Out, "from user", "valid inputs are still compiled")
}

func TestCompile_Write(t *testing.T) {
	dir := testutil.WriteQueries(t, map[string]string{"q/user.bsql": "select user { id }"})
	src := filepath.Join(dir, "q", "user.bsql")

	res := testutil.Execute(t, NewCompileCommand(), "", "--write", src)
	require.NoError(t, res.Err)
	assert.Contains(t, res.Out, "wrote")

	data, err := os.ReadFile(filepath.Join(dir, "q", "user.sql"))
	require.NoError(t, err)
	assert.Equal(t, userSQL, string(data))
}

func TestCompile_WriteNeedsFiles(t *testing.T) {
	res := testutil.Execute(t, NewCompileCommand(), "select user { id }", "--write")
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "--write needs file arguments")
}

func TestCompile_Check(t *testing.T) {
	dir := testutil.WriteQueries(t, map[string]string{"a.bsql": "select user { id }"})

	res := testutil.Execute(t, NewCompileCommand(), "", "--check", filepath.Join(dir, "a.bsql"))
	require.NoError(t, res.Err)
	assert.Contains(t, res.Out, "ok")
	assert.NotContains(t, res.Out, "from user")

	_, err := os.Stat(filepath.Join(dir, "a.sql"))
	assert.True(t, os.IsNotExist(err), "check must not write output")
}

func TestCompile_JSON(t *testing.T) {
	cfg := config.Default()
	cfg.Output = "json"

	cmd := NewCompileCommand()
	cmd.SetContext(config.WithConfig(context.Background(), cfg))
	res := testutil.Execute(t, cmd, "select user {\n  id %\n}")
	require.Error(t, res.Err)
	assert.Empty(t, res.ErrOut)

	var results []compileResult
	require.NoError(t, json.Unmarshal([]byte(res.Out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "<stdin>", results[0].Source)
	assert.Equal(t, 2, results[0].Line)
	assert.Equal(t, 6, results[0].Column)
	assert.Contains(t, results[0].Error, "unknown token")
}

func TestCompile_MissingFile(t *testing.T) {
	res := testutil.Execute(t, NewCompileCommand(), "", filepath.Join(t.TempDir(), "nope.bsql"))
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "failed to read")
}
