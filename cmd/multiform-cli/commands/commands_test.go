package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func resetFlags(t *testing.T) {
	t.Helper()
	dir, openapiPath, operations = "", "", nil
	t.Cleanup(func() {
		dir, openapiPath, operations = "", "", nil
	})
}

func TestListSamples(t *testing.T) {
	resetFlags(t)

	cmd := listCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	out := buf.String()
	require.Contains(t, out, "profile (form) Profile")
	require.Contains(t, out, "addresses (group) Address")
	require.Contains(t, out, "email")
}

func TestLoadDefinitionsFromDir(t *testing.T) {
	resetFlags(t)

	tmp := t.TempDir()
	doc := []byte("forms:\n  - name: notes\n    fields:\n      - name: title\n        required: true\n")
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "notes.yaml"), doc, 0o644))
	dir = tmp

	defs, err := loadDefinitions(context.Background())
	require.NoError(t, err)
	require.Len(t, defs, 1)
	require.Equal(t, "notes", defs[0].Name)
	require.True(t, defs[0].Fields[0].Required)
}

func TestLoadDefinitionsRejectsConflictingSources(t *testing.T) {
	resetFlags(t)
	dir, openapiPath = "forms", "api.yaml"

	_, err := loadDefinitions(context.Background())
	require.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	for _, debug := range []bool{false, true} {
		lggr, err := newLogger(debug)
		require.NoError(t, err)
		require.NotNil(t, lggr)
	}
}
