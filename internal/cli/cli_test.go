package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testInventoryJSON = `{"inventory":[
	{"art_id":"1","name":"bolt","stock":"10"},
	{"art_id":"2","name":"nut","stock":"5"},
	{"art_id":"3","name":"washer","stock":"2"}
]}`

const testProductsJSON = `{"products":[
	{"name":"gadget","contain_articles":[
		{"art_id":"1","amount_of":"3"}
	]},
	{"name":"doohickey","contain_articles":[
		{"art_id":"1","amount_of":"1"},
		{"art_id":"2","amount_of":"2"}
	]}
]}`

// seedDataDir writes the fixture documents for the file backend and returns
// the directory.
func seedDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "inventory.json"), []byte(testInventoryJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "products.json"), []byte(testProductsJSON), 0o644))
	return dir
}

// writeDoc overwrites one document file in the data directory.
func writeDoc(t *testing.T, dir, name, raw string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(raw), 0o644))
}

// runCommand executes the root command with the given arguments and returns
// captured stdout and stderr.
func runCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}
