package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const walletExport = `{
  "functions": [
    {"name": "main", "body": [
      {"kind": "let", "name": "x",
       "init": {"kind": "int", "value": 1, "pos": {"file": "wallet.tact", "line": 2, "col": 13}},
       "pos": {"file": "wallet.tact", "line": 2, "col": 5}}
    ], "pos": {"file": "wallet.tact", "line": 1, "col": 1}}
  ]
}`

func TestLoadUnit(t *testing.T) {
	root := filepath.Join(t.TempDir(), "wallet")
	sub := filepath.Join(root, "contracts")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "wallet.ast.json"), []byte(walletExport), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "extra.ast.json"), []byte(`{"path": "extra.tact"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("ignored"), 0o644))

	unit, err := LoadUnit(root)
	require.NoError(t, err)
	assert.Equal(t, "wallet", unit.Name)
	require.Len(t, unit.Files, 2)

	_, ok := unit.FindFunctionCFG("main")
	assert.True(t, ok)
}

func TestLoadUnitDefaultsFilePath(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "wallet.ast.json"), []byte(`{"functions": []}`), 0o644))

	unit, err := LoadUnit(root)
	require.NoError(t, err)
	require.Len(t, unit.Files, 1)
	assert.Equal(t, filepath.Join(root, "wallet.tact"), unit.Files[0].Path)
}

func TestLoadUnitNoExports(t *testing.T) {
	_, err := LoadUnit(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".ast.json")
}

func TestLoadUnitBadExport(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "bad.ast.json"), []byte(`{"functions": [{"body": [{"kind": "goto"}]}]}`), 0o644))
	_, err := LoadUnit(root)
	assert.Error(t, err)
}
