package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFindsConfigInParentDir(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "contracts", "wallet")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	content := `severityThreshold: high
detectors:
  - never-accessed
souffle:
  binary: /opt/souffle/bin/souffle
  keepDirs: true
suppressions:
  - detector: unused-constants
    path: vendor/
    reason: vendored code
`
	cfgPath := filepath.Join(root, FileName)
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))

	cfg, from, err := Load(nested)
	require.NoError(t, err)
	assert.Equal(t, cfgPath, from)
	assert.Equal(t, "high", cfg.SeverityThreshold)
	assert.Equal(t, []string{"never-accessed"}, cfg.Detectors)
	assert.Equal(t, "/opt/souffle/bin/souffle", cfg.Souffle.Binary)
	assert.True(t, cfg.Souffle.KeepDirs)
	require.Len(t, cfg.Suppressions, 1)
	assert.Equal(t, "unused-constants", cfg.Suppressions[0].Detector)
}

func TestLoadWithoutFileReturnsDefaults(t *testing.T) {
	cfg, from, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, from)
	assert.Equal(t, Default(), cfg)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("detectors: [unused-constants]\n"), 0o644))

	cfg, _, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.SeverityThreshold)
	assert.Equal(t, "souffle", cfg.Souffle.Binary)
	assert.Equal(t, []string{"unused-constants"}, cfg.Detectors)
}

func TestLoadMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(":\n\t- bad"), 0o644))

	_, from, err := Load(dir)
	assert.Error(t, err)
	assert.NotEmpty(t, from)
}
