package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return dir
}

func TestLoadDirDefaultsWhenMissing(t *testing.T) {
	cfg, err := LoadDir(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultSuffix, cfg.Output.Suffix)
	assert.Nil(t, cfg.Aliases())
}

func TestLoadDir(t *testing.T) {
	dir := writeConfig(t, `
output:
  suffix: _concrete.gen.go
packages:
  - path: github.com/acme/exchanges
  - path: github.com/acme/strategies
    alias: strat
dispatch:
  - enums: [Exchange, Strategy]
    func: RunSystem
    name: Launch
`)
	cfg, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "_concrete.gen.go", cfg.Output.Suffix)

	aliases := cfg.Aliases()
	assert.Equal(t, "github.com/acme/exchanges", aliases["exchanges"])
	assert.Equal(t, "github.com/acme/strategies", aliases["strat"])

	require.Len(t, cfg.Dispatch, 1)
	assert.Equal(t, []string{"Exchange", "Strategy"}, cfg.Dispatch[0].Enums)
	assert.Equal(t, "RunSystem", cfg.Dispatch[0].Func)
	assert.Equal(t, "Launch", cfg.Dispatch[0].Name)
}

func TestLoadRejectsTooManyEnums(t *testing.T) {
	dir := writeConfig(t, `
dispatch:
  - enums: [A, B, C, D, E, F]
    func: Run
`)
	_, err := LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max")
}

func TestLoadRejectsMissingFunc(t *testing.T) {
	dir := writeConfig(t, `
dispatch:
  - enums: [A]
`)
	_, err := LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")
}

func TestLoadRejectsBadYAML(t *testing.T) {
	dir := writeConfig(t, "output: [")
	_, err := LoadDir(dir)
	require.Error(t, err)
}

func TestLoadRejectsMissingPackagePath(t *testing.T) {
	dir := writeConfig(t, `
packages:
  - alias: x
`)
	_, err := LoadDir(dir)
	require.Error(t, err)
}
