package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/Veraticus/spice-ledger/internal/config"
	"github.com/goccy/go-json"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command against a fresh database in a temp home.
func execute(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	viper.Reset()
	cfgFile = ""

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--database", dbPath}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, filepath.Join(t.TempDir(), "ledger.db"), "version")
	require.NoError(t, err)
	assert.Equal(t, "spice dev\n", out)
}

func TestSeedThenQuery(t *testing.T) {
	db := filepath.Join(t.TempDir(), "data", "ledger.db")

	out, err := execute(t, db, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 51 of 51")

	out, err = execute(t, db, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 0 of 51", "records are only inserted once")

	out, err = execute(t, db, "query", "--all", "--format", "json")
	require.NoError(t, err)

	var result struct {
		Total   int  `json:"total"`
		HasMore bool `json:"has_more"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 51, result.Total)
	assert.False(t, result.HasMore)
}

func TestQueryCmd_InvalidSort(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ledger.db")
	_, err := execute(t, db, "query", "--sort", "random")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --sort")
}

func TestInitConfig_Settings(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ledger.db")
	_, err := execute(t, db, "version")
	require.NoError(t, err)

	settings, err := loadSettings()
	require.NoError(t, err)
	assert.Equal(t, db, settings.DatabasePath)
	assert.Equal(t, 15, settings.PageSize)
	assert.Equal(t, viper.GetString(config.KeyLogLevel), settings.LogLevel)
}
