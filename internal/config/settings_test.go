package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	s, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 15, s.PageSize)
	assert.Equal(t, 300*time.Millisecond, s.Debounce)
	assert.Equal(t, 5*time.Minute, s.CacheTTL)
	assert.Equal(t, language.English, s.Locale)
	assert.True(t, s.Fallback)
	assert.True(t, filepath.IsAbs(s.DatabasePath))
	assert.Len(t, s.PipelineOptions(), 3)
}

func TestLoad_Overrides(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set(KeyPageSize, 25)
	v.Set(KeyDebounce, "150ms")
	v.Set(KeyLocale, "fr")
	v.Set(KeyDatabasePath, "/tmp/ledger.db")

	s, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 25, s.PageSize)
	assert.Equal(t, 150*time.Millisecond, s.Debounce)
	assert.Equal(t, language.French, s.Locale)
	assert.Equal(t, "/tmp/ledger.db", s.DatabasePath)
}

func TestLoad_Invalid(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set(KeyPageSize, 0)
	v.Set(KeyDatabasePath, "")

	_, err := Load(v)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
	assert.ErrorIs(t, err, common.ErrMissingConfig)

	v.Set(KeyPageSize, 10)
	v.Set(KeyDatabasePath, "/tmp/x.db")
	v.Set(KeyLocale, "not a locale!")
	_, err = Load(v)
	require.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("SPICE_TEST_DIR", "/data")

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "ledger.db"), ExpandPath("~/ledger.db"))
	assert.Equal(t, "/data/ledger.db", ExpandPath("$SPICE_TEST_DIR/ledger.db"))
	assert.Equal(t, "/abs/path", ExpandPath("/abs/path"))
}
