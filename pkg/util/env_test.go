package util

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("AVISO_TEST_INT", "42")
	t.Setenv("AVISO_TEST_BOOL", "true")
	t.Setenv("AVISO_TEST_DUR", "90s")
	t.Setenv("AVISO_TEST_SECS", "15")

	assert.Equal(t, int64(42), GetIntEnv("AVISO_TEST_INT"))
	assert.True(t, GetBoolEnv("AVISO_TEST_BOOL"))
	assert.Equal(t, 90*time.Second, GetDurationEnv("AVISO_TEST_DUR"))
	assert.Equal(t, 15*time.Second, GetDurationEnv("AVISO_TEST_SECS"))
	assert.Equal(t, time.Duration(0), GetDurationEnv("AVISO_TEST_MISSING"))
	assert.Equal(t, int64(0), GetIntEnv("AVISO_TEST_MISSING"))
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	assert.Error(t, LoadEnv("test"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.test"), []byte("AVISO_FROM_FILE=unit\n"), 0o644))
	os.Unsetenv("AVISO_FROM_FILE")
	t.Cleanup(func() { os.Unsetenv("AVISO_FROM_FILE") })

	require.NoError(t, LoadEnv("test"))
	assert.Equal(t, "unit", GetEnv("AVISO_FROM_FILE"))
}

func TestInitDatabaseDefaultsToSQLite(t *testing.T) {
	db, err := InitDatabase("", "")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.NoError(t, sqlDB.Ping())
}
