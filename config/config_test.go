package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kogsector/kgfusion/apperr"
)

func testLoader() *Loader {
	return NewLoader(slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := testLoader().Load("")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrConfiguration)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/kgfusion")
	cfg, err := testLoader().Load("")
	require.NoError(t, err)

	assert.Equal(t, "3018", cfg.Port)
	assert.Equal(t, 1024, cfg.VectorDimension)
	assert.Equal(t, 0.75, cfg.SimilarityThreshold)
	assert.True(t, cfg.EnableTemporalProximity)
}

func TestLoad_EnvOverridesDefault(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/kgfusion")
	t.Setenv("PORT", "9090")
	t.Setenv("SIMILARITY_THRESHOLD", "0.5")
	t.Setenv("ENABLE_AUTHOR_OVERLAP", "false")

	cfg, err := testLoader().Load("")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 0.5, cfg.SimilarityThreshold)
	assert.False(t, cfg.EnableAuthorOverlap)
}

func TestLoad_FileThenEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"4000\"\nhost: file-host\n"), 0o644))

	t.Setenv("DATABASE_URL", "postgres://localhost/kgfusion")
	t.Setenv("PORT", "5000")

	cfg, err := testLoader().Load(path)
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port, "env wins over file")
	assert.Equal(t, "file-host", cfg.Host, "file wins over default")
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/kgfusion")
	_, err := testLoader().Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
}
