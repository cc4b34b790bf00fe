package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/fbgrabber/internal/queue"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile_Valid(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
[download]
dir = "`+dir+`"
max_concurrent = 4
resolve_timeout = "30s"

[log]
level = "debug"

[cache]
ttl = "5m"
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, queue.Config{DownloadDir: dir, MaxConcurrent: 4}, cfg.QueueConfig())
	assert.Equal(t, 30*time.Second, cfg.Download.ResolveTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
}

func TestLoadFile_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadFile("")
	require.NoError(t, err)

	assert.Equal(t, queue.DefaultMaxConcurrent, cfg.Download.MaxConcurrent)
	assert.NotEmpty(t, cfg.Download.Dir)
	assert.Equal(t, 60*time.Second, cfg.Download.ResolveTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFile_EnvSubstitution(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FBG_TEST_DIR", dir)

	cfg, err := LoadFile(writeConfig(t, `
[download]
dir = "${FBG_TEST_DIR}"
`))
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Download.Dir)
}

func TestLoadFile_MissingEnvVar(t *testing.T) {
	path := writeConfig(t, `
[download]
cookies_file = "${FBG_TEST_NONEXISTENT_VAR_12345}"
`)

	_, err := LoadFile(path)
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, []string{"FBG_TEST_NONEXISTENT_VAR_12345"}, cfgErr.Missing)
	assert.Equal(t, path, cfgErr.Path)
}

func TestLoadFile_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FBGRABBER_DOWNLOAD_DIR", dir)
	t.Setenv("FBGRABBER_MAX_CONCURRENT", "7")
	t.Setenv("FBGRABBER_LOG_LEVEL", "WARN")

	cfg, err := LoadFile(writeConfig(t, `
[download]
dir = "/ignored"
max_concurrent = 1
`))
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Download.Dir)
	assert.Equal(t, 7, cfg.Download.MaxConcurrent)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadFile_BadEnvOverride(t *testing.T) {
	t.Setenv("FBGRABBER_MAX_CONCURRENT", "many")

	_, err := LoadFile("")
	assert.Error(t, err)
}

func TestLoadFile_ValidationError(t *testing.T) {
	tmp := t.TempDir()
	regular := filepath.Join(tmp, "videos")
	require.NoError(t, os.WriteFile(regular, []byte("x"), 0o644))

	_, err := LoadFile(writeConfig(t, `
[download]
dir = "`+regular+`"
max_concurrent = 20
cookies_file = "`+filepath.Join(tmp, "cookies.txt")+`"
`))

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Len(t, cfgErr.Errors, 3)
}

func TestLoadFile_ParseError(t *testing.T) {
	_, err := LoadFile(writeConfig(t, "[download\n"))
	assert.ErrorContains(t, err, "parsing config")
}

func TestLoadFile_ReadError(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorContains(t, err, "reading config")
}

func TestLoadEnvFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("FBG_TEST_FROM_DOTENV=hello\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("FBG_TEST_FROM_DOTENV") })

	require.NoError(t, LoadEnvFiles(filepath.Join(t.TempDir(), "absent.env"), path))
	assert.Equal(t, "hello", os.Getenv("FBG_TEST_FROM_DOTENV"))
}

func TestDiscover_EnvVar(t *testing.T) {
	path := writeConfig(t, "")
	t.Setenv("FBGRABBER_CONFIG", path)

	got, err := Discover()
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestDiscover_EnvVarNotFound(t *testing.T) {
	t.Setenv("FBGRABBER_CONFIG", "/nonexistent/config.toml")

	_, err := Discover()
	assert.Error(t, err)
}

func TestDefaultPath_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, filepath.Join("/xdg", "fbgrabber", "config.toml"), DefaultPath())
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("FBG_SET", "one")
	t.Setenv("FBG_EMPTY", "")

	tests := []struct {
		name        string
		in          string
		out         string
		wantMissing []string
	}{
		{"simple", "v = ${FBG_SET}", "v = one", nil},
		{"set but empty", "v = '${FBG_EMPTY}'", "v = ''", nil},
		{"default", "v = ${FBG_EMPTY:-fallback}", "v = fallback", nil},
		{"default overridden", "v = ${FBG_SET:-fallback}", "v = one", nil},
		{"missing", "v = ${FBG_UNSET_12345}", "v = ${FBG_UNSET_12345}", []string{"FBG_UNSET_12345"}},
		{"required", "v = ${FBG_EMPTY:?cookies needed}", "v = ${FBG_EMPTY:?cookies needed}", []string{"FBG_EMPTY: cookies needed"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, missing := substituteEnvVars(tt.in)
			assert.Equal(t, tt.out, out)
			assert.Equal(t, tt.wantMissing, missing)
		})
	}
}
