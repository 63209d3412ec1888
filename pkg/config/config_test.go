package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, []string{
		"https://discord.com/invite/fUKMN3q",
		"https://discord.gg/4ZgjkRx",
	}, cfg.Rewrite.Targets)
	assert.Equal(t, "https://discord.gg/mrJnesCk2Z", cfg.Rewrite.Replacement)
	assert.Equal(t, 200, cfg.Run.MaxPerRun)
	assert.False(t, cfg.Run.DryRun)
	assert.Equal(t, time.Second, cfg.Run.WriteDelay)
	assert.Equal(t, 50, cfg.Run.PageSize)
	assert.Equal(t, "info", cfg.Logging.Level)

	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("YTRELINK_PLAYLIST_ID", "UUabc")
	t.Setenv("YTRELINK_TARGETS", "https://old.example/a, https://old.example/b,")
	t.Setenv("YTRELINK_REPLACEMENT", "https://new.example")
	t.Setenv("YTRELINK_MAX_PER_RUN", "0")
	t.Setenv("YTRELINK_DRY_RUN", "true")
	t.Setenv("YTRELINK_WRITE_DELAY", "250ms")
	t.Setenv("YTRELINK_CHECKPOINT_FILE", "/tmp/state.json")
	t.Setenv("YTRELINK_BACKUP_FILE", "/tmp/backup.csv")
	t.Setenv("YTRELINK_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "UUabc", cfg.YouTube.PlaylistID)
	assert.Equal(t, []string{"https://old.example/a", "https://old.example/b"}, cfg.Rewrite.Targets)
	assert.Equal(t, "https://new.example", cfg.Rewrite.Replacement)
	assert.Equal(t, 0, cfg.Run.MaxPerRun)
	assert.True(t, cfg.Run.DryRun)
	assert.Equal(t, 250*time.Millisecond, cfg.Run.WriteDelay)
	assert.Equal(t, "/tmp/state.json", cfg.State.CheckpointFile)
	assert.Equal(t, "/tmp/backup.csv", cfg.State.BackupFile)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromEnvInvalidValues(t *testing.T) {
	t.Setenv("YTRELINK_MAX_PER_RUN", "lots")
	t.Setenv("YTRELINK_WRITE_DELAY", "soon")

	cfg := DefaultConfig()
	err := cfg.LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YTRELINK_MAX_PER_RUN")
	assert.Contains(t, err.Error(), "YTRELINK_WRITE_DELAY")
	assert.Equal(t, 200, cfg.Run.MaxPerRun)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "no targets",
			mutate:  func(c *Config) { c.Rewrite.Targets = nil },
			wantErr: "at least one rewrite target",
		},
		{
			name:    "empty target",
			mutate:  func(c *Config) { c.Rewrite.Targets = []string{"https://old", ""} },
			wantErr: "rewrite target 1 is empty",
		},
		{
			name: "replacement contains target",
			mutate: func(c *Config) {
				c.Rewrite.Targets = []string{"discord.gg/abc"}
				c.Rewrite.Replacement = "https://discord.gg/abcdef"
			},
			wantErr: "not be idempotent",
		},
		{
			name:    "missing replacement",
			mutate:  func(c *Config) { c.Rewrite.Replacement = "" },
			wantErr: "replacement is required",
		},
		{
			name:    "negative ceiling",
			mutate:  func(c *Config) { c.Run.MaxPerRun = -1 },
			wantErr: "max per run",
		},
		{
			name:    "page size too large",
			mutate:  func(c *Config) { c.Run.PageSize = 51 },
			wantErr: "page size",
		},
		{
			name:    "negative delay",
			mutate:  func(c *Config) { c.Run.WriteDelay = -time.Second },
			wantErr: "write delay",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "chatty" },
			wantErr: "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"playlist":    "UUxyz",
		"targets":     []string{"a", "b"},
		"replacement": "c",
		"max-per-run": 10,
		"dry-run":     true,
		"write-delay": 2 * time.Second,
		"backup-file": "backup.csv",
	})

	assert.Equal(t, "UUxyz", cfg.YouTube.PlaylistID)
	assert.Equal(t, []string{"a", "b"}, cfg.Rewrite.Targets)
	assert.Equal(t, "c", cfg.Rewrite.Replacement)
	assert.Equal(t, 10, cfg.Run.MaxPerRun)
	assert.True(t, cfg.Run.DryRun)
	assert.Equal(t, 2*time.Second, cfg.Run.WriteDelay)
	assert.Equal(t, "backup.csv", cfg.State.BackupFile)
	assert.Empty(t, cfg.State.CheckpointFile)
}

func TestSaveAndLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Run.MaxPerRun = 25
	cfg.Run.WriteDelay = 1500 * time.Millisecond
	cfg.Rewrite.Targets = []string{"https://old.example"}
	require.NoError(t, cfg.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, 25, loaded.Run.MaxPerRun)
	assert.Equal(t, 1500*time.Millisecond, loaded.Run.WriteDelay)
	assert.Equal(t, []string{"https://old.example"}, loaded.Rewrite.Targets)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `run:
  max_per_run: 5
  write_delay: 3s
rewrite:
  targets: ["https://old.example"]
  replacement: "https://new.example"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("YTRELINK_MAX_PER_RUN", "7")

	cfg, err := Load(path, map[string]interface{}{"dry-run": true})
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Run.MaxPerRun, "env overrides file")
	assert.Equal(t, 3*time.Second, cfg.Run.WriteDelay, "file overrides defaults")
	assert.True(t, cfg.Run.DryRun, "flags override everything")
	assert.Equal(t, "https://new.example", cfg.Rewrite.Replacement)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("run:\n  page_size: 500\n"), 0644))

	_, err := Load(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page size")
}

func TestResolveDataPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	explicit, err := ResolveDataPath("/srv/state.json", "state.json")
	require.NoError(t, err)
	assert.Equal(t, "/srv/state.json", explicit)

	def, err := ResolveDataPath("", "state.json")
	require.NoError(t, err)
	assert.Equal(t, AppName, filepath.Base(filepath.Dir(def)))
	assert.Equal(t, "state.json", filepath.Base(def))
}
