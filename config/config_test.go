package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{KeyPort, KeyAPIKey, KeyFolderID, KeyDriveEndpoint, KeyAuditDB, KeyAuditRetention, KeyEnv} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load(NewViper())
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, ":5000", cfg.Addr())
	assert.Equal(t, DEFAULT_AUDIT_RETENTION, cfg.AuditRetention)
	assert.Equal(t, "dev", cfg.Env)
	assert.False(t, cfg.AuditEnabled())
	assert.Len(t, cfg.Warnings(), 2)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv(KeyPort, "8080")
	t.Setenv(KeyAPIKey, "api-key")
	t.Setenv(KeyFolderID, "folder-1")
	t.Setenv(KeyAuditDB, "audit.db")
	t.Setenv(KeyAuditRetention, "48h")

	cfg, err := Load(NewViper())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "api-key", cfg.APIKey)
	assert.Equal(t, "folder-1", cfg.FolderID)
	assert.Equal(t, 48*time.Hour, cfg.AuditRetention)
	assert.True(t, cfg.AuditEnabled())
	assert.Empty(t, cfg.Warnings())
}

func TestLoad_FlagOverridesEnvironment(t *testing.T) {
	t.Setenv(KeyPort, "8080")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("port", "", "")
	require.NoError(t, flags.Parse([]string{"--port", "9090"}))

	v := NewViper()
	require.NoError(t, v.BindPFlag(KeyPort, flags.Lookup("port")))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
}

func TestLoad_InvalidRetention(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "not a duration", value: "monthly"},
		{name: "negative", value: "-1h"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(KeyAuditRetention, tt.value)

			_, err := Load(NewViper())
			assert.Error(t, err)
			assert.Contains(t, err.Error(), KeyAuditRetention)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("GOOGLE_DRIVE_FOLDER_ID=from-dotenv\nPORT=7000\n"), 0600))

	t.Setenv(KeyPort, "6000")
	t.Setenv(KeyFolderID, "")
	os.Unsetenv(KeyFolderID)

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))

	cfg, err := Load(NewViper())
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.FolderID)
	// Already-set variables are not overwritten.
	assert.Equal(t, "6000", cfg.Port)
	os.Unsetenv(KeyFolderID)
}
