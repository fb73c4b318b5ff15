package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DEFAULT_PORT            = "5000"
	DEFAULT_AUDIT_RETENTION = 30 * 24 * time.Hour
	DEFAULT_ENV             = "dev"
)

// Viper keys, each bound to the environment variable of the same name.
const (
	KeyPort           = "PORT"
	KeyAPIKey         = "GOOGLE_API_KEY"
	KeyFolderID       = "GOOGLE_DRIVE_FOLDER_ID"
	KeyDriveEndpoint  = "DRIVE_ENDPOINT"
	KeyAuditDB        = "AUDIT_DB"
	KeyAuditRetention = "AUDIT_RETENTION"
	KeyEnv            = "APP_ENV"
)

// Config is read once at startup and handed to constructors by value.
type Config struct {
	Port           string
	APIKey         string
	FolderID       string
	DriveEndpoint  string
	AuditDBPath    string
	AuditRetention time.Duration
	Env            string
}

func (c Config) Addr() string {
	return ":" + c.Port
}

func (c Config) AuditEnabled() bool {
	return c.AuditDBPath != ""
}

// NewViper returns a viper instance with defaults set and every key bound to
// its environment variable. Flags are bound by the caller.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyPort, DEFAULT_PORT)
	v.SetDefault(KeyAuditRetention, DEFAULT_AUDIT_RETENTION.String())
	v.SetDefault(KeyEnv, DEFAULT_ENV)

	for _, key := range []string{KeyPort, KeyAPIKey, KeyFolderID, KeyDriveEndpoint, KeyAuditDB, KeyAuditRetention, KeyEnv} {
		_ = v.BindEnv(key)
	}
	return v
}

// LoadDotEnv loads the given .env files into the process environment.
// Variables already set win, and missing files are not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

func Load(v *viper.Viper) (Config, error) {
	retention, err := time.ParseDuration(v.GetString(KeyAuditRetention))
	if err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", KeyAuditRetention, err)
	}
	if retention < 0 {
		return Config{}, fmt.Errorf("invalid %s: must not be negative", KeyAuditRetention)
	}

	return Config{
		Port:           v.GetString(KeyPort),
		APIKey:         v.GetString(KeyAPIKey),
		FolderID:       v.GetString(KeyFolderID),
		DriveEndpoint:  v.GetString(KeyDriveEndpoint),
		AuditDBPath:    v.GetString(KeyAuditDB),
		AuditRetention: retention,
		Env:            v.GetString(KeyEnv),
	}, nil
}

// Warnings lists settings that are missing but not fatal. Drive rejects
// requests without them, which surfaces as a 500 from the proxy.
func (c Config) Warnings() []string {
	var warnings []string
	if c.APIKey == "" {
		warnings = append(warnings, KeyAPIKey+" is not set")
	}
	if c.FolderID == "" {
		warnings = append(warnings, KeyFolderID+" is not set")
	}
	return warnings
}
