package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fieldops-drive/auth"
	"fieldops-drive/config"
	"fieldops-drive/log"
)

var (
	credentialsPath string
	tokenPath       string
	envFile         string

	v      *viper.Viper
	cfg    config.Config
	logger logrus.FieldLogger
)

var rootCmd = &cobra.Command{
	Use:   "fieldops-drive",
	Short: "Google Drive proxy and OAuth bootstrap for field operations",
	Long: `Serves the field-operations KML folder from Google Drive to the browser
without exposing the API key, and bootstraps the OAuth token used by
Drive-authenticated tooling.

Configuration is read from flags, the environment and an optional .env file.`,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

func init() {
	v = config.NewViper()

	rootCmd.PersistentFlags().StringVar(&credentialsPath, "credentials", auth.DEFAULT_CREDENTIALS_PATH, "Path to Google OAuth credentials")
	rootCmd.PersistentFlags().StringVar(&tokenPath, "token", auth.DEFAULT_TOKEN_PATH, "Path to OAuth token cache")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file")
	rootCmd.PersistentFlags().String("audit-db", "", "Path to SQLite audit database (empty disables auditing)")
	rootCmd.PersistentFlags().String("env", "", "Runtime environment (prod switches to JSON logs)")

	_ = v.BindPFlag(config.KeyAuditDB, rootCmd.PersistentFlags().Lookup("audit-db"))
	_ = v.BindPFlag(config.KeyEnv, rootCmd.PersistentFlags().Lookup("env"))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(auditCmd)
}

func initConfig(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}

	var err error
	cfg, err = config.Load(v)
	if err != nil {
		return fmt.Errorf("Failed to load configuration: %w", err)
	}

	logger = log.New(cfg.Env)
	return nil
}

// bindFlag binds a command-local flag to a config key. Called from PreRunE
// so commands sharing a flag name do not overwrite each other's binding.
func bindFlag(cmd *cobra.Command, key, flag string) error {
	if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
		return err
	}

	var err error
	cfg, err = config.Load(v)
	return err
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
