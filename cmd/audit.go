package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"fieldops-drive/config"
	"fieldops-drive/storage"
)

var (
	auditLimit int
	clearForce bool
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the proxy request audit log",
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent proxied requests",
	RunE:  runAuditList,
}

var auditClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the audit log",
	Long:  "Permanently delete all recorded requests from the audit database.",
	RunE:  runAuditClear,
}

func init() {
	auditListCmd.Flags().IntVarP(&auditLimit, "limit", "n", storage.DEFAULT_LIST_LIMIT, "Maximum number of entries to show")
	auditClearCmd.Flags().BoolVarP(&clearForce, "force", "f", false, "Skip confirmation prompt")

	auditCmd.AddCommand(auditListCmd)
	auditCmd.AddCommand(auditClearCmd)
}

func openAuditDB() (*storage.SQLiteDB, error) {
	if !cfg.AuditEnabled() {
		return nil, errors.New("audit database is not configured, set --audit-db or " + config.KeyAuditDB)
	}

	db := storage.NewSQLiteDB(cfg.AuditDBPath)
	if err := db.Initialize(); err != nil {
		return nil, fmt.Errorf("Failed to initialize database: %w", err)
	}
	return db, nil
}

func runAuditList(cmd *cobra.Command, args []string) error {
	db, err := openAuditDB()
	if err != nil {
		return err
	}
	defer db.Close()

	entries, err := db.ListRecent(cmd.Context(), auditLimit)
	if err != nil {
		return fmt.Errorf("Failed to list audit entries: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Showing %d most recent requests\n\n", len(entries))

	for _, e := range entries {
		target := e.Route
		if e.FileID != "" {
			target += " " + e.FileID
		}
		line := fmt.Sprintf("%s %-3d %s %d bytes %s", e.OccurredAt.Format("2006-01-02 15:04:05"), e.Status, target, e.Bytes, e.Duration)
		if e.Failed() && e.Error != "" {
			line += " error=" + e.Error
		}
		fmt.Fprintln(out, line)
	}

	return nil
}

// confirm asks a yes/no question. Closed input without an answer counts as
// no; any other read error is returned.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprint(out, question)

	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("Failed to read confirmation: %w", err)
	}

	return strings.ToLower(strings.TrimSpace(response)) == "yes", nil
}

func runAuditClear(cmd *cobra.Command, args []string) error {
	if !clearForce {
		ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "WARNING: Are you sure you want to clear the audit log? (yes/no): ")
		if err != nil {
			return err
		}
		if !ok {
			logger.Info("Cancelled.")
			return nil
		}
	}

	db, err := openAuditDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("Failed to clear database: %w", err)
	}

	logger.Info("Audit log cleared.")
	return nil
}
