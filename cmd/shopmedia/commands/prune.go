package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wovenhouse/shopmedia/internal/config"
	"github.com/wovenhouse/shopmedia/internal/logging"
	"github.com/wovenhouse/shopmedia/pkg/db"
	"github.com/wovenhouse/shopmedia/pkg/errors"
)

var pruneDays int

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old rows from the upload ledger",
	Long: `Removes ledger rows older than the cutoff. Only local bookkeeping is
touched; media already attached to products is never removed.`,
	RunE: runPrune,
}

func init() {
	rootCmd.AddCommand(pruneCmd)
	pruneCmd.Flags().IntVar(&pruneDays, "older-than", 30, "Remove rows older than this many days")
}

func runPrune(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "config load failed")
	}

	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if pruneDays <= 0 {
		return fmt.Errorf("--older-than must be positive")
	}

	if err := ensureDirectories(cfg.LedgerPath, ""); err != nil {
		return err
	}

	repo, err := db.NewRepository(cfg.LedgerPath)
	if err != nil {
		return errors.Wrap(err, "db init failed")
	}
	defer repo.Close()

	removed, err := repo.DeleteOlderThan(pruneDays)
	if err != nil {
		return errors.Wrap(err, "prune failed")
	}

	fmt.Printf("Removed %d ledger rows older than %d days\n", removed, pruneDays)
	return nil
}
