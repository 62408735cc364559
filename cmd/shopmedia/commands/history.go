package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wovenhouse/shopmedia/internal/config"
	"github.com/wovenhouse/shopmedia/internal/logging"
	"github.com/wovenhouse/shopmedia/pkg/db"
	"github.com/wovenhouse/shopmedia/pkg/errors"
)

var (
	historyRun   string
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded upload attempts",
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVar(&historyRun, "run", "", "Show a single run by id")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "Maximum rows to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "config load failed")
	}

	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	// Ensure ledger directory exists
	if err := ensureDirectories(cfg.LedgerPath, ""); err != nil {
		return err
	}

	repo, err := db.NewRepository(cfg.LedgerPath)
	if err != nil {
		return errors.Wrap(err, "db init failed")
	}
	defer repo.Close()

	var uploads []*db.Upload
	if historyRun != "" {
		uploads, err = repo.ListByRun(historyRun)
	} else {
		uploads, err = repo.ListRecent(historyLimit)
	}
	if err != nil {
		return errors.Wrap(err, "list failed")
	}

	if len(uploads) == 0 {
		fmt.Println("No uploads recorded")
		return nil
	}

	fmt.Printf("%-30s %-10s %-35s %-28s %-20s\n", "FILE", "STATUS", "PRODUCT", "MEDIA", "CREATED")
	fmt.Println("----------------------------------------------------------------------------------------------------------------------")

	for _, up := range uploads {
		product := up.ProductID
		if product == "" {
			product = "-"
		}
		media := up.MediaID
		if media == "" {
			media = "-"
		}

		fmt.Printf("%-30s %-10s %-35s %-28s %-20s\n",
			up.FileName, up.Status, product, media, up.CreatedAt)
	}

	return nil
}
