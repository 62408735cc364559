package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/superfly/fsm"
	"github.com/wovenhouse/shopmedia/internal/config"
	"github.com/wovenhouse/shopmedia/internal/logging"
	"github.com/wovenhouse/shopmedia/pkg/db"
	"github.com/wovenhouse/shopmedia/pkg/errors"
	appfsm "github.com/wovenhouse/shopmedia/pkg/fsm"
	"github.com/wovenhouse/shopmedia/pkg/images"
	"github.com/wovenhouse/shopmedia/pkg/shopify"
	"github.com/wovenhouse/shopmedia/pkg/storage"
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload every image in the images directory to its matching product",
	RunE:  runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "config load failed")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "config invalid")
	}

	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	// The whole run is refused when the images directory cannot be read.
	files, err := images.Enumerate(cfg.ImagesDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Printf("No image files found in %s\n", cfg.ImagesDir)
		return nil
	}

	if err := ensureDirectories(cfg.LedgerPath, cfg.FSMDBPath); err != nil {
		return err
	}

	repo, err := db.NewRepository(cfg.LedgerPath)
	if err != nil {
		return errors.Wrap(err, "db init failed")
	}
	defer repo.Close()

	manager, err := fsm.New(fsm.Config{DBPath: cfg.FSMDBPath})
	if err != nil {
		return errors.Wrap(err, "FSM manager failed")
	}
	defer manager.Shutdown(10 * time.Second)

	shop := shopify.New(cfg.StoreDomain, cfg.APIVersion, cfg.AccessToken)
	uploader := storage.NewUploader(cfg.UploadSuccessStatus)

	machine := appfsm.NewMachine(repo, shop, uploader)
	start, _, err := machine.Register(ctx, manager)
	if err != nil {
		return errors.Wrap(err, "FSM register failed")
	}

	runID := uuid.New().String()
	driver := appfsm.NewDriver(start, manager, repo, cfg.UploadDelay)

	summary, err := driver.Run(ctx, runID, files)
	if err != nil {
		return errors.Wrap(err, "run failed")
	}

	printRunReport(repo, runID, summary)
	return nil
}

func printRunReport(repo *db.Repository, runID string, summary *appfsm.Summary) {
	fmt.Printf("\nRun %s: %d attempted, %d succeeded, %d failed\n",
		runID, summary.Attempted, summary.Succeeded, summary.Failed)

	rows, err := repo.ListByRun(runID)
	if err != nil {
		return
	}

	fmt.Printf("%-30s %-10s %-35s %s\n", "FILE", "STATUS", "PRODUCT", "ERROR")
	fmt.Println("--------------------------------------------------------------------------------------------")
	for _, row := range rows {
		product := row.ProductID
		if product == "" {
			product = "-"
		}
		errMsg := row.ErrorMessage
		if errMsg == "" {
			errMsg = "-"
		}
		fmt.Printf("%-30s %-10s %-35s %s\n", row.FileName, row.Status, product, errMsg)
	}
}
