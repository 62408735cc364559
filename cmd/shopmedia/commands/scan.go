package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wovenhouse/shopmedia/internal/config"
	"github.com/wovenhouse/shopmedia/internal/logging"
	"github.com/wovenhouse/shopmedia/pkg/errors"
	"github.com/wovenhouse/shopmedia/pkg/images"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List the files an upload run would process, without uploading",
	RunE:  runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "config load failed")
	}

	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	files, err := images.Enumerate(cfg.ImagesDir)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		fmt.Printf("No image files found in %s\n", cfg.ImagesDir)
		return nil
	}

	fmt.Printf("%-30s %-25s %-15s %10s\n", "FILE", "HANDLE", "MIME", "SIZE")
	fmt.Println("----------------------------------------------------------------------------------")
	for _, f := range files {
		fmt.Printf("%-30s %-25s %-15s %10d\n", f.Name, f.Handle, f.MimeType, f.Size)
	}
	fmt.Printf("\n%d files\n", len(files))

	return nil
}
