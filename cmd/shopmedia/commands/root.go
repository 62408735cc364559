package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "shopmedia",
	Short: "Batch product image uploads for the shop admin API",
	Long: `Uploads a directory of image files to their matching products.
Each file name is matched to a product handle, staged with the admin API,
posted to the staged storage target, and attached as product media.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("store-domain", "", "Store domain, e.g. demo-store.myshopify.com")
	rootCmd.PersistentFlags().String("api-version", "2024-07", "Admin API version")
	rootCmd.PersistentFlags().String("images-dir", "./images", "Directory of image files to upload")
	rootCmd.PersistentFlags().String("ledger-path", ".artifacts/uploads.db", "SQLite upload ledger path")
	rootCmd.PersistentFlags().String("fsm-db-path", ".artifacts/fsm", "FSM BoltDB directory")
	rootCmd.PersistentFlags().Duration("upload-delay", time.Second, "Pause between consecutive files")
	rootCmd.PersistentFlags().Int("upload-success-status", 201, "HTTP status the storage endpoint answers on success")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text, json)")

	// The access token is deliberately not a flag: set SHOPMEDIA_ACCESS_TOKEN.
	viper.BindPFlag("store-domain", rootCmd.PersistentFlags().Lookup("store-domain"))
	viper.BindPFlag("api-version", rootCmd.PersistentFlags().Lookup("api-version"))
	viper.BindPFlag("images-dir", rootCmd.PersistentFlags().Lookup("images-dir"))
	viper.BindPFlag("ledger-path", rootCmd.PersistentFlags().Lookup("ledger-path"))
	viper.BindPFlag("fsm-db-path", rootCmd.PersistentFlags().Lookup("fsm-db-path"))
	viper.BindPFlag("upload-delay", rootCmd.PersistentFlags().Lookup("upload-delay"))
	viper.BindPFlag("upload-success-status", rootCmd.PersistentFlags().Lookup("upload-success-status"))
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log-format", rootCmd.PersistentFlags().Lookup("log-format"))
}
