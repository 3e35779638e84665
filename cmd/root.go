package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "photobook",
	Short: "Lay out photos as print-ready photobook pages",
	Long: `Photobook turns an ordered set of photos and PDF inserts into one
print-ready PDF per page, packed into a zip archive for the print shop.

Run "photobook serve" for the HTTP API or "photobook export" to build an
archive straight from files on disk.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
