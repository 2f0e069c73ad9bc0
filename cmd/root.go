package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"robotoff/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "robotoff",
	Short: "Robotoff - OCR text mining for food product images",
	Long: `Robotoff mines structured predictions from OCR results of food
product photographs: packager codes, labels, weights, expiration dates,
brands, stores, allergen traces, packaging, origins and more.

Images are annotated once with Google Cloud Vision and archived as raw
JSON envelopes; the predict command can then be re-run over the archive
whenever the extraction rules improve.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("Robotoff CLI executed")

		fmt.Println("Welcome to Robotoff!")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
