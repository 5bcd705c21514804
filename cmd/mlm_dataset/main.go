// Command mlm_dataset turns masked language modeling corpora into indexed
// datasets.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mlm_dataset",
	Short: "Build masked language modeling datasets",
	Long: "mlm_dataset reads corpora with [MASK] placeholders, indexes them " +
		"against a vocabulary, and writes the ids as JSON lines.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		pretty, _ := cmd.Flags().GetBool("pretty")
		return setupLogging(level, pretty)
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "",
		"config file (default ./mlm_dataset.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info",
		"one of trace, debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("pretty", true,
		"human readable console logging")
}

// setupLogging configures the global zerolog logger.
func setupLogging(level string, pretty bool) error {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(parsed)
	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
