package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/selimozcann/PhishHunter/internal/banner"
	"github.com/selimozcann/PhishHunter/internal/config"
)

// Version is set at build time with -ldflags.
var Version = "dev"

var (
	configFile string
	noBanner   bool
)

var rootCmd = &cobra.Command{
	Use:           "phishhunter",
	Short:         "Follow URL redirects and score phishing risk",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if !noBanner {
			banner.Fprint(cmd.ErrOrStderr(), Version)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file layered over the defaults")
	rootCmd.PersistentFlags().BoolVar(&noBanner, "no-banner", false, "Do not print the banner")
	rootCmd.AddCommand(newScanCmd(), newServeCmd())
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func newLogger() *log.Logger {
	return log.New(os.Stderr, "[phishhunter] ", log.LstdFlags)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[-] Error: %v\n", err)
		os.Exit(1)
	}
}
