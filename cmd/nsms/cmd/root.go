package cmd

import (
	"fmt"
	"os"

	"github.com/msto63/nsms/pkg/core/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile      string
	verbose      bool
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "nsms",
	Short: "nsms - SMS command platform",
	Long: `nsms interprets keyword SMS commands such as

  REG James Kamau 12.03.1977
  REP 3 malaria
  REMIND 7

and answers each sender with a localized reply. Messages are logged
to SQLite and can be inspected, exported and replayed from here.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		printError(rootCmd.Name(), err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $NSMS_CONFIG or ./configs/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format: table, json or yaml")
}

// loadConfig reads --config, then the default locations. Without any file
// the built-in defaults apply.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		if verbose {
			fmt.Fprintf(os.Stderr, "no config loaded (%v), using defaults\n", err)
		}
		return config.Default(), nil
	}
	return cfg, nil
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
}
