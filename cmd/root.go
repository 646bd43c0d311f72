package cmd

import (
	"os"

	"github.com/sage/fpromise/cmd/bench"
	"github.com/sage/fpromise/internal/version"
	"github.com/sage/fpromise/pkg/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:     "fpromise",
	Short:   "Fiber-based synchronous-looking control flow",
	Version: version.Full(),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logLevel, err := log.ParseLevel(viper.GetString("log.level"))
		if err != nil {
			return err
		}

		log.Init(os.Stderr, logLevel)
		return nil
	},
}

func init() {
	// Flags
	rootCmd.PersistentFlags().StringP("log-level", "", "info", "Log level, can be one of: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolP("ignore-asserts", "", false, "Ignore assertion failures")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("ignore-asserts", rootCmd.PersistentFlags().Lookup("ignore-asserts"))

	// Add subcommands
	rootCmd.AddCommand(bench.NewCmd())

	// Set default output
	rootCmd.SetOut(os.Stdout)
	rootCmd.SetErr(os.Stderr)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
