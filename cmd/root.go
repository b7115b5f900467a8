// Package cmd wires the catalogsmith command tree.
package cmd

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Version is stamped at build time.
var Version = "development"

var debug bool

var rootCmd = &cobra.Command{
	Use:   "catalogsmith",
	Short: "Rebuild the published catalogs of a software-distribution repo",
	Long: `catalogsmith reads the per-item package-description records of a
software-distribution repository, validates their artifact references,
hashes icon assets, and republishes the derived catalog documents.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.InfoLevel
		if debug {
			level = zerolog.DebugLevel
		}
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).
			With().Timestamp().Logger().
			Hook(errorHook{})
	},
}

// errorHook mirrors error-level log events through pterm so they stand out
// on the terminal alongside the structured log stream.
type errorHook struct{}

func (h errorHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	if level == zerolog.ErrorLevel {
		pterm.Error.Println(msg)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "print debug level logs")
	rootCmd.AddCommand(newBuildCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// Execute runs the CLI root.
func Execute() error {
	return rootCmd.Execute()
}
