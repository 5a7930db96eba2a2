package cmd

import (
	"fmt"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tola-lang/tola/pkg/tola/diag"
)

// Version is filled when building with make, but *not* when installing via
// "go install".
var Version string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "tola",
	Short: "A compiler front-end for the Tola language.",
	Long:  "A compiler front-end (lexer, parser, type checker) for the Tola language.",
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "version") {
			fmt.Print("tola ")

			if Version != "" {
				// Built via "make"
				fmt.Printf("%s", Version)
			} else if info, ok := debug.ReadBuildInfo(); ok {
				// Built via "go install"
				fmt.Printf("%s", info.Main.Version)
			} else {
				fmt.Print("(unknown version)")
			}

			fmt.Println()

			return
		}

		_ = cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "report version of this executable")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable ANSI colour in diagnostic output")
	rootCmd.PersistentFlags().Uint("max-errors", 0, "stop printing diagnostics after this many (0 = unlimited)")
}

// configureLogging raises the logrus level to debug when --verbose is set.
func configureLogging(cmd *cobra.Command) {
	if GetFlag(cmd, "verbose") {
		log.SetLevel(log.DebugLevel)
	}
}

// wantColor resolves whether diagnostic output should use ANSI colour:
// --no-color always wins, otherwise the default is whether stdout is a
// terminal.
func wantColor(cmd *cobra.Command) bool {
	if GetFlag(cmd, "no-color") {
		return false
	}

	return diag.DefaultColor()
}
