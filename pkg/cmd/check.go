package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tola-lang/tola/pkg/tola/compiler"
	"github.com/tola-lang/tola/pkg/tola/diag"
)

// checkCmd represents the check command.
var checkCmd = &cobra.Command{
	Use:   "check [flags] file...",
	Short: "Lex, parse and type-check one or more Tola source files.",
	Long:  "Lex, parse and type-check one or more Tola source files, printing any diagnostics.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}

		configureLogging(cmd)

		comp := compiler.New()

		for _, path := range args {
			log.Debugf("reading %s", path)
			comp.ReadAndParse(path)
		}

		comp.CheckTypes()
		comp.GenerateOutput(false)

		if printDiagnostics(cmd, comp.Errors()) {
			os.Exit(1)
		}
	},
}

// printDiagnostics renders every diagnostic in diags to stdout, honouring
// --max-errors. It reports whether any diagnostic was printed, so callers
// can set a non-zero exit code.
func printDiagnostics(cmd *cobra.Command, diags []diag.Diagnostic) bool {
	max := GetUint(cmd, "max-errors")
	color := wantColor(cmd)

	for i, d := range diags {
		if max > 0 && uint(i) >= max {
			fmt.Printf("... %d more diagnostic(s) omitted\n", uint(len(diags))-max)
			break
		}

		fmt.Print(d.Render(color))
	}

	return len(diags) > 0
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
