package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tola-lang/tola/pkg/tola/lsp"
)

// lspCmd represents the lsp command.
var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Start an LSP server over stdio publishing Tola diagnostics.",
	Long:  "Start a Language Server Protocol server over stdio that publishes diagnostics for Tola source files as they are opened and edited.",
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd)

		server := lsp.NewServer()
		if err := server.Run(stdio{}); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

// stdio adapts os.Stdin/os.Stdout into the io.ReadWriteCloser the LSP
// server's JSON-RPC2 stream expects.
type stdio struct{}

func (stdio) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdio) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdio) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}

	return os.Stdout.Close()
}

func init() {
	rootCmd.AddCommand(lspCmd)
}
