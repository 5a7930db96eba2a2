package cmd

import (
	"fmt"
	"os"

	"github.com/segmentio/encoding/json"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tola-lang/tola/pkg/tola/ast"
	"github.com/tola-lang/tola/pkg/tola/compiler"
)

// parseCmd represents the parse command.
var parseCmd = &cobra.Command{
	Use:   "parse [flags] file...",
	Short: "Lex and parse one or more Tola source files.",
	Long:  "Lex and parse one or more Tola source files without type-checking, optionally dumping the AST as JSON.",
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

		if GetFlag(cmd, "json") {
			dumpJSON(comp, args)
		}

		if printDiagnostics(cmd, comp.Errors()) {
			os.Exit(1)
		}
	},
}

// astDump is the JSON-friendly shape of one parsed file, keyed by its
// source path, mirroring what a "tola parse --json" consumer (e.g. an
// editor integration that doesn't want to run the LSP) would expect.
type astDump struct {
	Path         string     `json:"path"`
	Declarations []nodeDump `json:"declarations"`
}

type nodeDump struct {
	Kind     ast.Kind   `json:"kind"`
	Children []nodeDump `json:"children,omitempty"`
}

func dumpJSON(comp *compiler.Compiler, paths []string) {
	dumps := make([]astDump, 0, len(paths))

	for _, path := range paths {
		file, _, ok := comp.File(path)
		if !ok {
			continue
		}

		decls := file.Declarations()
		nodes := make([]nodeDump, len(decls))

		for i, id := range decls {
			nodes[i] = dumpNode(file, id)
		}

		dumps = append(dumps, astDump{Path: path, Declarations: nodes})
	}

	out, err := json.MarshalIndent(dumps, "", "  ")
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	fmt.Println(string(out))
}

func dumpNode(file *ast.File, id ast.NodeID) nodeDump {
	n := file.Get(id)
	children := make([]nodeDump, len(n.Children))

	for i, ch := range n.Children {
		children[i] = dumpNode(file, ch)
	}

	return nodeDump{Kind: n.Kind, Children: children}
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().Bool("json", false, "dump the parsed AST as JSON instead of only reporting diagnostics")
}
