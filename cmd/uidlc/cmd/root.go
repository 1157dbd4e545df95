package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "uidlc",
	Short: "UI markup compiler",
	Long: `uidlc compiles a declarative UI description language to XML object
trees (§4.8), modeled on GNOME's Blueprint compiler: a tokenizer, a
parse-tree combinator engine, a typed AST with validation and type
inference against introspection data, an expression sub-language, and
diagnostics with quick-fix code actions.

It can also run as an LSP server (uidlc lsp) for editor integration:
hover, completion, document symbols, go-to-definition, code actions,
semantic tokens, and formatting.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
