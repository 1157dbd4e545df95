package cmd

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/uidl-lang/uidlc/internal/idr"
	"github.com/uidl-lang/uidlc/internal/lsp"
	"go.uber.org/zap"
)

var lspTypelibPaths []string

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Run a Language Server Protocol server over stdio",
	Long: `lsp speaks LSP (§4.9, §6) over standard input/output: incremental
text sync, hover, completion, document symbols, go-to-definition, code
actions, semantic tokens, formatting, and the custom
textDocument/x-blueprint-compile and x-blueprint/decompile requests.`,
	RunE: runLSP,
}

func init() {
	rootCmd.AddCommand(lspCmd)
	lspCmd.Flags().StringArrayVar(&lspTypelibPaths, "typelib-path", nil, "additional directory to search for introspection data (repeatable)")
}

func runLSP(cmd *cobra.Command, _ []string) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	store := lsp.NewStore(idr.NewLoader(lspTypelibPaths))
	srv := lsp.NewServer(store)

	return lsp.Serve(context.Background(), stdio{os.Stdin, os.Stdout}, srv, logger)
}

// stdio pairs the process's standard streams into the single
// io.ReadWriteCloser jsonrpc2.NewStream expects.
type stdio struct {
	io.Reader
	io.Writer
}

func (stdio) Close() error { return nil }
