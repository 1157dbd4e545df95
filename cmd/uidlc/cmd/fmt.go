package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/uidl-lang/uidlc/internal/ast"
	"github.com/uidl-lang/uidlc/internal/fmtedit"
	"github.com/uidl-lang/uidlc/internal/idr"
	"github.com/uidl-lang/uidlc/internal/lexer"
	"github.com/uidl-lang/uidlc/internal/token"
)

var fmtCheck bool

var fmtCmd = &cobra.Command{
	Use:   "format [files or directories...]",
	Short: "Format UI markup source files",
	Long: `format hands each file's parsed document and token stream to the
external formatter contract (internal/fmtedit); layout rules themselves
are out of scope for this compiler (§1).

By default, format writes the reformatted text of each file that would
change to standard output; no output is printed for files that are
already formatted. With --check, it reports (via exit status 1) whether
any listed file would change, without writing anything. The formatter
hook (internal/fmtedit) returns its input unchanged, so no file is
reported as changing.

Examples:
  uidlc format window.ui
  uidlc format --check src/`,
	RunE: runFormat,
}

func init() {
	rootCmd.AddCommand(fmtCmd)
	fmtCmd.Flags().BoolVar(&fmtCheck, "check", false, "exit 1 if any file would change, without writing output")
}

func runFormat(_ *cobra.Command, args []string) error {
	var paths []string
	for _, p := range args {
		found, err := expandPaths(p)
		if err != nil {
			return err
		}
		paths = append(paths, found...)
	}

	wouldChange := 0
	for _, p := range paths {
		changed, err := formatFile(p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", p, err)
			continue
		}
		if changed {
			wouldChange++
		}
	}
	if fmtCheck && wouldChange > 0 {
		return fmt.Errorf("%d file(s) would change", wouldChange)
	}
	return nil
}

func expandPaths(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{root}, nil
	}
	var out []string
	err = filepath.Walk(root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fi.IsDir() && filepath.Ext(path) == ".blp" {
			out = append(out, path)
		}
		return nil
	})
	return out, err
}

func formatFile(path string) (changed bool, err error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	text := string(content)

	src := token.NewSource(text)
	toks, _ := lexer.Tokenize(text)
	env := ast.NewEnv(idr.NewLoader(nil))
	ui := ast.Parse(src, toks, env)

	doc := fmtedit.NewDocument(ui, toks, src)
	if fmtedit.WouldChange(doc) {
		if !fmtCheck {
			io.WriteString(os.Stdout, fmtedit.Reformat(doc))
		}
		return true, nil
	}
	return false, nil
}
