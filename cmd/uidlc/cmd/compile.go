package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/uidl-lang/uidlc/internal/ast"
	"github.com/uidl-lang/uidlc/internal/diag"
	"github.com/uidl-lang/uidlc/internal/idr"
	"github.com/uidl-lang/uidlc/internal/lexer"
	"github.com/uidl-lang/uidlc/internal/token"
	"github.com/uidl-lang/uidlc/internal/xmlout"
)

var (
	compileOutputFile      string
	compileTypelibPaths    []string
	compileGeneratedNotice string
)

var compileCmd = &cobra.Command{
	Use:   "compile <in>",
	Short: "Compile a UI markup file to XML",
	Long: `Compile reads a single UI markup document, validates it against the
introspection data for every namespace it imports, and writes the
generated <interface> XML tree (§4.8).

Exit status is 0 on success, 1 if any diagnostic is an error.

Examples:
  uidlc compile window.ui
  uidlc compile window.ui -o window.xml
  uidlc compile window.ui --typelib-path ./typelibs`,
	Args: cobra.ExactArgs(1),
	RunE: runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&compileOutputFile, "output", "o", "", "output file (default: stdout)")
	compileCmd.Flags().StringArrayVar(&compileTypelibPaths, "typelib-path", nil, "additional directory to search for introspection data (repeatable)")
}

func runCompile(_ *cobra.Command, args []string) error {
	filename := args[0]

	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	xml, diags, src, ok := compileSource(string(content), compileTypelibPaths)
	if !ok {
		fmt.Fprint(os.Stderr, diag.FormatAll(diags, filename, src))
		fmt.Fprintln(os.Stderr)
		return fmt.Errorf("compilation failed with %d error(s)", countErrors(diags))
	}
	if diags.Len() > 0 {
		fmt.Fprint(os.Stderr, diag.FormatAll(diags, filename, src))
		fmt.Fprintln(os.Stderr)
	}

	if compileOutputFile == "" {
		fmt.Println(xml)
		return nil
	}
	if err := os.WriteFile(compileOutputFile, []byte(xml), 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", compileOutputFile, err)
	}
	return nil
}

// compileSource runs the full tokenize/parse/validate/emit pipeline
// (§4.1-§4.8) over one document's text. ok is false when any blocking
// (error-severity) diagnostic was raised.
func compileSource(text string, typelibPaths []string) (xml string, diags *diag.Bag, src *token.Source, ok bool) {
	src = token.NewSource(text)
	toks, _ := lexer.Tokenize(text)

	env := ast.NewEnv(idr.NewLoader(typelibPaths))
	ui := ast.Parse(src, toks, env)
	ui.Validate(env)

	if env.Diags.HasErrors() {
		return "", env.Diags, src, false
	}
	return xmlout.Emit(ui, env, xmlout.Options{Indent: "  ", GeneratedNotice: compileGeneratedNotice}), env.Diags, src, true
}

func countErrors(b *diag.Bag) int {
	n := 0
	for _, d := range b.All() {
		if d.Severity == diag.SeverityError {
			n++
		}
	}
	return n
}

func replaceExt(path, newExt string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[:i] + newExt
	}
	return path + newExt
}
