package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/uidl-lang/uidlc/internal/diag"
)

var batchTypelibPaths []string

var batchCompileCmd = &cobra.Command{
	Use:   "batch-compile <out-dir> <in-dir> <files...>",
	Short: "Compile many UI markup files, preserving their directory layout",
	Long: `batch-compile compiles every listed file (given relative to in-dir)
into out-dir, mirroring each file's relative path and replacing its
extension with .ui (§6).

Exit status is 0 if every file compiled cleanly, 1 if any file had an
error-severity diagnostic.`,
	Args: cobra.MinimumNArgs(3),
	RunE: runBatchCompile,
}

func init() {
	rootCmd.AddCommand(batchCompileCmd)
	batchCompileCmd.Flags().StringArrayVar(&batchTypelibPaths, "typelib-path", nil, "additional directory to search for introspection data (repeatable)")
}

func runBatchCompile(_ *cobra.Command, args []string) error {
	outDir, inDir, files := args[0], args[1], args[2:]

	failures := 0
	for _, rel := range files {
		if err := batchCompileOne(outDir, inDir, rel); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", rel, err)
			failures++
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d file(s) failed to compile", failures, len(files))
	}
	return nil
}

func batchCompileOne(outDir, inDir, rel string) error {
	inPath := filepath.Join(inDir, rel)
	content, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("failed to read: %w", err)
	}

	xml, diags, src, ok := compileSource(string(content), batchTypelibPaths)
	if !ok {
		return fmt.Errorf("compilation failed with %d error(s):\n%s", countErrors(diags), diag.FormatAll(diags, inPath, src))
	}

	outPath := filepath.Join(outDir, replaceExt(rel, ".ui"))
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(outPath, []byte(xml), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	return nil
}
