// Command uidlc is the UI-markup compiler's CLI entry point (§6).
package main

import (
	"fmt"
	"os"

	"github.com/uidl-lang/uidlc/cmd/uidlc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
