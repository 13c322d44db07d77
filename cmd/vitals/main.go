// ABOUTME: Entry point for vitals CLI.
// ABOUTME: Invokes the root Cobra command and renders errors for humans.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/harperreed/vitals/internal/tracker"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("✗ %s", tracker.UserMessage(err)))
		os.Exit(1)
	}
}
