// Command editstate inspects and exercises the editor state core: it prints
// the layered settings and the derived editor configuration, watches them
// change live, lists themes and replays autosave timelines.
package main

import (
	"fmt"
	"os"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
