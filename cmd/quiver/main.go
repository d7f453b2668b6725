// Command quiver is a small CLI over the quiver graph engine. The engine is
// a library; this binary exists to sanity-check a build, seed a demo graph,
// and print engine statistics.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
