// Package debug provides the engine's lightweight diagnostic logging.
// Output is off unless QUIVER_DEBUG is set or SetVerbose(true) was called,
// so hot paths pay a single boolean check.
package debug

import (
	"fmt"
	"os"
)

var (
	enabled     = os.Getenv("QUIVER_DEBUG") != ""
	verboseMode = false
)

func Enabled() bool {
	return enabled || verboseMode
}

// SetVerbose enables debug output regardless of the environment.
func SetVerbose(verbose bool) {
	verboseMode = verbose
}

// Logf writes a diagnostic line to stderr when debugging is enabled.
func Logf(format string, args ...any) {
	if enabled || verboseMode {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
