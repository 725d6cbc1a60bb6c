package logger

import (
	"github.com/fatih/color" // Colored console output for each log level
)

// Colorized printf-style functions for each log level. They behave like fmt.Printf
// and write to color.Output (stdout unless redirected).

// Info logs progress messages in green.
var Info = color.New(color.FgGreen).PrintfFunc()

// Warn logs recoverable oddities in bright magenta, e.g. a redundant selection.
var Warn = color.New(color.FgHiMagenta).PrintfFunc()

// Error logs failures in red.
var Error = color.New(color.FgRed).PrintfFunc()

// Debug logs verbose details in cyan once enabled through Init.
// It starts out as a no-op so packages can log before the CLI has parsed --debug.
var Debug = func(format string, a ...any) {}

// Init enables or disables debug logging.
// When enabled, Debug prints cyan messages; otherwise it silently drops them.
func Init(enableDebug bool) {
	if enableDebug {
		Debug = color.New(color.FgCyan).PrintfFunc()
	} else {
		Debug = func(format string, a ...any) {}
	}
}
