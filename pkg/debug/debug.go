// Package debug provides global debug logging flags
package debug

import "fmt"

// Enabled controls whether debug logging is active
var Enabled bool

// Analysis controls whether every classifier result is printed
// (emotion, probability and composed label per face).
// Use --debug to enable these very verbose logs
var Analysis bool

// Log prints a message only if debug mode is enabled
func Log(format string, args ...interface{}) {
	if Enabled {
		fmt.Printf(format, args...)
	}
}

// AnalysisLog prints a message only if analysis tracing is enabled
func AnalysisLog(format string, args ...interface{}) {
	if Analysis {
		fmt.Printf(format, args...)
	}
}
