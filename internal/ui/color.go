// Package ui provides terminal styling for packsync output.
package ui

import (
	"github.com/fatih/color"
)

// Styled output functions.
var (
	// Success marks completed syncs (green).
	Success = color.New(color.FgGreen).SprintFunc()
	// Error marks failed artifacts (red).
	Error = color.New(color.FgRed).SprintFunc()
	// Warning marks skipped customizations and degraded modes (yellow).
	Warning = color.New(color.FgYellow).SprintFunc()
	// Info marks progress messages (cyan).
	Info = color.New(color.FgCyan).SprintFunc()
	// Bold is used for emphasis.
	Bold = color.New(color.Bold).SprintFunc()
	// Dim is used for secondary detail like revisions and timestamps.
	Dim = color.New(color.Faint).SprintFunc()
)

// Status symbols.
const (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolWarning = "⚠"
	SymbolSkipped = "-"
)

// StatusSuccess renders a green checkmark with an optional message.
func StatusSuccess(msg string) string {
	if msg == "" {
		return Success(SymbolSuccess)
	}
	return Success(SymbolSuccess) + " " + msg
}

// StatusError renders a red cross with an optional message.
func StatusError(msg string) string {
	if msg == "" {
		return Error(SymbolError)
	}
	return Error(SymbolError) + " " + msg
}

// StatusWarning renders a yellow warning with an optional message.
func StatusWarning(msg string) string {
	if msg == "" {
		return Warning(SymbolWarning)
	}
	return Warning(SymbolWarning) + " " + msg
}

// StatusSkipped renders a dimmed skip marker with an optional message.
func StatusSkipped(msg string) string {
	if msg == "" {
		return Dim(SymbolSkipped)
	}
	return Dim(SymbolSkipped) + " " + msg
}

// DisableColors turns off all styling, for piped output or --no-color.
func DisableColors() {
	color.NoColor = true
}

// EnableColors turns styling back on.
func EnableColors() {
	color.NoColor = false
}

// IsColorEnabled reports whether styling is active.
func IsColorEnabled() bool {
	return !color.NoColor
}
