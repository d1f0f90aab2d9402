// Package output colors report text for the terminal.
//
// fatih/color already turns colors off when stdout is not a terminal or
// NO_COLOR is set; NoColor covers the --no-color flag.
package output

import (
	"fmt"

	"github.com/fatih/color"
)

var (
	statusColors = map[string]*color.Color{
		"OK":       color.New(color.FgGreen),
		"OUTDATED": color.New(color.FgYellow, color.Bold),
		"UNKNOWN":  color.New(color.FgRed),
	}

	plain    = color.New(color.Reset)
	heading  = color.New(color.Bold)
	faint    = color.New(color.Faint)
	newValue = color.New(color.FgGreen)
)

// NoColor disables color output
func NoColor() {
	color.NoColor = true
}

// ForceColor enables color output even when not a TTY
func ForceColor() {
	color.NoColor = false
}

// Status colors text with the color of a status label (OK, OUTDATED,
// UNKNOWN). text is usually the label itself, already padded.
func Status(label, text string) string {
	c, ok := statusColors[label]
	if !ok {
		c = plain
	}
	return c.Sprint(text)
}

// Heading formats a section title such as "Updates:"
func Heading(text string) string {
	return heading.Sprint(text)
}

// Note formats a secondary diagnostic line
func Note(format string, args ...any) string {
	return faint.Sprint(fmt.Sprintf(format, args...))
}

// NewValue highlights the value a pin changes to
func NewValue(v string) string {
	return newValue.Sprint(v)
}
