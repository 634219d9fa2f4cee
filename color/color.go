// Package color names the ANSI palette the vsel CLI draws from: green for
// chosen sources, red for failures, yellow for suggestions, faint gray for
// metadata.
package color

import "github.com/charmbracelet/lipgloss"

// New wraps a terminal color value (ANSI index or hex) for lipgloss.
func New(value string) lipgloss.Color {
	return lipgloss.Color(value)
}

// The standard ANSI eight.
var (
	Red    = New("1")
	Green  = New("2")
	Yellow = New("3")
	Blue   = New("4")
	Purple = New("5")
	Cyan   = New("6")
	White  = New("7")
	Black  = New("8")
)

// Their high-intensity counterparts.
var (
	HiRed    = New("9")
	HiGreen  = New("10")
	HiYellow = New("11")
	HiBlue   = New("12")
	HiPurple = New("13")
	HiCyan   = New("14")
	HiWhite  = New("15")
	HiBlack  = New("16")
)

// Accent colors used outside the ANSI range.
var (
	Orange = New("#ffb703")
	Gray   = New("#808080")
)
