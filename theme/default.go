package theme

import (
	"github.com/pterm/pterm"
)

// Theme defines the colour scheme used by logs and rendered tables
type Theme struct {
	// Log level colours
	Debug *pterm.Style
	Info  *pterm.Style
	Warn  *pterm.Style
	Error *pterm.Style

	Muted     *pterm.Style
	Highlight *pterm.Style

	// Status service colours
	Resource pterm.Color
	Counts   pterm.Color
	Numbers  pterm.Color
	Stale    pterm.Color
	Header   pterm.Color
}

// Default returns the default application theme
func Default() *Theme {
	return &Theme{
		Debug: pterm.NewStyle(pterm.FgLightBlue),
		Info:  pterm.NewStyle(pterm.FgGreen),
		Warn:  pterm.NewStyle(pterm.FgYellow, pterm.Bold),
		Error: pterm.NewStyle(pterm.FgRed, pterm.Bold),

		Muted:     pterm.NewStyle(pterm.FgGray),
		Highlight: pterm.NewStyle(pterm.FgCyan, pterm.Bold),

		Resource: pterm.FgCyan,
		Counts:   pterm.FgLightMagenta,
		Numbers:  pterm.FgYellow,
		Stale:    pterm.FgGray,
		Header:   pterm.FgLightBlue,
	}
}

// Dark returns a dark theme variant
func Dark() *Theme {
	return &Theme{
		Debug: pterm.NewStyle(pterm.FgLightBlue),
		Info:  pterm.NewStyle(pterm.FgLightGreen),
		Warn:  pterm.NewStyle(pterm.FgLightYellow, pterm.Bold),
		Error: pterm.NewStyle(pterm.FgLightRed, pterm.Bold),

		Muted:     pterm.NewStyle(pterm.FgGray),
		Highlight: pterm.NewStyle(pterm.FgLightCyan, pterm.Bold),

		Resource: pterm.FgLightCyan,
		Counts:   pterm.FgLightMagenta,
		Numbers:  pterm.FgLightYellow,
		Stale:    pterm.FgGray,
		Header:   pterm.FgLightBlue,
	}
}

// Light returns a light theme variant
func Light() *Theme {
	return &Theme{
		Debug: pterm.NewStyle(pterm.FgBlue),
		Info:  pterm.NewStyle(pterm.FgBlack),
		Warn:  pterm.NewStyle(pterm.FgRed, pterm.Bold),
		Error: pterm.NewStyle(pterm.FgRed, pterm.Bold),

		Muted:     pterm.NewStyle(pterm.FgGray),
		Highlight: pterm.NewStyle(pterm.FgBlue, pterm.Bold),

		Resource: pterm.FgBlue,
		Counts:   pterm.FgMagenta,
		Numbers:  pterm.FgRed,
		Stale:    pterm.FgGray,
		Header:   pterm.FgBlue,
	}
}

// GetTheme returns the theme by name, falling back to the default
func GetTheme(name string) *Theme {
	switch name {
	case "dark":
		return Dark()
	case "light":
		return Light()
	default:
		return Default()
	}
}

// ColourSplash colours the version banner
func ColourSplash(message ...any) string {
	return pterm.LightGreen(message...)
}

// ColourVersion colours version numbers in the banner
func ColourVersion(message ...any) string {
	return pterm.LightYellow(message...)
}

// StyleUrl colours URLs and hyperlinks
func StyleUrl(message ...any) string {
	return pterm.LightBlue(message...)
}

// Hyperlink creates a hyperlink in the terminal
func Hyperlink(uri string, text string) string {
	return "\x1b]8;;" + uri + "\x07" + text + "\x1b]8;;\x07" + "\u001b[0m"
}
