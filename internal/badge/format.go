package badge

import (
	"html"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// delayBetween is the animation offset between consecutive rows, in milliseconds.
	delayBetween = 150
	// defaultColor is used when GitHub reports no color.
	defaultColor = "#000000"
)

// formatCount formats n with a comma every three digits, whatever the host locale.
func formatCount(n int) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}

func colorOr(color, fallback string) string {
	if color == "" {
		return fallback
	}
	return color
}

// escape makes provider text safe to place inside SVG markup.
func escape(s string) string {
	return html.EscapeString(s)
}
