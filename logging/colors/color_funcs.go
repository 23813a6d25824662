package colors

import "fmt"

// ColorFunc is an alias type for a coloring function that accepts anything and returns a colorized string
type ColorFunc = func(s any) string

// Reset is a ColorFunc that returns the input as a plain string. It resets the color context while logging.
func Reset(s any) string {
	return fmt.Sprintf("%v", s)
}

// Bold returns a bolded string of the provided input
func Bold(s any) string {
	return Colorize(s, BOLD)
}

// boldColor wraps s in color c and then in bold.
func boldColor(s any, c Color) string {
	return Colorize(Colorize(s, c), BOLD)
}

// RedBold colors error level markers.
func RedBold(s any) string {
	return boldColor(s, RED)
}

// GreenBold colors the info level marker.
func GreenBold(s any) string {
	return boldColor(s, GREEN)
}

// YellowBold colors warning level markers.
func YellowBold(s any) string {
	return boldColor(s, YELLOW)
}

// BlueBold colors debug level markers.
func BlueBold(s any) string {
	return boldColor(s, BLUE)
}

// CyanBold colors trace level markers.
func CyanBold(s any) string {
	return boldColor(s, CYAN)
}

// Yellow highlights library and immutable annotations in reports.
func Yellow(s any) string {
	return Colorize(s, YELLOW)
}

// Magenta highlights jump classifications in disassembly.
func Magenta(s any) string {
	return Colorize(s, MAGENTA)
}

// Cyan highlights push data in disassembly.
func Cyan(s any) string {
	return Colorize(s, CYAN)
}

// DarkGray dims source locations and trailing data.
func DarkGray(s any) string {
	return Colorize(s, DARK_GRAY)
}
