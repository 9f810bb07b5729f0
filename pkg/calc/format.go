package calc

import (
	"math"
	"strconv"
)

// ErrorDisplay is the display value after a failed computation.
const ErrorDisplay = "Error"

// FormatResult renders a computed value for display. Integral values have no
// decimal point; others use the shortest decimal form that round-trips.
// Non-finite values render as ErrorDisplay.
func FormatResult(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ErrorDisplay
	}
	// -0 displays as 0
	if v == 0 {
		return "0"
	}
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
