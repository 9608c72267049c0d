package serialize

import "strconv"

// formatNumber renders a float64 the way the canonical encoding requires
// (spec.md §4.6): integral values print with no trailing zeros or decimal
// point, fractional values print with the smallest number of digits that
// round-trips exactly.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
