// Package format renders token amounts for display.
package format

import "strconv"

// TokenAmount renders a non-negative amount with K/M/B suffixes. Tiers are
// checked top-down, first match wins:
//
//	>= 1e9  ->  value/1e9, 2 decimals, "B"
//	>= 1e6  ->  value/1e6, 2 decimals, "M"
//	>= 1e3  ->  value/1e3, 2 decimals, "K"
//	>= 1    ->  2 decimals, no suffix
//	else    ->  4 decimals, no suffix
//
// Note the tier test happens before rounding: 999999 stays in the K tier and
// renders as "1000.00K", not "1.00M".
func TokenAmount(n float64) string {
	switch {
	case n >= 1e9:
		return strconv.FormatFloat(n/1e9, 'f', 2, 64) + "B"
	case n >= 1e6:
		return strconv.FormatFloat(n/1e6, 'f', 2, 64) + "M"
	case n >= 1e3:
		return strconv.FormatFloat(n/1e3, 'f', 2, 64) + "K"
	case n >= 1:
		return strconv.FormatFloat(n, 'f', 2, 64)
	default:
		return strconv.FormatFloat(n, 'f', 4, 64)
	}
}
