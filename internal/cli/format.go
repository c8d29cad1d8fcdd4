// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		if n == math.MinInt64 {
			return "-" + groupDigits(strconv.FormatUint(uint64(n), 10))
		}
		return "-" + FormatNumber(-n)
	}
	return groupDigits(strconv.FormatInt(n, 10))
}

// FormatCost formats a USD amount with two decimals.
// e.g., 1234.567 -> "$1,234.57"
func FormatCost(cost float64) string {
	cents := math.Round(math.Abs(cost) * 100)
	whole := int64(cents) / 100
	frac := int64(cents) % 100

	out := fmt.Sprintf("$%s.%02d", FormatNumber(whole), frac)
	if cost < 0 && cents > 0 {
		return "-" + out
	}
	return out
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

func groupDigits(s string) string {
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}
