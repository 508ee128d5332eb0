// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatMoney formats a whole-unit amount with its currency prefix.
// e.g., ("RM", 2000) -> "RM 2,000", ("RM", -3000) -> "-RM 3,000"
func FormatMoney(currency string, n int64) string {
	prefix := currency
	if prefix != "" {
		prefix += " "
	}
	if n < 0 {
		return "-" + prefix + FormatNumber(-n)
	}
	return prefix + FormatNumber(n)
}

// FormatSignedMoney is FormatMoney with an explicit plus sign for positive
// amounts. Zero is unsigned.
func FormatSignedMoney(currency string, n int64) string {
	if n > 0 {
		return "+" + FormatMoney(currency, n)
	}
	return FormatMoney(currency, n)
}

// FormatCountdown formats whole seconds as m:ss.
// e.g., 30 -> "0:30", 75 -> "1:15"
func FormatCountdown(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// FormatDuration formats seconds into a human-readable duration.
// e.g., 3725 -> "1h 2m", 125 -> "2m 5s", 45 -> "45s"
func FormatDuration(secs int64) string {
	if secs <= 0 {
		return "0s"
	}

	hours := secs / 3600
	mins := (secs % 3600) / 60
	rem := secs % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	if mins > 0 {
		if rem > 0 {
			return fmt.Sprintf("%dm %ds", mins, rem)
		}
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%ds", secs)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
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

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatDelta formats the change between two amounts with a sign.
func FormatDelta(currency string, current, previous int64) string {
	return FormatSignedMoney(currency, current-previous)
}
