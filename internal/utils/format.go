package utils

import (
	"fmt"
	"strings"
	"time"
)

// HolderID derives a stable identifier from a holder's display name.
// "John Doe" -> "john-doe".
func HolderID(name string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(name)))
	return strings.Join(fields, "-")
}

// NormalizePlate uppercases a license plate and collapses inner whitespace.
func NormalizePlate(plate string) string {
	fields := strings.Fields(strings.ToUpper(strings.TrimSpace(plate)))
	return strings.Join(fields, " ")
}

// FormatDuration renders a booking duration the way it is shown on the
// proof: "2 hours", "1 hour", "1 hour 30 minutes", "45 minutes".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) - hours*60

	var parts []string
	if hours == 1 {
		parts = append(parts, "1 hour")
	} else if hours > 1 {
		parts = append(parts, fmt.Sprintf("%d hours", hours))
	}
	if minutes == 1 {
		parts = append(parts, "1 minute")
	} else if minutes > 1 {
		parts = append(parts, fmt.Sprintf("%d minutes", minutes))
	}
	if len(parts) == 0 {
		return "0 minutes"
	}
	return strings.Join(parts, " ")
}
