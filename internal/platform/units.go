package platform

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// HumanBytes renders a byte count with binary units, e.g. "1.5 MiB".
func HumanBytes(n float64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

// SpeedText renders bytes per second, or "" when the speed is unknown.
func SpeedText(bytesPerSecond float64) string {
	if bytesPerSecond <= 0 {
		return ""
	}
	return HumanBytes(bytesPerSecond) + "/s"
}

// HumanETA renders remaining seconds as "1h 02m 03s", "4m 05s" or "7s".
func HumanETA(seconds float64) string {
	if seconds <= 0 {
		return ""
	}
	total := int64(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	switch {
	case h > 0:
		return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
