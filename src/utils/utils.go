package utils

import (
	"math"
	"strconv"
	"strings"
)

// -----------------------------------------------------------------------------

// ParseFloat converts a string to float64, returning 0 on failure.
// Upstream feeds encode prices and sizes as strings.
func ParseFloat(s string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return value
}

// -----------------------------------------------------------------------------

// Clamp bounds value to [lo, hi].
func Clamp(value, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, value))
}

// -----------------------------------------------------------------------------

// IsFinite reports whether value is neither NaN nor infinite.
func IsFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}

// -----------------------------------------------------------------------------

// MaskAPIKey hides credential-looking query values in an endpoint so the
// endpoint can be logged safely.
func MaskAPIKey(endpoint string) string {
	idx := strings.Index(endpoint, "?")
	if idx < 0 {
		return endpoint
	}
	return endpoint[:idx] + "?***"
}

// -----------------------------------------------------------------------------

// StreamURL translates an HTTP base address into its streaming counterpart
// (https -> wss, http -> ws) and appends the stream path.
func StreamURL(base string, path string) string {
	translated := strings.Replace(base, "https://", "wss://", 1)
	translated = strings.Replace(translated, "http://", "ws://", 1)
	return strings.TrimSuffix(translated, "/") + path
}
