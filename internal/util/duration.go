package util

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/keymint/keymint-api/internal/ierr"
)

var durationPattern = regexp.MustCompile(`^(\d+)([dhm])$`)

// ParseDuration converts a compact duration token (7d, 24h, 30m) into a
// fractional number of days.
func ParseDuration(token string) (float64, error) {
	m := durationPattern.FindStringSubmatch(token)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ierr.ErrInvalidDuration, token)
	}

	value, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		// Out-of-range integers must error out, never wrap.
		return 0, fmt.Errorf("%w: %q", ierr.ErrInvalidDuration, token)
	}

	switch m[2] {
	case "d":
		return float64(value), nil
	case "h":
		return float64(value) / 24, nil
	case "m":
		return float64(value) / 1440, nil
	default:
		return 0, fmt.Errorf("%w: %q", ierr.ErrInvalidDuration, token)
	}
}
