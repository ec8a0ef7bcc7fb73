package timeline

import (
	"fmt"
	"strconv"
	"strings"
)

// speeds are the supported retime factors. 0 (normal speed) is always valid.
var speeds = []float64{0.5, 0.75, 1.25, 1.5, 1.75, 2}

// ValidSpeed reports whether factor is 0 or one of the supported factors
func ValidSpeed(factor float64) bool {
	if factor == 0 {
		return true
	}
	for _, s := range speeds {
		if s == factor {
			return true
		}
	}
	return false
}

// SpeedChoices returns the factors in the order the editor offers them, with 0 for normal
func SpeedChoices() []float64 {
	return []float64{0.5, 0.75, 0, 1.25, 1.5, 1.75, 2}
}

// SpeedLabel renders a factor the way the editor shows it
func SpeedLabel(factor float64) string {
	if factor == 0 {
		return "Normal"
	}
	return strconv.FormatFloat(factor, 'g', -1, 64)
}

// ParseSpeed accepts "Normal" or a supported factor such as "1.5"
func ParseSpeed(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "normal") {
		return 0, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(s, "x"), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSpeed, s)
	}
	if f == 1 {
		return 0, nil
	}
	if !ValidSpeed(f) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidSpeed, f)
	}
	return f, nil
}
