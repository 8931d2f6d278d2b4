package utils

import "strconv"

// ParseIntOrZero parses s as an int, returning 0 on failure.
func ParseIntOrZero(s string) int {
	value, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return value
}

// ParseFloatOrZero parses s as a float64, returning 0 on failure.
func ParseFloatOrZero(s string) float64 {
	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return value
}
