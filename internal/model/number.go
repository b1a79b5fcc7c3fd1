package model

import (
	"math"
	"strconv"
	"strings"
)

// FromFloat is Number for values read from outside. NaN is how databases
// and exports spell a missing number, so it becomes missing.
func FromFloat(f float64) Value {
	if math.IsNaN(f) {
		return Missing()
	}
	return Number(f)
}

// ParseNumber reads s as a number. Unparseable text and NaN are missing.
func ParseNumber(s string) Value {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return Missing()
	}
	return FromFloat(f)
}
