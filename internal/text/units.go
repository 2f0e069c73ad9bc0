package text

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Unit conversion for product weights. All mass units reduce to grams and
// all volume units to milliliters.
//
// "fl oz" is deliberately treated as exactly 30 mL (the precise US customary
// conversion is 29.5735): existing accepted predictions were produced with
// the x30 factor and changing it would alter them.

// gramsPerUnit maps mass units to grams.
var gramsPerUnit = map[string]float64{
	"g":   1,
	"kg":  1000,
	"mg":  0.001,
	"oz":  28.349523125,
	"lbs": 453.59237,
}

// millilitersPerUnit maps volume units to milliliters.
var millilitersPerUnit = map[string]float64{
	"ml": 1,
	"cl": 10,
	"dl": 100,
	"l":  1000,
}

// canonicalUnit lowercases the unit and strips the trailing "e" OCR picks up
// on French packaging ("25 cle", "1 le").
func canonicalUnit(unit string) string {
	unit = strings.ToLower(strings.TrimSpace(unit))
	switch unit {
	case "ge", "kge", "mge", "mle", "cle", "dle", "le":
		return strings.TrimSuffix(unit, "e")
	}
	return unit
}

// NormalizeWeight converts a raw matched value and unit to the canonical
// unit: grams for mass, milliliters for volume. Comma decimal separators are
// accepted. It returns an error when the value is not numeric or the unit is
// dimensionally neither a mass nor a volume.
func NormalizeWeight(value, unit string) (float64, string, error) {
	value = strings.ReplaceAll(value, ",", ".")
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, "", fmt.Errorf("text: invalid weight value %q: %w", value, err)
	}

	unit = canonicalUnit(unit)
	if unit == "fl oz" {
		return parsed * 30, "ml", nil
	}
	if factor, ok := gramsPerUnit[unit]; ok {
		return parsed * factor, "g", nil
	}
	if factor, ok := millilitersPerUnit[unit]; ok {
		return parsed * factor, "ml", nil
	}
	return 0, "", fmt.Errorf("text: unit %q is neither a mass nor a volume", unit)
}

// IsValidWeight reports whether a raw matched value is a plausible weight
// figure: numeric, strictly positive, no leading zero unless a decimal
// separator is present, and an integer magnitude.
func IsValidWeight(value string) bool {
	value = strings.ReplaceAll(value, ",", ".")
	if strings.HasPrefix(value, "0") && !strings.Contains(value, ".") {
		return false
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return false
	}
	if parsed <= 0 {
		return false
	}
	if parsed != math.Trunc(parsed) {
		return false
	}
	return true
}

// IsExtremeWeight reports whether a normalized weight is out of the range a
// retail product plausibly has: at least 10 kg (or 10 L) or at most 10 g
// (or 10 mL).
func IsExtremeWeight(value float64, unit string) bool {
	_ = unit // value is already in the canonical unit (g or ml)
	return value >= 10000 || value <= 10
}

// IsSuspiciousWeight reports whether a normalized weight should be reviewed
// by a human before being applied: extreme values, or values of 1 kg and
// above whose trailing digit is not zero (e.g. 1217 g, likely an OCR glitch).
func IsSuspiciousWeight(value float64, unit string) bool {
	if IsExtremeWeight(value, unit) {
		return true
	}
	if value >= 1000 && int64(value)%10 != 0 {
		return true
	}
	return false
}
