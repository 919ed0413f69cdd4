// Package units provides shared constants and conversions for temperature
// display units. Readings are always analysed in degrees Celsius; these
// conversions only affect presentation.
package units

import "math"

// Unit constants
const (
	Celsius    = "C"
	Fahrenheit = "F"
	Kelvin     = "K"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{Celsius, Fahrenheit, Kelvin}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, u := range ValidUnits {
		if unit == u {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "C, F, K"
}

// ConvertTemperature converts a Celsius reading to the target units. NaN
// passes through unchanged.
func ConvertTemperature(celsius float64, targetUnits string) float64 {
	switch targetUnits {
	case Fahrenheit:
		return celsius*9/5 + 32
	case Kelvin:
		return celsius + 273.15
	default:
		return celsius
	}
}

// Symbol returns the printable suffix for the unit, e.g. "°C".
func Symbol(unit string) string {
	switch unit {
	case Fahrenheit:
		return "°F"
	case Kelvin:
		return "K"
	default:
		return "°C"
	}
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
