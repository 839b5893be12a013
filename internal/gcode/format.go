package gcode

import (
	"strconv"
	"strings"

	"github.com/piwi3910/postcut/internal/machine"
)

const mmPerInch = 25.4

// paramClass groups words that share a unit conversion and precision.
type paramClass int

const (
	classAxis    paramClass = iota // length, unit converted
	classRotary                    // degrees
	classDwell                     // seconds
	classFeed                      // length per time
	classSpindle                   // RPM
	classInteger                   // counts and table indices
)

func classOf(letter string) paramClass {
	switch letter {
	case "A", "B", "C":
		return classRotary
	case "P":
		return classDwell
	case "F":
		return classFeed
	case "S":
		return classSpindle
	case "D", "H", "L", "T":
		return classInteger
	default:
		return classAxis
	}
}

// modalLetters are suppressed when unchanged. Arc centres, cycle words and
// table indices are always written.
var modalLetters = map[string]bool{
	"X": true, "Y": true, "Z": true,
	"A": true, "B": true, "C": true,
	"U": true, "V": true, "W": true,
	"F": true, "S": true,
}

// FormatNumber formats v with the given number of decimals. It rounds the
// exact binary value to nearest with ties to even, as strconv does, and
// never returns a negative zero.
func FormatNumber(v float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	s := strconv.FormatFloat(v, 'f', decimals, 64)
	if strings.HasPrefix(s, "-") && strings.Trim(s[1:], "0.") == "" {
		s = s[1:]
	}
	return s
}

// formatParam renders the value of one word according to its class.
// Internal lengths are millimetres and internal feeds are per second.
func formatParam(letter string, v float64, out machine.OutputOptions) string {
	imperial := out.Units == machine.Imperial
	switch classOf(letter) {
	case classAxis:
		if imperial {
			v /= mmPerInch
		}
		return FormatNumber(v, out.AxisPrecision)
	case classRotary, classDwell:
		return FormatNumber(v, out.AxisPrecision)
	case classFeed:
		v *= 60
		if imperial {
			v /= mmPerInch
		}
		return FormatNumber(v, out.FeedPrecision)
	case classSpindle:
		return FormatNumber(v, out.SpindleDecimals)
	default:
		return strconv.FormatInt(int64(v), 10)
	}
}
