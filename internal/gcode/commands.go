// Package gcode turns commands into G-code text and post-processes the
// resulting lines.
package gcode

import (
	"fmt"
	"strings"
)

// UnsupportedCommandError is returned when a command name is not part of
// the supported dialect. It aborts the export.
type UnsupportedCommandError struct {
	Name string
}

func (e *UnsupportedCommandError) Error() string {
	return fmt.Sprintf("unsupported command %q", e.Name)
}

var supported = func() map[string]bool {
	names := []string{
		"G0", "G00", "G1", "G01", "G2", "G02", "G3", "G03", "G4", "G04",
		"G73", "G74",
		"G80", "G81", "G82", "G83", "G84", "G85", "G86", "G87", "G88", "G89",
		"G98", "G99",
		"M0", "M00", "M1", "M01", "M3", "M03", "M4", "M04", "M6", "M06",
	}
	set := make(map[string]bool, len(names)+16)
	for _, n := range names {
		set[n] = true
	}
	for n := 54; n <= 59; n++ {
		set[fmt.Sprintf("G%d", n)] = true
	}
	for n := 1; n <= 9; n++ {
		set[fmt.Sprintf("G59.%d", n)] = true
	}
	return set
}()

var cannedCycles = map[string]bool{
	"G73": true, "G74": true,
	"G81": true, "G82": true, "G83": true, "G84": true, "G85": true,
	"G86": true, "G87": true, "G88": true, "G89": true,
}

// IsSupported reports whether name can be converted.
func IsSupported(name string) bool {
	return supported[name] || strings.HasPrefix(name, "(")
}

// IsCannedCycle reports whether name is a drill/tap/bore canned cycle.
func IsCannedCycle(name string) bool {
	return cannedCycles[name]
}

// IsRetractMode reports whether name selects the canned-cycle retract plane.
func IsRetractMode(name string) bool {
	return name == "G98" || name == "G99"
}

// IsSpindleStart reports whether name starts the spindle.
func IsSpindleStart(name string) bool {
	switch name {
	case "M3", "M03", "M4", "M04":
		return true
	}
	return false
}

// IsToolChange reports whether name is a tool change.
func IsToolChange(name string) bool {
	return name == "M6" || name == "M06"
}

// IsRapid reports whether name is a rapid move.
func IsRapid(name string) bool {
	return name == "G0" || name == "G00"
}

// IsFeed reports whether name is a linear feed move.
func IsFeed(name string) bool {
	return name == "G1" || name == "G01"
}

// IsArc reports whether name is a circular move and whether it is clockwise.
func IsArc(name string) (arc, clockwise bool) {
	switch name {
	case "G2", "G02":
		return true, true
	case "G3", "G03":
		return true, false
	}
	return false, false
}

// IsMotion reports whether name is one of G0..G3.
func IsMotion(name string) bool {
	arc, _ := IsArc(name)
	return arc || IsRapid(name) || IsFeed(name)
}

// IsFixture reports whether name selects a work coordinate system.
func IsFixture(name string) bool {
	if !strings.HasPrefix(name, "G5") {
		return false
	}
	return supported[name] && name >= "G54" && name <= "G59.9"
}

// AxisLetters are the words that describe a machine position.
var AxisLetters = []string{"X", "Y", "Z", "A", "B", "C", "U", "V", "W"}

// RotaryLetters are the rotary axis words.
var RotaryLetters = []string{"A", "B", "C"}

// IsAxisLetter reports whether letter is a position word.
func IsAxisLetter(letter string) bool {
	for _, l := range AxisLetters {
		if l == letter {
			return true
		}
	}
	return false
}
