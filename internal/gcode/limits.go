package gcode

import (
	"fmt"

	"github.com/piwi3910/postcut/internal/machine"
)

// LimitViolation is a move whose end point lies outside the machine travel.
type LimitViolation struct {
	Line     int
	Axis     string
	Value    float64
	Min, Max float64
	Type     MoveType
}

// CheckTravelLimits reports every move that ends outside the configured
// travel. Axes with an empty range are not checked. At most one violation
// per line and axis is reported.
func CheckTravelLimits(moves []GCodeMove, travel machine.Travel) []LimitViolation {
	type axisRange struct {
		axis     string
		min, max float64
		value    func(m GCodeMove) float64
	}
	ranges := []axisRange{
		{"X", travel.XMin, travel.XMax, func(m GCodeMove) float64 { return m.ToX }},
		{"Y", travel.YMin, travel.YMax, func(m GCodeMove) float64 { return m.ToY }},
		{"Z", travel.ZMin, travel.ZMax, func(m GCodeMove) float64 { return m.ToZ }},
	}

	var violations []LimitViolation
	for _, m := range moves {
		for _, r := range ranges {
			if r.max <= r.min {
				continue
			}
			v := r.value(m)
			if v < r.min || v > r.max {
				violations = append(violations, LimitViolation{
					Line:  m.Line,
					Axis:  r.axis,
					Value: v,
					Min:   r.min,
					Max:   r.max,
					Type:  m.Type,
				})
			}
		}
	}
	return violations
}

// FormatLimitWarnings produces human-readable warning messages from limit
// violations.
func FormatLimitWarnings(violations []LimitViolation) []string {
	var warnings []string
	for _, v := range violations {
		warnings = append(warnings, fmt.Sprintf(
			"line %d: %s move ends at %s%.3f, outside travel [%.3f, %.3f]",
			v.Line, v.Type, v.Axis, v.Value, v.Min, v.Max))
	}
	return warnings
}
