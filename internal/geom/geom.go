// Package geom expands commands whose geometry a controller may not support
// into primitive moves: canned drill cycles and circular arcs.
package geom

import (
	"errors"
	"fmt"

	"github.com/piwi3910/postcut/internal/model"
)

var (
	// ErrMissingParameter is returned when a command lacks a word the
	// transform needs.
	ErrMissingParameter = errors.New("missing parameter")
	// ErrUnknownPosition is returned when the start point of a move is not
	// known from earlier commands.
	ErrUnknownPosition = errors.New("start position unknown")
	// ErrDegenerateArc is returned for arcs with zero radius or an
	// impossible radius/chord combination.
	ErrDegenerateArc = errors.New("degenerate arc")
)

// Point is a machine position in millimetres. Known flags say which axes
// have been set by an earlier command.
type Point struct {
	X, Y, Z                float64
	KnownX, KnownY, KnownZ bool
}

// XYKnown reports whether the planar position is known.
func (p Point) XYKnown() bool {
	return p.KnownX && p.KnownY
}

// Tracker follows the machine position through a command list.
type Tracker struct {
	Pos Point
}

// Apply updates the position after cmd. Arcs and linear moves set their end
// point. Canned cycles end above the hole at an unknown height unless the
// retract plane is given.
func (t *Tracker) Apply(cmd model.Command) {
	switch cmd.Name {
	case "G0", "G00", "G1", "G01", "G2", "G02", "G3", "G03":
		t.setXYZ(cmd.Params)
	case "G73", "G74", "G81", "G82", "G83", "G84", "G85", "G86", "G87", "G88", "G89":
		t.setXYZ(cmd.Params.Without("Z"))
		if r, ok := cmd.Params.Get("R"); ok && cmd.RetractMode() == "G99" {
			t.Pos.Z, t.Pos.KnownZ = r, true
		} else if r, ok := cmd.Params.Get("R"); ok && t.Pos.KnownZ && t.Pos.Z < r {
			t.Pos.Z = r
		}
	default:
		if len(cmd.Name) > 2 && cmd.Name[:2] == "G5" {
			// New work offset: coordinates are relative to another origin.
			t.Pos = Point{}
		}
	}
}

func (t *Tracker) setXYZ(ps model.Params) {
	if v, ok := ps.Get("X"); ok {
		t.Pos.X, t.Pos.KnownX = v, true
	}
	if v, ok := ps.Get("Y"); ok {
		t.Pos.Y, t.Pos.KnownY = v, true
	}
	if v, ok := ps.Get("Z"); ok {
		t.Pos.Z, t.Pos.KnownZ = v, true
	}
}

func missing(cmd model.Command, letter string) error {
	return fmt.Errorf("%s: %w %s", cmd.Name, ErrMissingParameter, letter)
}
