package gcode

import (
	"regexp"
	"strconv"
	"strings"
)

// MoveType represents the type of CNC toolpath movement.
type MoveType int

const (
	MoveRapid   MoveType = iota // G0: rapid positioning (no cutting)
	MoveFeed                    // G1/G2/G3: cutting move
	MovePlunge                  // feed with Z decreasing only
	MoveRetract                 // Z increasing only
)

func (t MoveType) String() string {
	switch t {
	case MoveFeed:
		return "feed"
	case MovePlunge:
		return "plunge"
	case MoveRetract:
		return "retract"
	default:
		return "rapid"
	}
}

// Word is one letter/value pair of a parsed block.
type Word struct {
	Letter string
	Value  float64
}

// Block is one parsed line of G-code.
type Block struct {
	BlockDelete bool
	LineNumber  int // 0 when absent
	Comment     string
	Words       []Word
}

// Get returns the value of the first word with the given letter.
func (b Block) Get(letter string) (float64, bool) {
	for _, w := range b.Words {
		if w.Letter == letter {
			return w.Value, true
		}
	}
	return 0, false
}

// Codes returns the G and M words of the block in order, e.g. "G1", "M6".
func (b Block) Codes() []string {
	var codes []string
	for _, w := range b.Words {
		if w.Letter == "G" || w.Letter == "M" {
			codes = append(codes, w.Letter+strconv.FormatFloat(w.Value, 'f', -1, 64))
		}
	}
	return codes
}

var (
	wordRe    = regexp.MustCompile(`([A-Za-z])\s*([-+]?(?:\d+\.?\d*|\.\d+))`)
	parenRe   = regexp.MustCompile(`\([^)]*\)`)
	lineNumRe = regexp.MustCompile(`^[Nn](\d+)\s*`)
)

// ParseLine parses one line of G-code. Semicolon and parenthetical comments
// are collected into Comment.
func ParseLine(line string) Block {
	var b Block
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, "/") {
		b.BlockDelete = true
		line = strings.TrimSpace(line[1:])
	}
	if m := lineNumRe.FindStringSubmatch(line); m != nil {
		b.LineNumber, _ = strconv.Atoi(m[1])
		line = line[len(m[0]):]
	}

	var comments []string
	if idx := strings.Index(line, ";"); idx >= 0 {
		comments = append(comments, strings.TrimSpace(line[idx+1:]))
		line = line[:idx]
	}
	for _, c := range parenRe.FindAllString(line, -1) {
		comments = append([]string{strings.TrimSpace(c[1 : len(c)-1])}, comments...)
	}
	line = parenRe.ReplaceAllString(line, " ")
	b.Comment = strings.Join(comments, " ")

	for _, m := range wordRe.FindAllStringSubmatch(line, -1) {
		val, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		b.Words = append(b.Words, Word{Letter: strings.ToUpper(m[1]), Value: val})
	}
	return b
}

// GCodeMove represents a single parsed movement from GCode.
type GCodeMove struct {
	Type     MoveType
	FromX    float64
	FromY    float64
	FromZ    float64
	ToX      float64
	ToY      float64
	ToZ      float64
	FeedRate float64
	Line     int // 1-based source line
}

// ParseGCode parses a GCode string into a slice of structured moves.
// It tracks absolute position state and classifies each motion block
// by its movement characteristics (rapid, feed, plunge, retract). Motion
// words are modal, so coordinate-only lines continue the previous motion.
func ParseGCode(code string) []GCodeMove {
	var moves []GCodeMove

	curX, curY, curZ := 0.0, 0.0, 0.0
	curFeed := 0.0
	motion := -1

	for i, line := range strings.Split(code, "\n") {
		b := ParseLine(line)
		if len(b.Words) == 0 {
			continue
		}

		hasAxis := false
		newX, newY, newZ, newFeed := curX, curY, curZ, curFeed
		for _, w := range b.Words {
			switch w.Letter {
			case "G":
				switch w.Value {
				case 0, 1, 2, 3:
					motion = int(w.Value)
				case 80:
					motion = -1
				}
			case "X":
				newX, hasAxis = w.Value, true
			case "Y":
				newY, hasAxis = w.Value, true
			case "Z":
				newZ, hasAxis = w.Value, true
			case "F":
				newFeed = w.Value
			}
		}
		curFeed = newFeed
		if motion < 0 || !hasAxis {
			continue
		}

		moves = append(moves, GCodeMove{
			Type:     classifyMove(motion == 0, curZ, newZ, curX, curY, newX, newY),
			FromX:    curX,
			FromY:    curY,
			FromZ:    curZ,
			ToX:      newX,
			ToY:      newY,
			ToZ:      newZ,
			FeedRate: newFeed,
			Line:     i + 1,
		})
		curX, curY, curZ = newX, newY, newZ
	}

	return moves
}

// classifyMove determines the MoveType based on movement characteristics.
func classifyMove(isRapid bool, fromZ, toZ, fromX, fromY, toX, toY float64) MoveType {
	zDelta := toZ - fromZ
	hasXY := fromX != toX || fromY != toY

	switch {
	case isRapid:
		if zDelta > 0 {
			return MoveRetract
		}
		return MoveRapid
	case zDelta < -0.001 && !hasXY:
		// Z going down (more negative) without XY movement = plunge
		return MovePlunge
	case zDelta > 0.001 && !hasXY:
		// Z going up without XY movement = retract
		return MoveRetract
	default:
		return MoveFeed
	}
}
