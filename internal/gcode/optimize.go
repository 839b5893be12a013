package gcode

import (
	"strconv"
	"strings"

	"github.com/piwi3910/postcut/internal/machine"
)

// LineOptimizer filters formatted command lines of one export run. It drops
// exact repeats of the previous command line and axis words that repeat the
// last written value.
type LineOptimizer struct {
	out      machine.OutputOptions
	lastLine string
	axes     map[string]string
}

// NewLineOptimizer creates an optimizer for the given output options.
func NewLineOptimizer(out machine.OutputOptions) *LineOptimizer {
	o := &LineOptimizer{out: out}
	o.Reset()
	return o
}

// Reset forgets all remembered lines and axis values.
func (o *LineOptimizer) Reset() {
	o.lastLine = ""
	o.axes = make(map[string]string)
}

// Break marks a non-command line (block text, comment) so the next command
// is never treated as a repeat.
func (o *LineOptimizer) Break() {
	o.lastLine = ""
}

// ForgetAxes drops remembered axis values, e.g. after a canned cycle moved
// the machine on its own.
func (o *LineOptimizer) ForgetAxes(letters ...string) {
	for _, l := range letters {
		delete(o.axes, l)
	}
}

// Command filters one formatted command line. It returns ok=false when the
// line is to be dropped.
func (o *LineOptimizer) Command(line string) (string, bool) {
	if !o.out.OutputDuplicateParameters {
		var ok bool
		line, ok = o.suppressRedundantAxes(line)
		if !ok {
			return "", false
		}
	}
	if !o.out.OutputDuplicateCommands && line == o.lastLine {
		return "", false
	}
	o.lastLine = line
	return line, true
}

// suppressRedundantAxes strips axis words whose exact text was the last value
// written for that letter. A motion line left without any word is dropped;
// other lines keep at least their command word. Block-delete lines pass
// unchanged and are not remembered.
func (o *LineOptimizer) suppressRedundantAxes(line string) (string, bool) {
	if strings.HasPrefix(line, "/") {
		return line, true
	}
	sep := o.out.CommandSeparator
	if sep == "" {
		sep = " "
	}
	body := line
	tokens := strings.Split(body, sep)
	if len(tokens) == 0 {
		return line, true
	}

	name := commandToken(tokens)
	cycle := IsCannedCycle(name)
	kept := make([]string, 0, len(tokens))
	hadAxis, keptAxis := false, false
	for _, tok := range tokens {
		letter, value, isWord := splitWord(tok)
		if !isWord || !IsAxisLetter(letter) {
			kept = append(kept, tok)
			continue
		}
		hadAxis = true
		if !cycle && o.axes[letter] == value {
			continue
		}
		o.axes[letter] = value
		keptAxis = true
		kept = append(kept, tok)
	}
	if cycle {
		delete(o.axes, "Z")
	}
	if hadAxis && !keptAxis && IsMotion(name) && len(kept) <= 1 {
		return "", false
	}
	return strings.Join(kept, sep), true
}

// commandToken returns the G/M code of a token list, which is usually first
// but follows the tool word when the tool is written before M6.
func commandToken(tokens []string) string {
	for _, t := range tokens {
		if strings.HasPrefix(t, "G") || strings.HasPrefix(t, "M") {
			return t
		}
	}
	return ""
}

// LineHasWord reports whether a formatted line carries a word with one of
// the given letters.
func LineHasWord(line, sep string, letters ...string) bool {
	if sep == "" {
		sep = " "
	}
	for _, tok := range strings.Split(strings.TrimPrefix(line, "/"), sep) {
		letter, _, ok := splitWord(tok)
		if ok && contains(letters, letter) {
			return true
		}
	}
	return false
}

func splitWord(tok string) (letter, value string, ok bool) {
	if len(tok) < 2 {
		return "", "", false
	}
	letter, value = tok[:1], tok[1:]
	if _, err := strconv.ParseFloat(value, 64); err != nil {
		return "", "", false
	}
	return letter, value, true
}

// LineNumberer prefixes body lines with increasing block numbers. The
// counter runs across all sections of one export.
type LineNumberer struct {
	prefix string
	next   int
	step   int
}

// NewLineNumberer creates a numberer from the output options.
func NewLineNumberer(out machine.OutputOptions) *LineNumberer {
	step := out.LineIncrement
	if step == 0 {
		step = 10
	}
	prefix := out.LineNumberPrefix
	if prefix == "" {
		prefix = "N"
	}
	return &LineNumberer{prefix: prefix, next: out.LineNumberStart, step: step}
}

// Number returns line with the next block number. A block-delete slash stays
// in front of the number.
func (n *LineNumberer) Number(line string) string {
	num := n.prefix + strconv.Itoa(n.next) + " "
	n.next += n.step
	if strings.HasPrefix(line, "/") {
		return "/" + num + line[1:]
	}
	return num + line
}
