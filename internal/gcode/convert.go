package gcode

import (
	"sort"
	"strings"

	"github.com/piwi3910/postcut/internal/machine"
	"github.com/piwi3910/postcut/internal/model"
)

// Converter turns one command into one line of text. It remembers the last
// value written for every modal word, so one Converter must serve exactly
// one export run.
type Converter struct {
	m        *machine.Machine
	order    []string
	modal    map[string]string
	lastName string
	extra    map[string]bool
}

// NewConverter creates a converter for the given machine configuration.
func NewConverter(m *machine.Machine) *Converter {
	c := &Converter{m: m}
	c.order = parameterOrder(m.Output.ParameterOrder)
	c.Reset()
	return c
}

// Allow accepts additional command names beyond the supported set. Post
// processors with their own hooks use it for controller-specific codes.
func (c *Converter) Allow(names ...string) {
	if c.extra == nil {
		c.extra = make(map[string]bool)
	}
	for _, n := range names {
		c.extra[n] = true
	}
}

// Reset forgets all modal state.
func (c *Converter) Reset() {
	c.modal = make(map[string]string)
	c.lastName = ""
}

// Forget drops the remembered value of the given letters so they are written
// again on next use.
func (c *Converter) Forget(letters ...string) {
	for _, l := range letters {
		delete(c.modal, l)
	}
}

// Convert formats cmd. It returns ok=false when the command produces no
// output (suppressed command, or comment with comments disabled).
func (c *Converter) Convert(cmd model.Command) (line string, ok bool, err error) {
	if !IsSupported(cmd.Name) && !c.extra[cmd.Name] {
		return "", false, &UnsupportedCommandError{Name: cmd.Name}
	}
	if c.m.Suppressed(cmd.Name) {
		return "", false, nil
	}
	if cmd.IsComment() {
		// bCNC block markers are written as plain comments.
		if !c.m.Output.Comments {
			return "", false, nil
		}
		return c.prefix(cmd, c.FormatComment(cmd.CommentText())), true, nil
	}

	out := c.m.Output
	// A block-delete line may be skipped by the controller, so it writes
	// every word and leaves the modal state as it was.
	optional := cmd.BlockDelete()
	keepAll := out.OutputDuplicateParameters || optional
	if IsCannedCycle(cmd.Name) && c.lastName != cmd.Name {
		// The first block of a cycle must carry all its words.
		keepAll = true
	}
	if !optional {
		c.lastName = cmd.Name
	}

	tokens := []string{cmd.Name}
	for _, letter := range c.lettersOf(cmd.Params) {
		v, _ := cmd.Params.Get(letter)
		text := formatParam(letter, v, out)
		if modalLetters[letter] {
			if !keepAll && c.modal[letter] == text {
				continue
			}
			if !optional {
				c.modal[letter] = text
			}
		}
		tokens = append(tokens, letter+text)
	}
	if IsCannedCycle(cmd.Name) {
		// The cycle leaves Z at the retract plane, not at the hole depth.
		delete(c.modal, "Z")
	}
	if len(tokens) == 1 && len(cmd.Params) > 0 && IsMotion(cmd.Name) {
		// Every word repeated the machine state: the move goes nowhere.
		return "", false, nil
	}

	if c.m.Processing.ToolBeforeChange && IsToolChange(cmd.Name) && len(tokens) > 1 {
		tokens[0], tokens[1] = tokens[1], tokens[0]
	}
	return c.prefix(cmd, strings.Join(tokens, out.CommandSeparator)), true, nil
}

// FormatComment renders text with the configured comment symbol.
func (c *Converter) FormatComment(text string) string {
	return formatComment(text, c.m.Output.CommentSymbol)
}

func formatComment(text, symbol string) string {
	if symbol == "(" {
		return "(" + text + ")"
	}
	return symbol + " " + text
}

// FormatWord formats a single word the way Convert would, without touching
// the modal state.
func (c *Converter) FormatWord(letter string, v float64) string {
	return letter + formatParam(letter, v, c.m.Output)
}

func (c *Converter) prefix(cmd model.Command, line string) string {
	if cmd.BlockDelete() {
		return "/" + line
	}
	return line
}

// lettersOf returns the command's letters in configured order. Letters the
// order does not mention follow alphabetically.
func (c *Converter) lettersOf(ps model.Params) []string {
	letters := make([]string, 0, len(ps))
	for _, l := range c.order {
		if ps.Has(l) {
			letters = append(letters, l)
		}
	}
	if len(letters) == len(ps) {
		return letters
	}
	var rest []string
	for _, p := range ps {
		if !contains(c.order, p.Letter) {
			rest = append(rest, p.Letter)
		}
	}
	sort.Strings(rest)
	return append(letters, rest...)
}

func parameterOrder(order []string) []string {
	if len(order) == 0 {
		return machine.DefaultParameterOrder
	}
	return order
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
