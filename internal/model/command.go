package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Annotation keys consulted by the post pipeline.
const (
	AnnotationRetractMode = "RetractMode"
	AnnotationBlockDelete = "blockdelete"
	AnnotationBCNC        = "bcnc"
)

// Param is a single named numeric word of a command, e.g. X10.5.
type Param struct {
	Letter string
	Value  float64
}

// Params is an ordered set of command words. Letters are unique.
type Params []Param

// P builds Params from alternating letter/value pairs:
//
//	P("X", 10, "Y", 20)
func P(pairs ...any) Params {
	if len(pairs)%2 != 0 {
		panic("model.P: odd number of arguments")
	}
	var ps Params
	for i := 0; i < len(pairs); i += 2 {
		letter, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("model.P: letter at %d is %T, not string", i, pairs[i]))
		}
		ps = ps.With(letter, toFloat(pairs[i+1]))
	}
	return ps
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		panic(fmt.Sprintf("model.P: unsupported value type %T", v))
	}
}

// Get returns the value for letter and whether it is present.
func (ps Params) Get(letter string) (float64, bool) {
	for _, p := range ps {
		if p.Letter == letter {
			return p.Value, true
		}
	}
	return 0, false
}

// Has reports whether letter is present.
func (ps Params) Has(letter string) bool {
	_, ok := ps.Get(letter)
	return ok
}

// With returns a copy with letter set to v. An existing letter keeps its
// position; a new one is appended.
func (ps Params) With(letter string, v float64) Params {
	out := make(Params, len(ps), len(ps)+1)
	copy(out, ps)
	for i := range out {
		if out[i].Letter == letter {
			out[i].Value = v
			return out
		}
	}
	return append(out, Param{Letter: letter, Value: v})
}

// Without returns a copy with the given letters removed.
func (ps Params) Without(letters ...string) Params {
	out := make(Params, 0, len(ps))
	for _, p := range ps {
		drop := false
		for _, l := range letters {
			if p.Letter == l {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, p)
		}
	}
	return out
}

// Letters returns the letters in insertion order.
func (ps Params) Letters() []string {
	letters := make([]string, len(ps))
	for i, p := range ps {
		letters[i] = p.Letter
	}
	return letters
}

// Equal reports whether both sets hold the same letters with the same
// values, regardless of order.
func (ps Params) Equal(other Params) bool {
	if len(ps) != len(other) {
		return false
	}
	for _, p := range ps {
		v, ok := other.Get(p.Letter)
		if !ok || v != p.Value {
			return false
		}
	}
	return true
}

// MarshalJSON writes params as a JSON object in insertion order.
func (ps Params) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, p := range ps {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(p.Letter)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(p.Value)
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')
		b.Write(val)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping the key order of the document.
func (ps *Params) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*ps = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("params: expected object, got %v", tok)
	}
	var out Params
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("params: expected string key, got %v", keyTok)
		}
		var v float64
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("params: value for %q: %w", key, err)
		}
		out = out.With(strings.ToUpper(key), v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*ps = out
	return nil
}

// Annotations carry side-channel data that is consulted by the pipeline but
// never written as a G-code word.
type Annotations map[string]any

// Command is one instruction of a toolpath: a name such as "G1" or
// "(a comment)" plus its words.
type Command struct {
	Name        string      `json:"name"`
	Params      Params      `json:"params,omitempty"`
	Annotations Annotations `json:"annotations,omitempty"`
}

// NewCommand creates a command with the given name and parameters.
func NewCommand(name string, params Params) Command {
	return Command{Name: name, Params: params}
}

// Comment creates a comment command wrapping text in parentheses.
func Comment(text string) Command {
	return Command{Name: "(" + text + ")"}
}

// IsComment reports whether the command is a comment.
func (c Command) IsComment() bool {
	return strings.HasPrefix(c.Name, "(")
}

// CommentText returns the comment body without the surrounding parentheses.
func (c Command) CommentText() string {
	text := strings.TrimPrefix(c.Name, "(")
	return strings.TrimSuffix(text, ")")
}

// WithAnnotation returns a copy of the command with key set to v.
func (c Command) WithAnnotation(key string, v any) Command {
	ann := make(Annotations, len(c.Annotations)+1)
	for k, old := range c.Annotations {
		ann[k] = old
	}
	ann[key] = v
	c.Annotations = ann
	return c
}

// RetractMode returns the RetractMode annotation ("G98", "G99") or "".
func (c Command) RetractMode() string {
	if s, ok := c.Annotations[AnnotationRetractMode].(string); ok {
		return s
	}
	return ""
}

// BlockDelete reports whether the line is to be prefixed with "/".
func (c Command) BlockDelete() bool {
	return annotationBool(c.Annotations, AnnotationBlockDelete)
}

// BCNC reports whether the command is a bCNC block marker.
func (c Command) BCNC() bool {
	return annotationBool(c.Annotations, AnnotationBCNC)
}

func annotationBool(a Annotations, key string) bool {
	switch v := a[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	}
	return false
}

// HasAny reports whether any of the letters is present in the command.
func (c Command) HasAny(letters ...string) bool {
	for _, l := range letters {
		if c.Params.Has(l) {
			return true
		}
	}
	return false
}

// String renders the command in a compact, unformatted form for logs.
func (c Command) String() string {
	if len(c.Params) == 0 {
		return c.Name
	}
	parts := []string{c.Name}
	for _, p := range c.Params {
		parts = append(parts, fmt.Sprintf("%s%g", p.Letter, p.Value))
	}
	return strings.Join(parts, " ")
}

// Path is an ordered command sequence.
type Path []Command

// Clone returns a shallow copy whose backing array is independent.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// Names lists the command names, mostly useful in tests and logs.
func (p Path) Names() []string {
	names := make([]string, len(p))
	for i, c := range p {
		names[i] = c.Name
	}
	return names
}
