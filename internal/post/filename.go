package post

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/piwi3910/postcut/internal/model"
)

// DefaultOutputPattern names the output when the job sets no pattern.
const DefaultOutputPattern = "%j.nc"

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// Sanitize replaces every character outside [A-Za-z0-9_-] with "_".
func Sanitize(s string) string {
	return unsafeChars.ReplaceAllString(s, "_")
}

// FilenameContext holds the values substituted into an output pattern.
type FilenameContext struct {
	Directory string // %D
	Document  string // %d
	MacroDir  string // %M
	JobName   string // %j
	Sequence  int    // %S
	Tool      *model.ToolController
	Fixture   string // %W
	Operation string // %O
}

// ResolveFilename expands the tokens of pattern. Unknown %X tokens are
// removed.
func ResolveFilename(pattern string, ctx FilenameContext) string {
	if pattern == "" {
		pattern = DefaultOutputPattern
	}
	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c != '%' || i+1 >= len(pattern) {
			b.WriteByte(c)
			continue
		}
		i++
		switch pattern[i] {
		case 'D':
			b.WriteString(ctx.Directory)
		case 'd':
			b.WriteString(ctx.Document)
		case 'M':
			b.WriteString(ctx.MacroDir)
		case 'j':
			b.WriteString(ctx.JobName)
		case 'S':
			b.WriteString(strconv.Itoa(ctx.Sequence))
		case 'T':
			if ctx.Tool != nil {
				b.WriteString(strconv.Itoa(ctx.Tool.ToolNumber))
			}
		case 't':
			if ctx.Tool != nil {
				b.WriteString(Sanitize(ctx.Tool.Label))
			}
		case 'W':
			b.WriteString(ctx.Fixture)
		case 'O':
			b.WriteString(Sanitize(ctx.Operation))
		}
	}
	return b.String()
}

// sectionContext derives the filename values of one section from its first
// tool change, fixture and operation.
func sectionContext(job *model.Job, seq int, sec model.Section, macroDir string) FilenameContext {
	ctx := FilenameContext{
		JobName:  job.Name,
		Sequence: seq,
		MacroDir: macroDir,
	}
	if job.Document != "" {
		ctx.Directory = filepath.Dir(job.Document)
		base := filepath.Base(job.Document)
		ctx.Document = strings.TrimSuffix(base, filepath.Ext(base))
	}
	for _, it := range sec.Items {
		switch it := it.(type) {
		case *model.ToolChangeItem:
			if ctx.Tool == nil {
				ctx.Tool = it.Tool
			}
		case *model.FixtureItem:
			if ctx.Fixture == "" {
				ctx.Fixture = it.Code()
			}
		case *model.OperationItem:
			if ctx.Operation == "" {
				ctx.Operation = it.Label()
			}
			if ctx.Tool == nil {
				ctx.Tool = it.Op.Tool
			}
		}
	}
	if ctx.Fixture == "" && len(job.Fixtures) > 0 {
		ctx.Fixture = job.Fixtures[0]
	}
	return ctx
}

// uniqueNames appends -1, -2, ... before the extension of repeated names.
func uniqueNames(names []string) []string {
	seen := make(map[string]int, len(names))
	taken := make(map[string]bool, len(names))
	for _, n := range names {
		taken[n] = true
	}
	out := make([]string, len(names))
	for i, n := range names {
		seen[n]++
		if seen[n] == 1 {
			out[i] = n
			continue
		}
		ext := filepath.Ext(n)
		stem := strings.TrimSuffix(n, ext)
		for k := seen[n] - 1; ; k++ {
			candidate := stem + "-" + strconv.Itoa(k) + ext
			if !taken[candidate] {
				taken[candidate] = true
				out[i] = candidate
				seen[n] = k + 1
				break
			}
		}
	}
	return out
}
