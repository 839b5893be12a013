package machine

import (
	"encoding/json"
	"fmt"
	"strings"
)

// legacyFields maps flat legacy keys to their place in the canonical schema.
var legacyFields = map[string][2]string{
	"comments":               {"output", "comments"},
	"output_comments":        {"output", "comments"},
	"line_numbers":           {"output", "line_numbers"},
	"output_line_numbers":    {"output", "line_numbers"},
	"precision":              {"output", "axis_precision"},
	"axis_precision":         {"output", "axis_precision"},
	"feed_precision":         {"output", "feed_precision"},
	"spindle_decimals":       {"output", "spindle_decimals"},
	"comment_symbol":         {"output", "comment_symbol"},
	"output_header":          {"output", "header"},
	"units":                  {"output", "units"},
	"end_of_line_characters": {"output", "end_of_line"},
	"command_space":          {"output", "command_separator"},
	"tool_change":            {"processing", "tool_change"},
	"output_tool_change":     {"processing", "tool_change"},
	"split_arcs":             {"processing", "split_arcs"},
	"spindle_wait":           {"processing", "spindle_wait"},
	"suppress_commands":      {"processing", "suppress_commands"},
	"translate_drill_cycles": {"processing", "translate_drill_cycles"},
	"early_tool_prep":        {"processing", "early_tool_prep"},
	"tool_before_change":     {"processing", "tool_before_change"},
	"safetyblock":            {"blocks", "safetyblock"},
	"preamble":               {"blocks", "preamble"},
	"postamble":              {"blocks", "postamble"},
	"pre_operation":          {"blocks", "pre_operation"},
	"post_operation":         {"blocks", "post_operation"},
	"tool_return":            {"blocks", "tool_return"},
}

// legacySectionFields renames keys inside a section.
var legacySectionFields = map[string]map[string]string{
	"output": {
		"output_comments":        "comments",
		"output_header":          "header",
		"output_line_numbers":    "line_numbers",
		"precision":              "axis_precision",
		"end_of_line_characters": "end_of_line",
		"command_space":          "command_separator",
	},
	"processing": {
		"output_tool_change": "tool_change",
	},
}

// MigrateLegacy rewrites a decoded configuration document that may use legacy
// field names into the canonical layout. Canonical keys already present win
// over legacy ones. The input map is not modified.
func MigrateLegacy(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	sections := map[string]map[string]any{}
	for _, name := range []string{"output", "processing", "blocks", "travel"} {
		sections[name] = map[string]any{}
		if sub, ok := raw[name].(map[string]any); ok {
			for k, v := range sub {
				if renamed, ok := legacySectionFields[name][k]; ok {
					if _, exists := sub[renamed]; exists {
						continue
					}
					k = renamed
				}
				sections[name][k] = v
			}
		}
	}

	for k, v := range raw {
		if _, isSection := sections[k]; isSection {
			continue
		}
		target, ok := legacyFields[k]
		if !ok {
			out[k] = v
			continue
		}
		sec := sections[target[0]]
		if _, exists := sec[target[1]]; !exists {
			sec[target[1]] = v
		}
	}

	if u, ok := sections["output"]["units"]; ok {
		sections["output"]["units"] = migrateUnits(u)
	}
	if _, ok := out["version"]; !ok {
		out["version"] = SchemaVersion
	}
	for name, sec := range sections {
		if len(sec) > 0 {
			out[name] = sec
		}
	}
	return out
}

func migrateUnits(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "g20", "inch", "inches", "imperial", "in":
		return string(Imperial)
	case "g21", "mm", "metric", "millimeters", "millimetres":
		return string(Metric)
	}
	return s
}

// FromMap migrates and decodes a generic configuration document. Fields that
// are absent keep the values of base.
func FromMap(raw map[string]any, base Machine) (Machine, error) {
	data, err := json.Marshal(MigrateLegacy(raw))
	if err != nil {
		return Machine{}, fmt.Errorf("failed to encode machine document: %w", err)
	}
	m := base
	m.Output.ParameterOrder = append([]string(nil), base.Output.ParameterOrder...)
	if err := json.Unmarshal(data, &m); err != nil {
		return Machine{}, err
	}
	if m.Version > SchemaVersion {
		return Machine{}, fmt.Errorf("machine schema version %d is newer than supported version %d", m.Version, SchemaVersion)
	}
	m.Normalize()
	return m, nil
}

// Decode builds a machine from a configuration document. The preset named by
// post_processor supplies every value the document leaves out.
func Decode(raw map[string]any) (Machine, error) {
	migrated := MigrateLegacy(raw)
	base := Default()
	if name, ok := migrated["post_processor"].(string); ok {
		if m, ok := ForPreset(name); ok {
			base = m
		}
	}
	return FromMap(migrated, base)
}
