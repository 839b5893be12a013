// Package importer reads job inputs produced by other tools: tool libraries
// from CSV and Excel sheets, drill holes from DXF drawings and toolpaths
// from existing G-code.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/postcut/internal/model"
)

// ImportResult holds the results of a tool library import.
type ImportResult struct {
	Tools    []*model.ToolController
	Errors   []string
	Warnings []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Number    int
	Label     int
	Diameter  int
	Speed     int
	Direction int
	HorizFeed int
	VertFeed  int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"number":    {"tool", "t", "number", "tool number", "no", "#"},
	"label":     {"label", "name", "description", "desc"},
	"diameter":  {"diameter", "dia", "d", "size"},
	"speed":     {"speed", "rpm", "spindle", "spindle speed", "s"},
	"direction": {"direction", "dir", "rotation", "spindle dir"},
	"hfeed":     {"feed", "horiz feed", "horizontal feed", "feed xy", "f"},
	"vfeed":     {"plunge", "vert feed", "vertical feed", "feed z", "plunge feed"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}
		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}
		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}
		// Prefer delimiters with higher consistency and more columns
		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}
	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Returns the mapping and true if a header was detected, or the positional
// mapping (number, label, diameter, speed, direction, feed, plunge) and
// false if no header was found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{-1, -1, -1, -1, -1, -1, -1}
	slots := map[string]*int{
		"number":    &mapping.Number,
		"label":     &mapping.Label,
		"diameter":  &mapping.Diameter,
		"speed":     &mapping.Speed,
		"direction": &mapping.Direction,
		"hfeed":     &mapping.HorizFeed,
		"vfeed":     &mapping.VertFeed,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias && *slots[role] == -1 {
					*slots[role] = i
					isHeader = true
				}
			}
		}
	}
	if !isHeader {
		return ColumnMapping{0, 1, 2, 3, 4, 5, 6}, false
	}
	return mapping, true
}

// parseDirection converts a rotation string to a spindle direction.
func parseDirection(s string) (model.SpindleDir, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "forward", "cw", "m3", "m03":
		return model.SpindleForward, true
	case "reverse", "ccw", "m4", "m04":
		return model.SpindleReverse, true
	case "none", "off", "-":
		return model.SpindleNone, true
	}
	return model.SpindleForward, false
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// optionalFloat parses an optional numeric cell. Empty cells are zero.
func optionalFloat(row []string, idx int) (float64, bool) {
	s := getCell(row, idx)
	if s == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil && v >= 0
}

// parseRow extracts a tool controller from a row using the given column mapping.
// Returns the tool, any error message, and any warning message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string) (*model.ToolController, string, string) {
	numStr := getCell(row, mapping.Number)
	if numStr == "" {
		return nil, fmt.Sprintf("%s: Missing tool number", rowLabel), ""
	}
	num, err := strconv.Atoi(numStr)
	if err != nil || num <= 0 {
		return nil, fmt.Sprintf("%s: Invalid tool number '%s'", rowLabel, numStr), ""
	}

	label := getCell(row, mapping.Label)
	if label == "" {
		label = fmt.Sprintf("Tool %d", num)
	}

	speed, ok := optionalFloat(row, mapping.Speed)
	if !ok {
		return nil, fmt.Sprintf("%s: Invalid spindle speed '%s'", rowLabel, getCell(row, mapping.Speed)), ""
	}
	tc := model.NewToolController(label, num, speed)

	if tc.ToolDiameter, ok = optionalFloat(row, mapping.Diameter); !ok {
		return nil, fmt.Sprintf("%s: Invalid diameter '%s'", rowLabel, getCell(row, mapping.Diameter)), ""
	}
	if tc.HorizFeed, ok = optionalFloat(row, mapping.HorizFeed); !ok {
		return nil, fmt.Sprintf("%s: Invalid feed '%s'", rowLabel, getCell(row, mapping.HorizFeed)), ""
	}
	if tc.VertFeed, ok = optionalFloat(row, mapping.VertFeed); !ok {
		return nil, fmt.Sprintf("%s: Invalid plunge feed '%s'", rowLabel, getCell(row, mapping.VertFeed)), ""
	}

	var warning string
	dirStr := getCell(row, mapping.Direction)
	dir, ok := parseDirection(dirStr)
	if !ok {
		warning = fmt.Sprintf("%s: Unknown spindle direction '%s', defaulting to Forward", rowLabel, dirStr)
	}
	tc.SpindleDir = dir
	return tc, "", warning
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportToolsCSV imports a tool library from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
func ImportToolsCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}
	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	var warnings []string
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}
	result = ImportToolsFromReader(bytes.NewReader(data), delimiter)
	result.Warnings = append(warnings, result.Warnings...)
	return result
}

// ImportToolsFromReader imports a tool library from a CSV reader with a
// known delimiter.
func ImportToolsFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}
	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}
	return importFromRows(records, "Line")
}

// ImportToolsExcel imports a tool library from the first sheet of an Excel
// workbook.
func ImportToolsExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}
	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}
	return importFromRows(rows, "Row")
}

// importFromRows is the shared import logic for both CSV and Excel data.
// Duplicate tool numbers keep the first row.
func importFromRows(rows [][]string, rowPrefix string) ImportResult {
	result := ImportResult{}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		if mapping.Number == -1 {
			result.Errors = append(result.Errors, "Required column not found in header: Tool")
			return result
		}
	} else if _, err := strconv.Atoi(getCell(rows[0], 0)); err != nil {
		// Unrecognized header: skip it and use positional mapping
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")
	}

	seen := map[int]bool{}
	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		tc, errMsg, warning := parseRow(row, mapping, rowLabel)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
		if seen[tc.ToolNumber] {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: Duplicate tool number %d, skipped", rowLabel, tc.ToolNumber))
			continue
		}
		seen[tc.ToolNumber] = true
		result.Tools = append(result.Tools, tc)
	}
	return result
}
