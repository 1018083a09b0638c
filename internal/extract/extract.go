// Package extract slices budget tables out of document text using a block
// locator pattern and a per-line row splitter.
package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/thuytrinht4/ds-ocr-parsePDF/internal/table"
)

// RowMatch is the result of splitting one block line.
type RowMatch struct {
	Label     string
	ValuesRaw string
}

// Extract locates the layout's block in text and loads every line of it
// into a table with the layout's columns. Blank lines are skipped; any
// other line must match the row splitter and carry exactly one value per
// value column.
func Extract(text string, layout Layout) (*table.Table, error) {
	block, err := LocateBlock(text, layout.BlockLocator)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", layout.Name, err)
	}

	t := table.New(layout.Name, layout.Columns)
	width := len(layout.Columns) - 1

	for i, line := range strings.Split(block, "\n") {
		lineNo := i + 1
		if strings.TrimSpace(line) == "" {
			continue
		}

		m, ok := SplitRow(layout.RowSplitter, line)
		if !ok {
			return nil, &RowMatchError{Layout: layout.Name, Line: lineNo, Text: line}
		}

		values, err := ParseValues(m.ValuesRaw)
		if err != nil {
			if ve, ok := err.(*ValueParseError); ok {
				ve.Layout = layout.Name
				ve.Line = lineNo
			}
			return nil, err
		}

		label := CleanLabel(m.Label)
		if len(values) != width {
			return nil, &WidthMismatchError{
				Layout: layout.Name,
				Line:   lineNo,
				Label:  label,
				Got:    len(values),
				Want:   width,
			}
		}

		t.Rows = append(t.Rows, table.Row{Label: label, Values: values})
	}

	return t, nil
}

// LocateBlock returns the span captured by the block locator: the group
// named "block" if present, otherwise the first capturing group.
func LocateBlock(text string, locator *regexp.Regexp) (string, error) {
	loc := locator.FindStringSubmatchIndex(text)
	if loc == nil {
		return "", ErrNoBlockFound
	}
	if locator.NumSubexp() == 0 {
		return "", ErrNoBlockGroup
	}

	g := 1
	if named := locator.SubexpIndex("block"); named > 0 {
		g = named
	}
	start, end := loc[2*g], loc[2*g+1]
	if start < 0 {
		return "", ErrNoBlockGroup
	}
	return text[start:end], nil
}

// SplitRow applies the row splitter to one line. The label and values are
// read from groups named "label" and "values", falling back to groups 1
// and 2.
func SplitRow(splitter *regexp.Regexp, line string) (RowMatch, bool) {
	sub := splitter.FindStringSubmatch(line)
	if sub == nil {
		return RowMatch{}, false
	}

	labelIdx, valuesIdx := 1, 2
	if i := splitter.SubexpIndex("label"); i > 0 {
		labelIdx = i
	}
	if i := splitter.SubexpIndex("values"); i > 0 {
		valuesIdx = i
	}
	if labelIdx >= len(sub) || valuesIdx >= len(sub) {
		return RowMatch{}, false
	}
	return RowMatch{Label: sub[labelIdx], ValuesRaw: sub[valuesIdx]}, true
}

// CleanLabel trims surrounding whitespace and drops thousands separators.
func CleanLabel(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), ",", "")
}

// CleanValues normalizes a raw value string: a dash followed by a space is
// a zero placeholder, and dollar signs and commas are decoration. The dash
// rewrite must run first, while the "- " pair is still intact.
func CleanValues(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "- ", "0.0 ")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	return s
}

// ParseValues cleans a raw value string and parses its whitespace-separated
// tokens left to right.
func ParseValues(raw string) ([]float64, error) {
	fields := strings.Fields(CleanValues(raw))
	if len(fields) == 0 {
		return nil, &ValueParseError{Raw: raw}
	}

	values := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, &ValueParseError{Raw: raw, Token: f, Err: err}
		}
		values[i] = v
	}
	return values, nil
}
