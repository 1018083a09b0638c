package extract

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"slices"
)

// Layout describes one table format: where its block sits in the document
// text, how each block line splits into a label and dollar values, and the
// columns the rows are loaded into.
type Layout struct {
	Name         string
	BlockLocator *regexp.Regexp
	RowSplitter  *regexp.Regexp
	Columns      []string
	TotalColumn  string // value column summed and charted
}

// Built-in patterns for the two budget summary tables.
const (
	// Lines between the "Totals" header and "General Government:".
	ExpendituresBlock = `Totals\n+(Legislative, Judicial, Executive.*?)\nGeneral Government:`
	// Lines between the fiscal year header and the first Subtotal/Total line.
	RevenuesBlock = `\d{4}-\d{2}\n(Personal Income Tax.*?)\n +[Subtotal|Total]`

	ExpendituresRow = `(K-12 Education|[a-z,& -]+)([$,0-9 -]+)`
	RevenuesRow     = `([a-z, ]+)([$,0-9 -]+)`
)

// NewLayout compiles the block locator with dot-matches-newline and the row
// splitter case-insensitively. The row splitter must expose a label and a
// values group, either named (?P<label>...) / (?P<values>...) or as the
// first two capturing groups.
func NewLayout(name, blockPattern, rowPattern string, columns []string, totalColumn string) (Layout, error) {
	if name == "" {
		return Layout{}, fmt.Errorf("layout name is required")
	}
	if len(columns) < 2 {
		return Layout{}, fmt.Errorf("layout %s: need a label column and at least one value column", name)
	}
	if totalColumn == "" {
		totalColumn = columns[len(columns)-1]
	}
	if !slices.Contains(columns[1:], totalColumn) {
		return Layout{}, fmt.Errorf("layout %s: total column %q is not a value column", name, totalColumn)
	}

	block, err := regexp.Compile("(?s)" + blockPattern)
	if err != nil {
		return Layout{}, fmt.Errorf("layout %s: compile block pattern: %w", name, err)
	}
	row, err := regexp.Compile("(?i)" + rowPattern)
	if err != nil {
		return Layout{}, fmt.Errorf("layout %s: compile row pattern: %w", name, err)
	}
	if row.NumSubexp() < 2 {
		return Layout{}, fmt.Errorf("layout %s: row pattern needs label and values groups, has %d", name, row.NumSubexp())
	}

	return Layout{
		Name:         name,
		BlockLocator: block,
		RowSplitter:  row,
		Columns:      append([]string(nil), columns...),
		TotalColumn:  totalColumn,
	}, nil
}

func mustLayout(name, blockPattern, rowPattern string, columns []string, totalColumn string) Layout {
	l, err := NewLayout(name, blockPattern, rowPattern, columns, totalColumn)
	if err != nil {
		panic(err)
	}
	return l
}

// ExpendituresLayout returns the agency expenditures table format.
func ExpendituresLayout() Layout {
	return mustLayout("Expenditures", ExpendituresBlock, ExpendituresRow,
		[]string{"Agency", "General", "Special", "Bond", "Totals"}, "Totals")
}

// RevenuesLayout returns the revenue sources table format.
func RevenuesLayout() Layout {
	return mustLayout("Revenues", RevenuesBlock, RevenuesRow,
		[]string{"Source", "General", "Special", "Total", "Change"}, "Total")
}

// DefaultLayouts returns the expenditures and revenues layouts, in that order.
func DefaultLayouts() []Layout {
	return []Layout{ExpendituresLayout(), RevenuesLayout()}
}

type layoutFile struct {
	Layouts []layoutDef `json:"layouts"`
}

type layoutDef struct {
	Name        string   `json:"name"`
	Block       string   `json:"block"`
	Row         string   `json:"row"`
	Columns     []string `json:"columns"`
	TotalColumn string   `json:"total_column"`
}

// LoadLayouts reads layout definitions from a JSON file of the form
// {"layouts":[{"name":..,"block":..,"row":..,"columns":[..],"total_column":..}]}.
func LoadLayouts(path string) ([]Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layouts: %w", err)
	}
	return ParseLayouts(data)
}

// ParseLayouts decodes JSON layout definitions.
func ParseLayouts(data []byte) ([]Layout, error) {
	var f layoutFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode layouts: %w", err)
	}
	if len(f.Layouts) == 0 {
		return nil, fmt.Errorf("decode layouts: no layouts defined")
	}

	seen := make(map[string]bool, len(f.Layouts))
	out := make([]Layout, 0, len(f.Layouts))
	for _, d := range f.Layouts {
		if seen[d.Name] {
			return nil, fmt.Errorf("decode layouts: duplicate layout %q", d.Name)
		}
		seen[d.Name] = true
		l, err := NewLayout(d.Name, d.Block, d.Row, d.Columns, d.TotalColumn)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}
