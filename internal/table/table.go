package table

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnknownColumn is returned when a column name is not declared on the table.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrLabelColumn is returned when a numeric operation targets the label column.
	ErrLabelColumn = errors.New("label column is not numeric")
)

// Row is one extracted line: a label followed by its dollar values.
type Row struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

// Table is an ordered set of rows under declared column names. Columns[0]
// names the label; Columns[i] names Values[i-1].
type Table struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

func New(name string, columns []string) *Table {
	return &Table{
		Name:    name,
		Columns: append([]string(nil), columns...),
	}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// LabelColumn returns the name of the label column.
func (t *Table) LabelColumn() string {
	if len(t.Columns) == 0 {
		return ""
	}
	return t.Columns[0]
}

// ColumnIndex returns the position of name in Columns.
func (t *Table) ColumnIndex(name string) (int, error) {
	for i, c := range t.Columns {
		if c == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q in table %q", ErrUnknownColumn, name, t.Name)
}

// Labels returns the label of every row in order.
func (t *Table) Labels() []string {
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Label
	}
	return out
}

// Column returns the values of a numeric column in row order.
func (t *Table) Column(name string) ([]float64, error) {
	idx, err := t.valueIndex(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		if idx >= len(r.Values) {
			return nil, fmt.Errorf("row %d (%s) has no value for column %q", i, r.Label, name)
		}
		out[i] = r.Values[idx]
	}
	return out, nil
}

// Sum adds up a numeric column using decimal arithmetic so the total does
// not depend on row order.
func (t *Table) Sum(name string) (decimal.Decimal, error) {
	values, err := t.Column(name)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total, nil
}

// SortedBy returns a copy of the table with rows in ascending order of the
// named column. Equal keys keep their original order. Sorting by the label
// column orders rows lexically.
func (t *Table) SortedBy(name string) (*Table, error) {
	idx, err := t.ColumnIndex(name)
	if err != nil {
		return nil, err
	}
	out := t.Clone()
	if idx == 0 {
		sort.SliceStable(out.Rows, func(i, j int) bool {
			return out.Rows[i].Label < out.Rows[j].Label
		})
		return out, nil
	}
	if _, err := t.Column(name); err != nil {
		return nil, err
	}
	v := idx - 1
	sort.SliceStable(out.Rows, func(i, j int) bool {
		return out.Rows[i].Values[v] < out.Rows[j].Values[v]
	})
	return out, nil
}

// Clone deep-copies the table.
func (t *Table) Clone() *Table {
	out := New(t.Name, t.Columns)
	out.Rows = make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		out.Rows[i] = Row{Label: r.Label, Values: append([]float64(nil), r.Values...)}
	}
	return out
}

// Format writes the table as aligned text with a leading row index column.
func (t *Table) Format(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "\t%s\t\n", strings.Join(t.Columns, "\t"))
	for i, r := range t.Rows {
		cells := make([]string, 0, len(r.Values)+2)
		cells = append(cells, strconv.Itoa(i), r.Label)
		for _, v := range r.Values {
			cells = append(cells, FormatValue(v))
		}
		fmt.Fprintf(tw, "%s\t\n", strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func (t *Table) String() string {
	var b strings.Builder
	t.Format(&b)
	return b.String()
}

// FormatValue renders a dollar value with at least one decimal place.
func FormatValue(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

func (t *Table) valueIndex(name string) (int, error) {
	idx, err := t.ColumnIndex(name)
	if err != nil {
		return -1, err
	}
	if idx == 0 {
		return -1, fmt.Errorf("%w: %q", ErrLabelColumn, name)
	}
	return idx - 1, nil
}
