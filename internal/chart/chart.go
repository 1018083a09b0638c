// Package chart renders budget tables as bar charts.
package chart

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/thuytrinht4/ds-ocr-parsePDF/internal/table"
)

// Kind selects the chart shape.
type Kind string

const (
	KindBarH Kind = "barh"
	KindBar  Kind = "bar"
)

var (
	// ErrRenderWrite indicates the chart image could not be written.
	ErrRenderWrite = errors.New("chart write failed")
	// ErrNoRows indicates the table has nothing to plot.
	ErrNoRows      = errors.New("table has no rows")
	ErrUnknownKind = errors.New("unknown chart kind")
)

// ParseKind validates a chart kind name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindBarH, KindBar:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Default figure size, in inches.
const (
	DefaultWidth  = 20
	DefaultHeight = 10
)

// RenderWriteError reports a failure to write the image to disk.
type RenderWriteError struct {
	Path string
	Err  error
}

func (e *RenderWriteError) Error() string {
	return fmt.Sprintf("write chart %s: %v", e.Path, e.Err)
}

func (e *RenderWriteError) Unwrap() []error {
	return []error{ErrRenderWrite, e.Err}
}

// Spec describes one chart.
type Spec struct {
	SortColumn string
	XColumn    string // category labels
	YColumn    string // bar magnitudes
	Kind       Kind
	Width      vg.Length
	Height     vg.Length
	Title      string
	Dir        string // output directory; empty means the working directory
}

// BarSpec returns the chart the budget report draws for a table: a
// horizontal bar per row, sorted ascending by valueColumn.
func BarSpec(t *table.Table, valueColumn, title string) Spec {
	return Spec{
		SortColumn: valueColumn,
		XColumn:    t.LabelColumn(),
		YColumn:    valueColumn,
		Kind:       KindBarH,
		Width:      DefaultWidth * vg.Inch,
		Height:     DefaultHeight * vg.Inch,
		Title:      title,
	}
}

// Filename derives the PNG name for a chart title.
func Filename(title string) string {
	return strings.ReplaceAll(title, " ", "_") + ".png"
}

// Render draws the chart and writes it as PNG into s.Dir, replacing any
// existing file of the same name. It returns the written path.
func Render(t *table.Table, s Spec) (string, error) {
	p, err := Plot(t, s)
	if err != nil {
		return "", err
	}
	w, h := size(s)
	wt, err := p.WriterTo(w, h, "png")
	if err != nil {
		return "", fmt.Errorf("draw chart %q: %w", s.Title, err)
	}

	path := filepath.Join(s.Dir, Filename(s.Title))
	f, err := os.Create(path)
	if err != nil {
		return "", &RenderWriteError{Path: path, Err: err}
	}
	if _, err := wt.WriteTo(f); err != nil {
		f.Close()
		return "", &RenderWriteError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return "", &RenderWriteError{Path: path, Err: err}
	}
	return path, nil
}

// WritePNG draws the chart into w.
func WritePNG(w io.Writer, t *table.Table, s Spec) error {
	p, err := Plot(t, s)
	if err != nil {
		return err
	}
	width, height := size(s)
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("draw chart %q: %w", s.Title, err)
	}
	_, err = wt.WriteTo(w)
	return err
}

// Plot builds the chart without rendering it. Rows are sorted ascending
// by s.SortColumn; the input table is not modified.
func Plot(t *table.Table, s Spec) (*plot.Plot, error) {
	if t.Len() == 0 {
		return nil, fmt.Errorf("chart %q: %w", s.Title, ErrNoRows)
	}
	kind := s.Kind
	if kind == "" {
		kind = KindBarH
	}
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}

	sorted, err := t.SortedBy(s.SortColumn)
	if err != nil {
		return nil, fmt.Errorf("sort chart rows: %w", err)
	}
	labels, err := categoryLabels(sorted, s.XColumn)
	if err != nil {
		return nil, err
	}
	values, err := sorted.Column(s.YColumn)
	if err != nil {
		return nil, fmt.Errorf("chart values: %w", err)
	}

	w, h := size(s)
	span := h
	if kind == KindBar {
		span = w
	}
	// Leave roughly half of each category slot as gap.
	barWidth := span / vg.Length(2*len(values)+2)

	bars, err := plotter.NewBarChart(plotter.Values(values), barWidth)
	if err != nil {
		return nil, fmt.Errorf("build bars: %w", err)
	}
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = 0

	p := plot.New()
	p.Title.Text = s.Title
	p.Add(bars)
	p.Legend.Add(s.YColumn, bars)
	p.Legend.Top = true

	if kind == KindBarH {
		bars.Horizontal = true
		p.NominalY(labels...)
		p.X.Label.Text = s.YColumn
		p.Add(plotter.NewGrid())
	} else {
		p.NominalX(labels...)
		p.Y.Label.Text = s.YColumn
	}
	return p, nil
}

func categoryLabels(t *table.Table, column string) ([]string, error) {
	if column == "" || column == t.LabelColumn() {
		return t.Labels(), nil
	}
	values, err := t.Column(column)
	if err != nil {
		return nil, fmt.Errorf("chart labels: %w", err)
	}
	labels := make([]string, len(values))
	for i, v := range values {
		labels[i] = table.FormatValue(v)
	}
	return labels, nil
}

func size(s Spec) (vg.Length, vg.Length) {
	w, h := s.Width, s.Height
	if w <= 0 {
		w = DefaultWidth * vg.Inch
	}
	if h <= 0 {
		h = DefaultHeight * vg.Inch
	}
	return w, h
}
