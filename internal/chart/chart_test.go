package chart

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"

	"github.com/thuytrinht4/ds-ocr-parsePDF/internal/table"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func revenues() *table.Table {
	t := table.New("Revenues", []string{"Source", "General", "Special", "Total", "Change"})
	t.Rows = []table.Row{
		{Label: "Personal Income Tax", Values: []float64{17000, 1000, 18000, 900}},
		{Label: "Sales Tax", Values: []float64{6000, 0, 6000, 50}},
		{Label: "Corporation Tax", Values: []float64{2500, 0, 2500, -100}},
	}
	return t
}

func smallSpec(dir, title string) Spec {
	s := BarSpec(revenues(), "Total", title)
	s.Width = 4 * vg.Inch
	s.Height = 3 * vg.Inch
	s.Dir = dir
	return s
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "budget2015Expenditures.png", Filename("budget2015Expenditures"))
	assert.Equal(t, "State_Budget_Revenues.png", Filename("State Budget Revenues"))
}

func TestBarSpec_Defaults(t *testing.T) {
	s := BarSpec(revenues(), "Total", "x")
	assert.Equal(t, "Total", s.SortColumn)
	assert.Equal(t, "Source", s.XColumn)
	assert.Equal(t, "Total", s.YColumn)
	assert.Equal(t, KindBarH, s.Kind)
	assert.Equal(t, 20*vg.Inch, s.Width)
	assert.Equal(t, 10*vg.Inch, s.Height)
}

func TestRender_WritesPNG(t *testing.T) {
	dir := t.TempDir()

	path, err := Render(revenues(), smallSpec(dir, "budget Revenues"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "budget_Revenues.png"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic))
}

func TestRender_Overwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "same.png")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	_, err := Render(revenues(), smallSpec(dir, "same"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic))
}

func TestRender_WriteError(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does", "not", "exist")

	_, err := Render(revenues(), smallSpec(missing, "x"))
	require.ErrorIs(t, err, ErrRenderWrite)

	var wErr *RenderWriteError
	require.ErrorAs(t, err, &wErr)
	assert.Equal(t, filepath.Join(missing, "x.png"), wErr.Path)
}

func TestRender_VerticalBars(t *testing.T) {
	s := smallSpec(t.TempDir(), "vertical")
	s.Kind = KindBar
	_, err := Render(revenues(), s)
	require.NoError(t, err)
}

func TestPlot_DoesNotMutateTable(t *testing.T) {
	tbl := revenues()
	_, err := Plot(tbl, smallSpec("", "x"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Personal Income Tax", "Sales Tax", "Corporation Tax"}, tbl.Labels())
}

func TestPlot_Errors(t *testing.T) {
	empty := table.New("Empty", []string{"Source", "Total"})
	_, err := Plot(empty, BarSpec(empty, "Total", "empty"))
	assert.ErrorIs(t, err, ErrNoRows)

	s := smallSpec("", "pie")
	s.Kind = "pie"
	_, err = Plot(revenues(), s)
	assert.ErrorIs(t, err, ErrUnknownKind)

	s = smallSpec("", "bad")
	s.SortColumn = "Missing"
	_, err = Plot(revenues(), s)
	assert.ErrorIs(t, err, table.ErrUnknownColumn)
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, revenues(), smallSpec("", "inline")))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" BarH ")
	require.NoError(t, err)
	assert.Equal(t, KindBarH, k)

	k, err = ParseKind("bar")
	require.NoError(t, err)
	assert.Equal(t, KindBar, k)

	_, err = ParseKind("pie")
	assert.ErrorIs(t, err, ErrUnknownKind)
}
