package pipeline

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thuytrinht4/ds-ocr-parsePDF/internal/extract"
	"github.com/thuytrinht4/ds-ocr-parsePDF/internal/metrics"
)

const budgetText = `State of Example
2015-16 Budget Summary
Expenditures by Agency
General Special Bond
Fund Funds Funds Totals

Legislative, Judicial, Executive $ 3,456 $ 1,234 $ - $ 4,690

K-12 Education $ 50,000 $ 2,000 $ 100 $ 52,100

Health and Human Services $ 10,000 $ 20,000 $ - $ 30,000
General Government:
Other details follow.
Revenue Sources
2015-16
Personal Income Tax $ 17,000 $ 1,000 $ 18,000 $ 900
Corporation Tax $ 2,500 $ - $ 2,500 -100
   Subtotal $ 19,500
`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "a\nb", NormalizeText("a\n\nb"))
	assert.Equal(t, "a\n\nb", NormalizeText("a\n\n\n\nb"))
	assert.Equal(t, "a\nb", NormalizeText("a\nb"))
}

func TestBaseNameAndChartTitle(t *testing.T) {
	assert.Equal(t, "budget2015", BaseName("/data/budget2015.pdf"))
	assert.Equal(t, "budget2015Expenditures", ChartTitle("budget2015.pdf", "Expenditures"))
}

func TestContentHashHex(t *testing.T) {
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	assert.Equal(t, want, ContentHashHex([]byte("hello world")))
	assert.NotEqual(t, ContentHashHex([]byte("aaa")), ContentHashHex([]byte("bbb")))
}

func TestProcessor_Process(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewProcessor(Options{}, testLogger(), metrics.New(reg))

	res, err := p.Process(context.Background(), "budget2015.txt", []byte(budgetText))
	require.NoError(t, err)

	assert.Equal(t, "budget2015.txt", res.Filename)
	assert.Len(t, res.ContentHash, 64)
	require.Len(t, res.Sections, 2)

	exp := res.Sections[0]
	assert.Equal(t, "Expenditures", exp.Table.Name)
	assert.Equal(t, "Totals", exp.TotalColumn)
	assert.Equal(t, 3, exp.Table.Len())
	assert.Equal(t, "86790", exp.Total.String())

	rev := res.Sections[1]
	assert.Equal(t, "Revenues", rev.Table.Name)
	assert.Equal(t, 2, rev.Table.Len())
	assert.Equal(t, "20500", rev.Total.String())

	s, ok := res.Section("revenues")
	require.True(t, ok)
	assert.Equal(t, "Total", s.TotalColumn)
	_, ok = res.Section("missing")
	assert.False(t, ok)
}

func TestProcessor_ProcessErrors(t *testing.T) {
	p := NewProcessor(Options{}, testLogger(), nil)
	ctx := context.Background()

	_, err := p.Process(ctx, "image.png", []byte("x"))
	assert.Error(t, err)

	_, err = p.Process(ctx, "empty.txt", []byte("nothing to see here"))
	assert.ErrorIs(t, err, extract.ErrNoBlockFound)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = p.Process(cancelled, "budget.txt", []byte(budgetText))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResult_Print(t *testing.T) {
	p := NewProcessor(Options{}, testLogger(), nil)
	res, err := p.Process(context.Background(), "budget2015.txt", []byte(budgetText))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, res.Print(&buf))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "budget2015.txt\n"))
	assert.True(t, strings.HasSuffix(out, "Total Expenditures: 86790\nTotal Revenues: 20500\n\n"))
	assert.Less(t, strings.Index(out, "K-12 Education"), strings.Index(out, "Personal Income Tax"))
	assert.Contains(t, out, "52100.0")
}

func TestProcessor_ProcessFileWritesOutputs(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "charts")
	path := filepath.Join(in, "budget2015.txt")
	require.NoError(t, os.WriteFile(path, []byte(budgetText), 0o644))

	p := NewProcessor(Options{
		OutputDir:  out,
		ExportCSV:  true,
		ExportXLSX: true,
		ExportHTML: true,
	}, testLogger(), nil)

	res, err := p.ProcessFile(context.Background(), path)
	require.NoError(t, err)

	for _, name := range []string{
		"budget2015Expenditures.png",
		"budget2015Revenues.png",
		"budget2015.csv",
		"budget2015.xlsx",
		"budget2015.html",
	} {
		info, err := os.Stat(filepath.Join(out, name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size(), name)
	}
	assert.Len(t, res.Outputs, 5)
	assert.Equal(t, "budget2015Expenditures.png", res.Sections[0].Chart)

	html, err := os.ReadFile(filepath.Join(out, "budget2015.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "budget2015Revenues.png")
}

func TestProcessor_ChartSpec(t *testing.T) {
	p := NewProcessor(Options{OutputDir: "/out", ChartKind: "bar", ChartWidth: 100}, testLogger(), nil)
	res, err := p.Process(context.Background(), "b.txt", []byte(budgetText))
	require.NoError(t, err)

	spec := p.ChartSpec(res.Filename, res.Sections[0])
	assert.Equal(t, "bExpenditures", spec.Title)
	assert.Equal(t, "Totals", spec.SortColumn)
	assert.Equal(t, "Agency", spec.XColumn)
	assert.EqualValues(t, "bar", spec.Kind)
	assert.EqualValues(t, 100, spec.Width)
	assert.Equal(t, "/out", spec.Dir)
}
