package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thuytrinht4/ds-ocr-parsePDF/internal/extract"
	"github.com/thuytrinht4/ds-ocr-parsePDF/internal/parser"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
}

func newBatch(t *testing.T, out *bytes.Buffer) *Batch {
	t.Helper()
	p := NewProcessor(Options{OutputDir: t.TempDir()}, testLogger(), nil)
	b := NewBatch(p, out, testLogger())
	b.Pattern = "*.txt"
	return b
}

func TestBatch_Discover(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"b.pdf":     "",
		"a.pdf":     "",
		"Z.pdf":     "",
		"notes.txt": "",
	})

	b := NewBatch(nil, nil, testLogger())
	files, err := b.Discover(dir)
	require.NoError(t, err)

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = filepath.Base(f)
	}
	assert.Equal(t, []string{"Z.pdf", "a.pdf", "b.pdf"}, names)
}

func TestBatch_RunIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a_broken.txt":   "no tables in here",
		"b_budget.txt":   budgetText,
		"c_budget2.txt":  budgetText,
		"ignored.pdf.md": budgetText,
	})

	var out bytes.Buffer
	b := newBatch(t, &out)
	sum, err := b.Run(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Processed)
	require.Len(t, sum.Failed, 1)
	assert.Equal(t, "a_broken.txt", sum.Failed[0].File)
	assert.ErrorIs(t, sum.Err(), extract.ErrNoBlockFound)

	report := out.String()
	assert.Less(t, strings.Index(report, "b_budget.txt"), strings.Index(report, "c_budget2.txt"))
	assert.Equal(t, 2, strings.Count(report, "Total Expenditures: 86790"))
}

func TestBatch_RunFailFast(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a_broken.txt": "no tables in here",
		"b_budget.txt": budgetText,
	})

	var out bytes.Buffer
	b := newBatch(t, &out)
	b.FailFast = true
	sum, err := b.Run(context.Background(), dir)
	require.Error(t, err)

	var fe *FileError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "a_broken.txt", fe.File)
	assert.Zero(t, sum.Processed)
	assert.Empty(t, out.String())
}

func TestBatch_RunBrokenPDF(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"broken.pdf": "not a pdf"})

	p := NewProcessor(Options{OutputDir: t.TempDir(), Parser: parser.Options{FallbackPdftotext: false}}, testLogger(), nil)
	var out bytes.Buffer
	sum, err := NewBatch(p, &out, testLogger()).Run(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, sum.Failed, 1)
	assert.ErrorIs(t, sum.Failed[0], parser.ErrExternalExtraction)
}

func TestBatch_RunCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"b_budget.txt": budgetText})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	sum, err := newBatch(t, &out).Run(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, sum.Processed)
}

func TestBatch_EmptyDir(t *testing.T) {
	var out bytes.Buffer
	sum, err := newBatch(t, &out).Run(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Zero(t, sum.Processed)
	assert.NoError(t, sum.Err())
}
