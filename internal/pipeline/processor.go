package pipeline

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gonum.org/v1/plot/vg"

	"github.com/thuytrinht4/ds-ocr-parsePDF/internal/chart"
	"github.com/thuytrinht4/ds-ocr-parsePDF/internal/export"
	"github.com/thuytrinht4/ds-ocr-parsePDF/internal/extract"
	"github.com/thuytrinht4/ds-ocr-parsePDF/internal/metrics"
	"github.com/thuytrinht4/ds-ocr-parsePDF/internal/parser"
	"github.com/thuytrinht4/ds-ocr-parsePDF/internal/report"
	"github.com/thuytrinht4/ds-ocr-parsePDF/internal/table"
)

// Options controls what the processor extracts and writes.
type Options struct {
	Layouts []extract.Layout // defaults to extract.DefaultLayouts()

	OutputDir   string
	ChartKind   chart.Kind
	ChartWidth  vg.Length
	ChartHeight vg.Length

	ExportCSV  bool
	ExportXLSX bool
	ExportHTML bool

	Parser parser.Options
}

// Section is one extracted table and its total.
type Section struct {
	Table       *table.Table    `json:"table"`
	TotalColumn string          `json:"total_column"`
	Total       decimal.Decimal `json:"total"`
	Chart       string          `json:"chart,omitempty"`
}

// Result holds everything extracted from one document.
type Result struct {
	ID          string    `json:"id,omitempty"`
	Filename    string    `json:"filename"`
	ContentHash string    `json:"content_hash"`
	Sections    []Section `json:"sections"`
	Outputs     []string  `json:"outputs,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Section returns the section for a table name.
func (r *Result) Section(name string) (Section, bool) {
	for _, s := range r.Sections {
		if strings.EqualFold(s.Table.Name, name) {
			return s, true
		}
	}
	return Section{}, false
}

// Print writes the console report: the filename, each table, then one
// "Total <table>: <sum>" line per table and a blank line.
func (r *Result) Print(w io.Writer) error {
	var b bytes.Buffer
	b.WriteString(r.Filename + "\n")
	for _, s := range r.Sections {
		if err := s.Table.Format(&b); err != nil {
			return err
		}
	}
	for _, s := range r.Sections {
		fmt.Fprintf(&b, "Total %s: %s\n", s.Table.Name, s.Total.String())
	}
	b.WriteString("\n")
	_, err := w.Write(b.Bytes())
	return err
}

// Report converts the result into a report document.
func (r *Result) Report() report.Document {
	d := report.Document{Name: r.Filename}
	for _, s := range r.Sections {
		d.Sections = append(d.Sections, report.Section{
			Table:       s.Table,
			TotalColumn: s.TotalColumn,
			Total:       s.Total,
			Chart:       s.Chart,
		})
	}
	return d
}

// Tables returns the extracted tables in layout order.
func (r *Result) Tables() []*table.Table {
	out := make([]*table.Table, len(r.Sections))
	for i, s := range r.Sections {
		out[i] = s.Table
	}
	return out
}

// Processor turns one document into tables, totals, charts and exports.
type Processor struct {
	opts    Options
	log     *slog.Logger
	metrics *metrics.Metrics
}

func NewProcessor(opts Options, log *slog.Logger, m *metrics.Metrics) *Processor {
	if len(opts.Layouts) == 0 {
		opts.Layouts = extract.DefaultLayouts()
	}
	if opts.ChartKind == "" {
		opts.ChartKind = chart.KindBarH
	}
	return &Processor{opts: opts, log: log, metrics: m}
}

// ProcessFile reads, extracts and writes all outputs for the file at path.
func (p *Processor) ProcessFile(ctx context.Context, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	res, err := p.Process(ctx, filepath.Base(path), data)
	if err != nil {
		return nil, err
	}
	if err := p.WriteOutputs(res); err != nil {
		return nil, err
	}
	return res, nil
}

// Process parses and extracts every layout from an in-memory document.
// Nothing is written to disk.
func (p *Processor) Process(ctx context.Context, filename string, data []byte) (res *Result, err error) {
	log := p.log.With("file", filename)
	start := time.Now()
	defer func() {
		p.metrics.DocumentDone(err == nil, time.Since(start).Seconds())
	}()

	// Phase 1: Parse
	prs, err := parser.ForFile(filename, p.opts.Parser)
	if err != nil {
		return nil, err
	}
	text, err := prs.Parse(bytes.NewReader(data), filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text = NormalizeText(text)
	log.Debug("parsed document", "chars", len(text))

	// Phase 2: Extract
	res = &Result{
		Filename:    filename,
		ContentHash: ContentHashHex(data),
		CreatedAt:   time.Now().UTC(),
	}
	for _, layout := range p.opts.Layouts {
		t, err := extract.Extract(text, layout)
		if err != nil {
			log.Error("extraction failed", "table", layout.Name, "error", err)
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		total, err := t.Sum(layout.TotalColumn)
		if err != nil {
			return nil, fmt.Errorf("%s: total %s: %w", filename, layout.Name, err)
		}
		p.metrics.RowsExtracted(layout.Name, t.Len())
		log.Info("extracted table", "table", layout.Name, "rows", t.Len(), "total", total.String())
		res.Sections = append(res.Sections, Section{Table: t, TotalColumn: layout.TotalColumn, Total: total})
	}
	return res, nil
}

// ChartSpec returns the chart drawn for one section of a document.
func (p *Processor) ChartSpec(filename string, s Section) chart.Spec {
	spec := chart.BarSpec(s.Table, s.TotalColumn, ChartTitle(filename, s.Table.Name))
	spec.Kind = p.opts.ChartKind
	if p.opts.ChartWidth > 0 {
		spec.Width = p.opts.ChartWidth
	}
	if p.opts.ChartHeight > 0 {
		spec.Height = p.opts.ChartHeight
	}
	spec.Dir = p.opts.OutputDir
	return spec
}

// WriteOutputs renders one chart per section and the enabled exports into
// the output directory. Existing files are overwritten.
func (p *Processor) WriteOutputs(res *Result) error {
	log := p.log.With("file", res.Filename)
	if p.opts.OutputDir != "" {
		if err := os.MkdirAll(p.opts.OutputDir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	// Phase 3: Charts
	for i := range res.Sections {
		s := &res.Sections[i]
		path, err := chart.Render(s.Table, p.ChartSpec(res.Filename, *s))
		if err != nil {
			log.Error("chart failed", "table", s.Table.Name, "error", err)
			return fmt.Errorf("%s: %w", res.Filename, err)
		}
		s.Chart = filepath.Base(path)
		res.Outputs = append(res.Outputs, path)
		p.metrics.ChartRendered()
	}

	// Phase 4: Exports
	base := filepath.Join(p.opts.OutputDir, BaseName(res.Filename))
	if p.opts.ExportCSV {
		if err := export.SaveCSV(base+".csv", res.Filename, res.Tables()...); err != nil {
			return fmt.Errorf("%s: %w", res.Filename, err)
		}
		res.Outputs = append(res.Outputs, base+".csv")
	}
	if p.opts.ExportXLSX {
		if err := export.SaveXLSX(base+".xlsx", res.Tables()...); err != nil {
			return fmt.Errorf("%s: %w", res.Filename, err)
		}
		res.Outputs = append(res.Outputs, base+".xlsx")
	}
	if p.opts.ExportHTML {
		if err := writeHTML(base+".html", res.Report()); err != nil {
			return fmt.Errorf("%s: %w", res.Filename, err)
		}
		res.Outputs = append(res.Outputs, base+".html")
	}

	log.Info("outputs written", "count", len(res.Outputs))
	return nil
}

func writeHTML(path string, d report.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := report.WriteHTML(f, d); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// NormalizeText collapses each blank-line pair so table rows split across
// paragraphs become contiguous lines.
func NormalizeText(text string) string {
	return strings.ReplaceAll(text, "\n\n", "\n")
}

// BaseName strips the directory and extension from a document name.
func BaseName(filename string) string {
	name := filepath.Base(filename)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// ChartTitle names the chart for a table of a document, e.g.
// "budget2015Expenditures".
func ChartTitle(filename, tableName string) string {
	return BaseName(filename) + tableName
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
