package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/thuytrinht4/ds-ocr-parsePDF/internal/chart"
	"github.com/thuytrinht4/ds-ocr-parsePDF/internal/export"
	"github.com/thuytrinht4/ds-ocr-parsePDF/internal/pipeline"
	"github.com/thuytrinht4/ds-ocr-parsePDF/internal/report"
)

func (s *Server) handleListExtractions(w http.ResponseWriter, r *http.Request) {
	items := make([]map[string]any, 0, s.store.Len())
	for _, res := range s.store.List() {
		items = append(items, map[string]any{
			"id":         res.ID,
			"filename":   res.Filename,
			"created_at": res.CreatedAt,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"extractions": items})
}

func (s *Server) handleGetExtraction(w http.ResponseWriter, r *http.Request) {
	res, ok := s.lookup(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resultView(res))
}

func (s *Server) handleDeleteExtraction(w http.ResponseWriter, r *http.Request) {
	if !s.store.Delete(chi.URLParam(r, "id")) {
		jsonError(w, "extraction not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleChart renders the bar chart of one table as PNG.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	res, ok := s.lookup(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "table")
	sec, ok := res.Section(name)
	if !ok {
		jsonError(w, fmt.Sprintf("table %q not found", name), http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := chart.WritePNG(&buf, sec.Table, s.proc.ChartSpec(res.Filename, sec)); err != nil {
		s.log.Error("chart render failed", "id", res.ID, "table", name, "error", err)
		jsonError(w, "failed to render chart: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

// handleReport renders the HTML report with chart images linked to the
// chart endpoint.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	res, ok := s.lookup(w, r)
	if !ok {
		return
	}
	doc := res.Report()
	for i := range doc.Sections {
		doc.Sections[i].Chart = "charts/" + url.PathEscape(doc.Sections[i].Table.Name)
	}

	var buf bytes.Buffer
	if err := report.WriteHTML(&buf, doc); err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	res, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var (
		buf         bytes.Buffer
		err         error
		contentType string
	)
	format := chi.URLParam(r, "format")
	switch format {
	case "csv":
		contentType = "text/csv"
		err = export.WriteCSV(&buf, res.Filename, res.Tables()...)
	case "xlsx":
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		err = export.WriteXLSX(&buf, res.Tables()...)
	default:
		jsonError(w, fmt.Sprintf("unsupported export format: %s", format), http.StatusBadRequest)
		return
	}
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", pipeline.BaseName(res.Filename)+"."+format))
	w.Write(buf.Bytes())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"extractions": s.store.Len(),
		"result_ttl":  s.cfg.ResultTTL.String(),
	})
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*pipeline.Result, bool) {
	res := s.store.Get(chi.URLParam(r, "id"))
	if res == nil {
		jsonError(w, "extraction not found", http.StatusNotFound)
		return nil, false
	}
	return res, true
}
