package ui

import (
	"fmt"
	"log"
	"math"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"borelog/domain/borehole"
	"borelog/internal/analysis"
	"borelog/internal/errors"
	"borelog/internal/ledger"
	"borelog/internal/session"

	"github.com/go-chi/chi/v5"
)

type stateResponse struct {
	Loaded    bool             `json:"loaded"`
	Filename  string           `json:"filename,omitempty"`
	UploadID  string           `json:"upload_id,omitempty"`
	Selected  string           `json:"selected,omitempty"`
	Boreholes []string         `json:"boreholes"`
	Rows      int              `json:"rows"`
	Columns   []string         `json:"columns"`
	Numeric   []string         `json:"numeric"`
	Message   *session.Message `json:"message,omitempty"`
}

func (s *Server) handleAPIState(w http.ResponseWriter, r *http.Request) {
	st := s.controller.Snapshot()
	resp := stateResponse{
		Loaded:    st.Loaded(),
		Filename:  st.Filename,
		UploadID:  st.UploadID,
		Selected:  st.Selected,
		Boreholes: []string{},
		Columns:   []string{},
		Numeric:   []string{},
		Message:   st.Message,
	}
	if st.Loaded() {
		resp.Boreholes = st.Boreholes()
		resp.Rows = st.Table.Len()
		resp.Columns = st.Table.Columns
		resp.Numeric = st.Table.Schema().Numeric
	}
	writeJSON(w, http.StatusOK, resp)
}

// summaryRow mirrors analysis.ColumnSummary with undefined statistics as null.
type summaryRow struct {
	Column string   `json:"column"`
	Count  int      `json:"count"`
	Mean   *float64 `json:"mean"`
	Std    *float64 `json:"std"`
	Min    *float64 `json:"min"`
	Q1     *float64 `json:"q1"`
	Median *float64 `json:"median"`
	Q3     *float64 `json:"q3"`
	Max    *float64 `json:"max"`
}

func newSummaryRow(s analysis.ColumnSummary) summaryRow {
	return summaryRow{
		Column: s.Column,
		Count:  s.Count,
		Mean:   nullable(s.Mean),
		Std:    nullable(s.Std),
		Min:    nullable(s.Min),
		Q1:     nullable(s.Q1),
		Median: nullable(s.Median),
		Q3:     nullable(s.Q3),
		Max:    nullable(s.Max),
	}
}

func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.controller.Snapshot().Summary()
	if err != nil {
		writeError(w, err)
		return
	}
	rows := make([]summaryRow, len(summary))
	for i, sum := range summary {
		rows[i] = newSummaryRow(sum)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"columns": rows})
}

func (s *Server) handleAPIReliability(w http.ResponseWriter, r *http.Request) {
	rel, err := s.controller.Snapshot().Reliability()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rel)
}

type boxResponse struct {
	Q1           float64   `json:"q1"`
	Median       float64   `json:"median"`
	Q3           float64   `json:"q3"`
	LowerWhisker float64   `json:"lower_whisker"`
	UpperWhisker float64   `json:"upper_whisker"`
	Outliers     []float64 `json:"outliers"`
}

// handleAPIColumn returns the distribution of one numeric column: its
// summary, histogram bins and box plot statistics.
func (s *Server) handleAPIColumn(w http.ResponseWriter, r *http.Request) {
	column, err := url.PathUnescape(chi.URLParam(r, "column"))
	if err != nil {
		writeError(w, errors.InvalidInput(fmt.Sprintf("bad column name: %v", err)))
		return
	}
	st := s.controller.Snapshot()
	if !st.Loaded() {
		writeError(w, errors.New(errors.CodeNotFound, "no file uploaded yet"))
		return
	}
	if !slices.Contains(st.Table.Schema().Numeric, column) {
		writeError(w, errors.NotFound(fmt.Sprintf("numeric column %q", column)))
		return
	}

	values := st.Table.Floats(column)
	resp := map[string]interface{}{
		"summary":   newSummaryRow(analysis.Summarize(column, values)),
		"histogram": analysis.NewHistogram(column, values),
	}
	if b := analysis.NewBoxStats(column, values); b.Count > 0 {
		outliers := b.Outliers
		if outliers == nil {
			outliers = []float64{}
		}
		resp["boxplot"] = boxResponse{
			Q1: b.Q1, Median: b.Median, Q3: b.Q3,
			LowerWhisker: b.LowerWhisker, UpperWhisker: b.UpperWhisker,
			Outliers: outliers,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAPIUploads(w http.ResponseWriter, r *http.Request) {
	limit := ledger.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	uploads, err := s.ledger.Recent(r.Context(), limit)
	if err != nil {
		log.Printf("[API] Failed to list uploads: %v", err)
		writeError(w, err)
		return
	}
	if uploads == nil {
		uploads = []borehole.Upload{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"uploads": uploads, "count": len(uploads)})
}
