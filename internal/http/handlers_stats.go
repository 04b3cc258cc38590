package http

import (
	"net/http"

	"cleverspend/internal/core"
	applog "cleverspend/internal/log"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	period, err := core.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		s.writeError(w, r, "parse period", applog.OpSummary, err)
		return
	}

	sum, err := s.stats.Summary(r.Context(), period)
	if err != nil {
		s.writeError(w, r, "compute summary", applog.OpSummary, err)
		return
	}
	NewJSONResponse().Payload(sum).Write(w)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := s.stats.Overview(r.Context())
	if err != nil {
		s.writeError(w, r, "compute overview", applog.OpSummary, err)
		return
	}
	NewJSONResponse().Payload(overview).Write(w)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.expenses.Reset(r.Context()); err != nil {
		s.writeError(w, r, "reset store", applog.OpReset, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type exportResponse struct {
	Period core.Period `json:"period"`
	Rows   int         `json:"rows"`
	Range  string      `json:"range,omitempty"`
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if s.exports == nil {
		ServiceUnavailableError("spreadsheet export is not configured").Write(w)
		return
	}

	period, err := core.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		s.writeError(w, r, "parse period", applog.OpExport, err)
		return
	}

	rows, ref, err := s.exports.ExportPeriod(r.Context(), period)
	if err != nil {
		s.writeError(w, r, "export expenses", applog.OpExport, err)
		return
	}
	NewJSONResponse().Payload(exportResponse{Period: period, Rows: rows, Range: ref}).Write(w)
}
