package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/gfc-explorer/internal/geo"
	"github.com/sells-group/gfc-explorer/internal/hpi"
	"github.com/sells-group/gfc-explorer/internal/model"
	"github.com/sells-group/gfc-explorer/internal/refdata"
)

const sessionCookie = "gfc_session"

// envelope is the uniform response shape. Aggregation failures surface as an
// empty data payload plus a diagnostic; they never become 5xx responses.
type envelope struct {
	Data       any    `json:"data"`
	Summary    any    `json:"summary,omitempty"`
	Diagnostic string `json:"diagnostic,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// selectionFrom resolves the request's selection: explicit query parameters
// first, then the session's stored selection.
func (s *Server) selectionFrom(r *http.Request) (model.Selection, bool) {
	q := r.URL.Query()
	sel := model.Selection{CBSAName: strings.TrimSpace(q.Get("cbsa"))}
	if v := q.Get("from"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			sel.YearMin = n
		}
	}
	if v := q.Get("to"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			sel.YearMax = n
		}
	}

	if sel.CBSAName == "" {
		if c, err := r.Cookie(sessionCookie); err == nil {
			if stored, ok := s.sessions.Get(c.Value); ok {
				return stored.Normalize(), true
			}
		}
		return model.Selection{}, false
	}
	return sel.Normalize(), true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// logDiagnostic records a caught query failure before it is rendered.
func logDiagnostic(op, cbsa, diagnostic string) {
	if diagnostic == "" {
		return
	}
	zap.L().Error("query failed", zap.String("op", op), zap.String("cbsa", cbsa), zap.String("diagnostic", diagnostic))
}

func (s *Server) handleCBSAs(w http.ResponseWriter, r *http.Request) {
	res := refdata.Report(s.engine.CBSAOptions(r.Context()))
	logDiagnostic("cbsas", "", res.Diagnostic)
	writeJSON(w, http.StatusOK, envelope{Data: res.Rows, Diagnostic: res.Diagnostic})
}

func (s *Server) handleTracts(w http.ResponseWriter, r *http.Request) {
	sel, ok := s.selectionFrom(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, envelope{Data: []model.TractAggregate{}, Diagnostic: "no CBSA selected"})
		return
	}

	res := refdata.Report(s.engine.AggregateByTract(r.Context(), sel))
	logDiagnostic("tracts", sel.CBSAName, res.Diagnostic)
	writeJSON(w, http.StatusOK, envelope{Data: res.Rows, Diagnostic: res.Diagnostic})
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	sel, ok := s.selectionFrom(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, envelope{Data: []model.YearPoint{}, Diagnostic: "no CBSA selected"})
		return
	}

	res := refdata.Report(s.engine.AggregateByYear(r.Context(), sel))
	logDiagnostic("series", sel.CBSAName, res.Diagnostic)
	writeJSON(w, http.StatusOK, envelope{Data: res.Rows, Summary: hpi.Summarize(res.Rows), Diagnostic: res.Diagnostic})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sel, ok := s.selectionFrom(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, envelope{Diagnostic: "no CBSA selected"})
		return
	}

	res := refdata.Report(s.engine.AggregateByTract(r.Context(), sel))
	logDiagnostic("summary", sel.CBSAName, res.Diagnostic)
	writeJSON(w, http.StatusOK, envelope{Data: hpi.SummarizeTracts(sel.CBSAName, res.Rows), Diagnostic: res.Diagnostic})
}

// boundariesPayload carries choropleth geometry plus the map center.
type boundariesPayload struct {
	Boundaries any     `json:"boundaries"`
	Center     *latLng `json:"center,omitempty"`
}

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (s *Server) handleBoundaries(w http.ResponseWriter, r *http.Request) {
	sel, ok := s.selectionFrom(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, envelope{Diagnostic: "no CBSA selected"})
		return
	}

	res := refdata.Report(s.engine.AggregateByTract(r.Context(), sel))
	logDiagnostic("boundaries", sel.CBSAName, res.Diagnostic)

	missing := 0
	for _, row := range res.Rows {
		if !s.counties.Has(row.FIPS) {
			missing++
		}
	}
	if missing > 0 && s.counties.Len() > 0 {
		zap.L().Warn("tracts without county geometry",
			zap.String("cbsa", sel.CBSAName), zap.Int("count", missing))
	}

	payload := boundariesPayload{Boundaries: s.counties.ForTracts(res.Rows)}
	if lat, lng, ok := geo.Center(res.Rows); ok {
		payload.Center = &latLng{Lat: lat, Lng: lng}
	}
	writeJSON(w, http.StatusOK, envelope{Data: payload, Diagnostic: res.Diagnostic})
}

func (s *Server) handleSelectionGet(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		writeJSON(w, http.StatusNotFound, envelope{Diagnostic: "no selection in session"})
		return
	}
	sel, ok := s.sessions.Get(c.Value)
	if !ok {
		writeJSON(w, http.StatusNotFound, envelope{Diagnostic: "no selection in session"})
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: sel})
}

func (s *Server) handleSelectionSet(w http.ResponseWriter, r *http.Request) {
	var sel model.Selection
	if err := json.NewDecoder(r.Body).Decode(&sel); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Diagnostic: "invalid request body"})
		return
	}
	if strings.TrimSpace(sel.CBSAName) == "" {
		writeJSON(w, http.StatusBadRequest, envelope{Diagnostic: "cbsa_name is required"})
		return
	}
	sel = sel.Normalize()

	var existing string
	if c, err := r.Cookie(sessionCookie); err == nil {
		existing = c.Value
	}
	id := s.sessions.Set(existing, sel)

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, envelope{Data: sel})
}
