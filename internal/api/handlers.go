package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/conneroisu/ope/internal/errors"
	"github.com/conneroisu/ope/internal/query"
	"github.com/conneroisu/ope/internal/reviews"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type notFoundBody struct {
	Error              string   `json:"error"`
	AvailableEndpoints []string `json:"available_endpoints"`
}

type healthBody struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Reviews int    `json:"reviews"`
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	all, ok := s.load(w, r)
	if !ok {
		return
	}

	page := intParam(r, "page", query.DefaultPage)
	perPage := intParam(r, "per_page", s.opts.DefaultPerPage)
	writeJSON(w, http.StatusOK, query.Paginate(all, page, perPage))
}

func (s *Server) handleGetReview(w http.ResponseWriter, r *http.Request) {
	all, ok := s.load(w, r)
	if !ok {
		return
	}

	review, err := query.Find(all, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if len(query.Tokens(q)) == 0 {
		s.writeError(w, r, query.ErrEmptyQuery)
		return
	}

	all, ok := s.load(w, r)
	if !ok {
		return
	}

	result, err := query.Search(all, q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	all, ok := s.load(w, r)
	if !ok {
		return
	}

	summary, err := query.Analyze(all)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	all, ok := s.load(w, r)
	if !ok {
		return
	}

	body, err := query.ExportCSV(all)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+query.CSVFilename)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	all, ok := s.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, healthBody{Status: "ok", Version: s.opts.Version, Reviews: len(all)})
}

func (s *Server) handleNotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, notFoundBody{
		Error:              "Endpoint not found",
		AvailableEndpoints: s.Endpoints(),
	})
}

// load reads the review sequence for one request. On failure it writes the
// error response and reports false.
func (s *Server) load(w http.ResponseWriter, r *http.Request) ([]reviews.Review, bool) {
	all, err := s.source.Load(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return all, true
}

// writeError maps err to its status. Client errors carry the error message
// only; anything else is an internal error and is logged.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status < http.StatusInternalServerError {
		writeJSON(w, status, errorBody{Error: errors.Message(err)})
		return
	}

	s.logger.Error(r.Context(), err, "Request failed",
		"path", r.URL.Path,
		"request_id", RequestIDFromContext(r.Context()))
	writeJSON(w, status, errorBody{Error: "Internal server error", Message: err.Error()})
}

// writeJSON encodes v before writing the header, so an unencodable value
// becomes a 500 error body instead of a truncated response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorBody{Error: "Internal server error", Message: err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

// intParam parses a positive integer query parameter, falling back to def
// when it is missing, malformed or not positive.
func intParam(r *http.Request, name string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || n < 1 {
		return def
	}
	return n
}
