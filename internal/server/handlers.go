package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/mrityunjay5004/personal-ai-data-analyst/internal/dataset"
	"github.com/mrityunjay5004/personal-ai-data-analyst/internal/prompt"
	"github.com/mrityunjay5004/personal-ai-data-analyst/internal/runner"
)

type tableJSON struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

func toTableJSON(t *dataset.Table) *tableJSON {
	if t == nil {
		return nil
	}
	return &tableJSON{Columns: t.Columns, Rows: t.Rows}
}

type profileJSON struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

type uploadResponse struct {
	SessionID   string        `json:"session_id"`
	Name        string        `json:"name"`
	Rows        int           `json:"rows"`
	Cols        int           `json:"cols"`
	Profile     []profileJSON `json:"profile"`
	Preview     *tableJSON    `json:"preview"`
	Suggestions []string      `json:"suggestions"`
}

type queryRequest struct {
	SessionID string `json:"session_id"`
	Prompt    string `json:"prompt"`
}

type queryResponse struct {
	Kind     string     `json:"kind"` // text | table | chart | error
	Text     string     `json:"text,omitempty"`
	Table    *tableJSON `json:"table,omitempty"`
	ChartPNG string     `json:"chart_png,omitempty"` // base64
	Error    string     `json:"error,omitempty"`
	Stage    string     `json:"stage,omitempty"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, nil); err != nil {
		s.logger.Error().Err(err).Msg("render index")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintln(w, `{"status":"ok"}`)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxBytes := int64(s.cfg.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("parse upload: %w", err))
		return
	}
	file, hdr, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("missing file field"))
		return
	}
	defer file.Close()

	ds, err := dataset.Load(hdr.Filename, file)
	if err != nil {
		var pe *dataset.ParseError
		if errors.As(err, &pe) {
			writeError(w, http.StatusUnprocessableEntity, pe)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	// Re-uploads under the same session replace the dataset wholesale.
	sess := s.store.Get(r.FormValue("session_id"))
	if sess == nil {
		sess = s.store.Create()
	}
	sess.SetDataset(ds)
	s.logger.Info().Str("session", sess.ID).Str("file", ds.Name).
		Int("rows", ds.NumRows()).Int("cols", ds.NumCols()).Msg("dataset loaded")

	profiles := ds.Profile()
	resp := uploadResponse{
		SessionID:   sess.ID,
		Name:        ds.Name,
		Rows:        ds.NumRows(),
		Cols:        ds.NumCols(),
		Preview:     toTableJSON(ds.Head(s.cfg.PreviewRows)),
		Suggestions: prompt.Suggestions(profiles),
	}
	for _, p := range profiles {
		resp.Profile = append(resp.Profile, profileJSON{Name: p.Name, Kind: p.Kind.String()})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, errors.New("empty prompt"))
		return
	}
	sess := s.store.Get(req.SessionID)
	if sess == nil {
		writeError(w, http.StatusNotFound, errors.New("unknown session; upload a file first"))
		return
	}

	var res *runner.Result
	err := sess.Do(func(ds *dataset.Dataset) error {
		var err error
		res, err = s.pipeline.Answer(r.Context(), ds, req.Prompt)
		return err
	})
	if err != nil {
		// Query failures are user-visible messages, not server faults.
		var qe *QueryError
		resp := queryResponse{Kind: "error", Error: err.Error()}
		if errors.As(err, &qe) {
			resp.Stage = string(qe.Stage)
			resp.Error = qe.Err.Error()
		}
		s.logger.Warn().Str("session", sess.ID).Str("stage", resp.Stage).
			Err(err).Msg("query failed")
		writeJSON(w, http.StatusOK, resp)
		return
	}

	resp := queryResponse{Kind: string(res.Kind)}
	switch res.Kind {
	case runner.KindTable:
		sess.SetLastTable(res.Table)
		resp.Table = toTableJSON(res.Table)
	case runner.KindChart:
		resp.ChartPNG = base64.StdEncoding.EncodeToString(res.PNG)
	default:
		resp.Text = res.Text
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	sess := s.store.Get(r.URL.Query().Get("session_id"))
	if sess == nil {
		writeError(w, http.StatusNotFound, errors.New("unknown session"))
		return
	}
	var out []string
	_ = sess.Do(func(ds *dataset.Dataset) error {
		if ds != nil {
			out = prompt.Suggestions(ds.Profile())
		}
		return nil
	})
	writeJSON(w, http.StatusOK, map[string][]string{"suggestions": out})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	sess := s.store.Get(r.URL.Query().Get("session_id"))
	if sess == nil {
		writeError(w, http.StatusNotFound, errors.New("unknown session"))
		return
	}
	t := sess.LastTable()
	if t == nil {
		writeError(w, http.StatusNotFound, errors.New("no tabular result to download"))
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="result.csv"`)
	if err := t.WriteCSV(w); err != nil {
		s.logger.Error().Err(err).Msg("write csv")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
