package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/yql/internal/api/notifier"
	"github.com/leapstack-labs/yql/internal/state"
	"github.com/leapstack-labs/yql/internal/ui/resources"
	"github.com/leapstack-labs/yql/pkg/complete"
	"github.com/leapstack-labs/yql/pkg/highlight"
	"github.com/leapstack-labs/yql/pkg/lexer"
	"github.com/leapstack-labs/yql/pkg/token"
)

func (s *Server) routes(r chi.Router) {
	r.Get("/healthz", s.handleHealth)

	// Browser playground
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, resources.StaticPath(""), http.StatusFound)
	})
	r.Handle("/static/*", resources.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", s.handleCatalog)
		r.Get("/events", s.handleEvents)

		r.Group(func(r chi.Router) {
			r.Use(
				middleware.RequestSize(maxBodyBytes),
				middleware.AllowContentType("application/json"),
			)
			r.Post("/tokenize", s.handleTokenize)
			r.Post("/suggest", s.handleSuggest)
			r.Post("/highlight", s.handleHighlight)
		})

		r.Route("/saved", func(r chi.Router) {
			r.Use(s.requireStore)
			r.Get("/", s.handleListSaved)
			r.With(middleware.RequestSize(maxBodyBytes), middleware.AllowContentType("application/json")).
				Post("/", s.handleSave)
			r.Get("/{ref}", s.handleGetSaved)
			r.Delete("/{ref}", s.handleDeleteSaved)
		})

		r.Route("/history", func(r chi.Router) {
			r.Use(s.requireStore)
			r.Get("/", s.handleHistory)
			r.With(middleware.RequestSize(maxBodyBytes), middleware.AllowContentType("application/json")).
				Post("/", s.handleAddHistory)
		})
	})
}

// --- Request and response bodies ---

type sourceRequest struct {
	Source   string `json:"source"`
	Segments bool   `json:"segments,omitempty"`
	Cursor   *int   `json:"cursor,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Theme    string `json:"theme,omitempty"`
}

type tokenizeResponse struct {
	Tokens   []token.Token   `json:"tokens"`
	Segments []token.Segment `json:"segments,omitempty"`
}

type suggestResponse struct {
	Context     string               `json:"context"`
	Word        string               `json:"word"`
	Cursor      int                  `json:"cursor"`
	Candidates  []complete.Candidate `json:"candidates"`
	ReplaceFrom int                  `json:"replaceFrom"`
}

type highlightResponse struct {
	HTML string `json:"html"`
	CSS  string `json:"css"`
}

type saveRequest struct {
	Name     string `json:"name"`
	Query    string `json:"query"`
	Favorite bool   `json:"isFavorite"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// --- Helpers ---

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

// decode reads a JSON body. Unknown fields are rejected.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body is empty")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (s *Server) requireStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.store == nil {
			s.writeError(w, http.StatusServiceUnavailable, errors.New("state store is disabled"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- Handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"catalogVersion": s.notifier.Version(),
	})
}

func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.catalogs.Load().Definition())
}

func (s *Server) handleTokenize(w http.ResponseWriter, r *http.Request) {
	var req sourceRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	tokens := lexer.Tokenize(s.catalogs.Load(), req.Source)
	if tokens == nil {
		tokens = []token.Token{}
	}
	resp := tokenizeResponse{Tokens: tokens}
	if req.Segments {
		resp.Segments = token.Segments(req.Source, tokens)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var req sourceRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	cursor := len(req.Source)
	if req.Cursor != nil {
		cursor = *req.Cursor
	}
	limit := s.limit
	if req.Limit > 0 && req.Limit < limit {
		limit = req.Limit
	}

	engine := complete.New(s.catalogs.Load(), complete.WithLimit(limit))
	candidates := engine.Suggest(req.Source, cursor)
	analysis := complete.Analyze(req.Source, cursor)

	s.writeJSON(w, http.StatusOK, suggestResponse{
		Context:     analysis.Context.String(),
		Word:        analysis.Word,
		Cursor:      min(max(cursor, 0), len(req.Source)),
		Candidates:  candidates,
		ReplaceFrom: complete.WordStart(req.Source, cursor),
	})
}

func (s *Server) handleHighlight(w http.ResponseWriter, r *http.Request) {
	var req sourceRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	theme, err := highlight.ThemeByName(req.Theme)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	tokens := lexer.Tokenize(s.catalogs.Load(), req.Source)
	s.writeJSON(w, http.StatusOK, highlightResponse{
		HTML: highlight.HTML(req.Source, tokens),
		CSS:  highlight.CSS(theme),
	})
}

// catalogSignals is the signal patch sent on every catalog reload.
type catalogSignals struct {
	Catalog notifier.Event `json:"catalog"`
}

// handleEvents is the long-lived SSE endpoint. Each catalog reload is
// pushed as a datastar signal patch until the client disconnects or the
// server shuts down.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	updates := s.notifier.Subscribe()
	defer s.notifier.Unsubscribe(updates)

	sse := datastar.NewSSE(w, r)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, open := <-updates:
			if !open {
				return
			}
			if err := sse.MarshalAndPatchSignals(catalogSignals{Catalog: ev}); err != nil {
				s.logger.Debug("event stream closed", "error", err)
				return
			}
		}
	}
}

func (s *Server) handleListSaved(w http.ResponseWriter, r *http.Request) {
	favorites, _ := strconv.ParseBool(r.URL.Query().Get("favorites"))
	queries, err := s.store.ListQueries(r.Context(), favorites)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, queries)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	q, err := s.store.SaveQuery(r.Context(), req.Name, req.Query, req.Favorite)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, state.ErrEmptyName) || errors.Is(err, state.ErrEmptyQuery) {
			status = http.StatusBadRequest
		}
		s.writeError(w, status, err)
		return
	}
	s.writeJSON(w, http.StatusOK, q)
}

func (s *Server) handleGetSaved(w http.ResponseWriter, r *http.Request) {
	q, err := s.store.GetQuery(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, q)
}

func (s *Server) handleDeleteSaved(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteQuery(r.Context(), chi.URLParam(r, "ref")); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
			return
		}
		limit = n
	}
	entries, err := s.store.ListHistory(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleAddHistory(w http.ResponseWriter, r *http.Request) {
	var req sourceRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	entry, err := s.store.AddHistory(r.Context(), req.Source, state.SourceAPI)
	if err != nil {
		if errors.Is(err, state.ErrEmptyQuery) {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, state.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	s.writeError(w, http.StatusInternalServerError, err)
}
