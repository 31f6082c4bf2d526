package server

import (
	"net/http"

	"github.com/jonathan/career-admin/internal/assistant"
	"github.com/jonathan/career-admin/internal/types"
)

// handleGenerateDraft writes a resume, cover letter or answer tailored to a job
func (s *Server) handleGenerateDraft(w http.ResponseWriter, r *http.Request) {
	kind, err := pathKind(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.DraftRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	draft, err := s.agent.GenerateDraft(r.Context(), kind, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logDraft(r, "draft generated", draft)
	s.jsonResponse(w, http.StatusOK, draft)
}

// handleReviseDraft rewrites a prior draft according to feedback
func (s *Server) handleReviseDraft(w http.ResponseWriter, r *http.Request) {
	kind, err := pathKind(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.ReviseRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	draft, err := s.agent.ReviseDraft(r.Context(), kind, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logDraft(r, "draft revised", draft)
	s.jsonResponse(w, http.StatusOK, draft)
}

func (s *Server) logDraft(r *http.Request, msg string, d *assistant.Draft) {
	attrs := []any{"kind", d.Kind, "chars", len(d.Content), "posting_fetched", d.JobDescriptionFetched}
	if d.Usage != nil {
		attrs = append(attrs, "input_tokens", d.Usage.InputTokens, "output_tokens", d.Usage.OutputTokens)
	}
	s.requestLogger(r).Info(msg, attrs...)
}

func pathKind(r *http.Request) (types.DraftKind, error) {
	kind, err := types.ParseDraftKind(r.PathValue("kind"))
	if err != nil {
		return "", &ErrValidation{Field: "kind", Message: err.Error()}
	}
	return kind, nil
}
