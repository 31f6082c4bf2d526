package server

import (
	"net/http"

	"github.com/jonathan/career-admin/internal/aicontext"
	"github.com/jonathan/career-admin/internal/llm"
)

// chatRequest is the body of POST /assistant/chat
type chatRequest struct {
	Messages []llm.Message      `json:"messages" validate:"required,min=1,dive"`
	Context  *aicontext.Context `json:"context" validate:"-"`
	Options  llm.Options        `json:"options"`
}

// handleBuildContext assembles the AI context for the record being edited
func (s *Server) handleBuildContext(w http.ResponseWriter, r *http.Request) {
	var req aicontext.Request
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, s.assembler.Build(r.Context(), req))
}

// handleChat sends one conversation turn. The reply is returned as JSON, or
// streamed as SSE delta events followed by a message event when options.stream is set.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if req.Options.Stream {
		s.streamChat(w, r, &req)
		return
	}

	resp, err := s.assistant.SendMessage(r.Context(), req.Messages, req.Context, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) streamChat(w http.ResponseWriter, r *http.Request, req *chatRequest) {
	if _, ok := w.(http.Flusher); !ok {
		s.errorResponse(w, http.StatusInternalServerError, kindUnsupported, "Streaming is not supported by this connection.")
		return
	}

	// Headers go out with the first event so validation failures can still use a plain status
	var sse *SSEWriter
	open := func() error {
		if sse != nil {
			return nil
		}
		var err error
		sse, err = NewSSEWriter(w)
		return err
	}

	resp, err := s.assistant.StreamMessage(r.Context(), req.Messages, req.Context, req.Options, func(delta string) error {
		if err := open(); err != nil {
			return err
		}
		return sse.WriteDelta(delta)
	})
	if err != nil {
		if sse == nil {
			s.writeError(w, r, err)
			return
		}
		e := classify(err)
		s.logger.Warn("chat stream failed", "kind", e.Kind, "error", err)
		sse.WriteError(e)
		return
	}

	if err := open(); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := sse.WriteEvent(eventMessage, resp); err != nil {
		s.logger.Warn("failed to write final chat event", "error", err)
	}
}
