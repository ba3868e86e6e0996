package server

import (
	"net/http"

	"github.com/jonathan/jobfit/internal/pipeline"
	"github.com/jonathan/jobfit/internal/server/middleware"
	"github.com/jonathan/jobfit/internal/types"
)

// QuotaExceededResponse is returned with 402 when the gate denies a generation
type QuotaExceededResponse struct {
	Error        string              `json:"error"`
	GenerationID string              `json:"generationId"`
	Usage        types.UsageDecision `json:"usage"`
}

// AddSkillResponse is returned by POST /skills
type AddSkillResponse struct {
	Category      string           `json:"category"`
	Skill         types.SkillEntry `json:"skill"`
	AlreadyExists bool             `json:"alreadyExists"`
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.accountID(w, r)
	if !ok {
		return
	}

	var req types.GenerateRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.failure(w, r, err)
		return
	}

	result, err := s.generator.Generate(r.Context(), accountID, req)
	s.writeResult(w, r, result, err)
}

func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.accountID(w, r)
	if !ok {
		return
	}

	var req types.RegenerateRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.failure(w, r, err)
		return
	}

	result, err := s.generator.Regenerate(r.Context(), accountID, req)
	s.writeResult(w, r, result, err)
}

func (s *Server) writeResult(w http.ResponseWriter, r *http.Request, result *pipeline.Result, err error) {
	if err != nil {
		s.failure(w, r, err)
		return
	}
	if result.QuotaExceeded {
		s.jsonResponse(w, http.StatusPaymentRequired, QuotaExceededResponse{
			Error:        "quota_exceeded",
			GenerationID: result.GenerationID,
			Usage:        result.Usage,
		})
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleGenerateStream runs a generation and streams progress as SSE. The
// final event is one of complete, quota_exceeded or error.
func (s *Server) handleGenerateStream(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.accountID(w, r)
	if !ok {
		return
	}

	var req types.GenerateRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.failure(w, r, err)
		return
	}
	// reject bad input before the stream starts so it gets a real status
	if err := req.Validate(); err != nil {
		s.failure(w, r, &ErrValidation{Field: "request", Message: err.Error()})
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	gen := s.generator.WithProgress(func(event pipeline.ProgressEvent) {
		if err := sse.WriteEvent("progress", event); err != nil {
			s.logger.WithError(err).Warn("writing SSE event")
		}
	})

	result, err := gen.Generate(r.Context(), accountID, req)
	switch {
	case err != nil:
		status := HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			s.logger.WithError(err).Error("streamed generation failed")
		}
		sse.WriteError(status, publicMessage(err, status))
	case result.QuotaExceeded:
		sse.WriteEvent("quota_exceeded", QuotaExceededResponse{ //nolint:errcheck
			Error:        "quota_exceeded",
			GenerationID: result.GenerationID,
			Usage:        result.Usage,
		})
	default:
		sse.WriteEvent("complete", result) //nolint:errcheck
	}
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.accountID(w, r)
	if !ok {
		return
	}

	decision, err := s.usage.GetStatus(r.Context(), accountID)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, decision)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.accountID(w, r)
	if !ok {
		return
	}

	p, err := s.profiles.Load(r.Context(), accountID)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, p)
}

func (s *Server) handleAddSkill(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.accountID(w, r)
	if !ok {
		return
	}

	var req types.AddSkillRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.failure(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.failure(w, r, &ErrValidation{Field: "skill", Message: err.Error()})
		return
	}

	result, err := s.profiles.AddSkill(r.Context(), accountID, req.Skill)
	if err != nil {
		s.failure(w, r, err)
		return
	}

	status := http.StatusCreated
	if result.AlreadyExists {
		status = http.StatusOK
	}
	s.jsonResponse(w, status, AddSkillResponse(*result))
}

// accountID reads the authenticated account, writing 401 when absent.
func (s *Server) accountID(w http.ResponseWriter, r *http.Request) (string, bool) {
	accountID, err := middleware.GetAccountID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}
	return accountID, true
}
