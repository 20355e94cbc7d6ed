package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	apperrors "github.com/dpshade/pocket-madlibs/internal/errors"
	"github.com/dpshade/pocket-madlibs/internal/models"
	"github.com/dpshade/pocket-madlibs/internal/renderer"
)

// maxBodyBytes bounds PUT bodies
const maxBodyBytes = 64 << 10

// APIResponse is the envelope for successful API responses
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// writeResponse writes a standardized JSON response
func (s *Server) writeResponse(w http.ResponseWriter, data interface{}, message string, statusCode int) {
	response := APIResponse{
		Success:   statusCode < 400,
		Data:      data,
		Message:   message,
		Timestamp: time.Now(),
	}

	jsonData, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		s.writeError(w, apperrors.Wrap(err, apperrors.ErrCodeInternalError, "Failed to encode response"))
		return
	}
	w.WriteHeader(statusCode)
	w.Write(jsonData)
}

// writeError writes an error response using the error handler
func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.errorHandler.WriteHTTPError(w, err)
}

// handleHealth handles GET /api/v1/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeResponse(w, map[string]interface{}{
		"status":    "ok",
		"service":   "pocket-madlibs",
		"templates": s.service.Catalog().Len(),
	}, "", http.StatusOK)
}

// handleListTemplates handles GET /api/v1/templates?q=
func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	var summaries []models.TemplateSummary
	if q := r.URL.Query().Get("q"); q != "" {
		summaries = s.service.SearchTemplates(q)
	} else {
		summaries = s.service.ListTemplates()
	}
	s.writeResponse(w, summaries, "", http.StatusOK)
}

// handleGetTemplate handles GET /api/v1/templates/{id}
func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	t, err := s.service.GetTemplate(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResponse(w, models.TemplateSummary{Template: t, Completed: s.service.IsCompleted(id)}, "", http.StatusOK)
}

// handleGetAnswers handles GET /api/v1/answers/{id}
func (s *Server) handleGetAnswers(w http.ResponseWriter, r *http.Request) {
	answers, err := s.service.SavedAnswers(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResponse(w, answers, "", http.StatusOK)
}

// handlePutAnswers handles PUT /api/v1/answers/{id} with a JSON object of
// slot id to word. Only complete answer sets are saved.
func (s *Server) handlePutAnswers(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "Failed to read request body"))
		return
	}
	var answers models.AnswerSet
	if err := json.Unmarshal(body, &answers); err != nil {
		s.writeError(w, apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "Request body must be a JSON object of answers"))
		return
	}

	ctrl, err := s.service.SubmitAnswers(id, answers)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResponse(w, ctrl.Answers(), "Answers saved", http.StatusOK)
}

// handleDeleteAnswers handles DELETE /api/v1/answers/{id}?confirm=true
func (s *Server) handleDeleteAnswers(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.service.Reset(id, r.URL.Query().Get("confirm") == "true"); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResponse(w, nil, "Answers reset", http.StatusOK)
}

// handleGetStory handles GET /api/v1/stories/{id}?format=
func (s *Server) handleGetStory(w http.ResponseWriter, r *http.Request) {
	story, err := s.service.Story(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" || format == renderer.FormatJSON {
		s.writeResponse(w, story, "", http.StatusOK)
		return
	}

	out, err := renderer.Format(story, format)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResponse(w, map[string]interface{}{
		"templateId": story.TemplateID,
		"format":     format,
		"content":    out,
	}, "", http.StatusOK)
}
