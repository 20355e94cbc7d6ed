package server

import (
	"bytes"
	"html/template"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/dpshade/pocket-madlibs/internal/entry"
	apperrors "github.com/dpshade/pocket-madlibs/internal/errors"
	"github.com/dpshade/pocket-madlibs/internal/models"
	"github.com/dpshade/pocket-madlibs/internal/validation"
)

// page is the data passed to every HTML template
type page struct {
	Title string

	// index
	Templates []models.TemplateSummary

	// form, reset
	Template  *models.Template
	Fields    []field
	Missing   []models.WordSlot
	Errors    []string
	MaxLength int

	// story
	Story      *models.Story
	Paragraphs []template.HTML

	// notfound
	ID string
}

// field is one input on the entry form
type field struct {
	Slot    models.WordSlot
	Value   string
	Missing bool
}

// render executes a page into a buffer first so a template error never
// leaves a half-written response
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data page) {
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("Failed to render page",
			zap.String("page", name),
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// pageError maps a service error to the matching page
func (s *Server) pageError(w http.ResponseWriter, r *http.Request, id string, err error) {
	if apperrors.IsCode(err, apperrors.ErrCodeTemplateNotFound) {
		s.render(w, r, http.StatusNotFound, "notfound", page{Title: "Not found", ID: id})
		return
	}
	s.logger.Error("Request failed",
		zap.String("template_id", id),
		zap.String("request_id", RequestID(r.Context())),
		zap.Error(err))
	http.Error(w, "Internal server error", apperrors.StatusCode(err))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "index", page{Templates: s.service.ListTemplates()})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, "notfound", page{Title: "Not found"})
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ctrl, err := s.service.NewEntry(id)
	if err != nil {
		s.pageError(w, r, id, err)
		return
	}

	s.renderForm(w, r, http.StatusOK, ctrl, nil, nil)
}

// renderForm shows the entry form with the controller's current answers,
// flagging missing blanks and listing input errors
func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, status int, ctrl *entry.Controller, missing []models.WordSlot, errs []string) {
	t := ctrl.Template()
	blank := make(map[string]bool, len(missing))
	for _, m := range missing {
		blank[m.ID] = true
	}
	fields := make([]field, len(t.Words))
	for i, slot := range t.Words {
		fields[i] = field{Slot: slot, Value: ctrl.Answer(slot.ID), Missing: blank[slot.ID]}
	}
	s.render(w, r, status, "form", page{
		Title:     t.Name,
		Template:  t,
		Fields:    fields,
		Missing:   missing,
		Errors:    errs,
		MaxLength: validation.MaxAnswerLength,
	})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ctrl, err := s.service.NewEntry(id)
	if err != nil {
		s.pageError(w, r, id, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	t := ctrl.Template()
	submitted := make(models.AnswerSet, len(t.Words))
	for _, slot := range t.Words {
		submitted[slot.ID] = r.PostForm.Get(slot.ID)
		ctrl.SetAnswer(slot.ID, submitted[slot.ID])
	}

	if result := validation.ValidateAnswers(t, submitted); !result.Valid {
		s.renderForm(w, r, http.StatusUnprocessableEntity, ctrl, nil, result.Messages())
		return
	}

	if err := ctrl.Submit(); err != nil {
		if !apperrors.IsCode(err, apperrors.ErrCodeValidation) {
			s.pageError(w, r, id, err)
			return
		}
		s.renderForm(w, r, http.StatusUnprocessableEntity, ctrl, ctrl.Missing(), nil)
		return
	}

	http.Redirect(w, r, "/"+url.PathEscape(t.ID)+"/view", http.StatusSeeOther)
}

func (s *Server) handleResetConfirm(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	t, err := s.service.GetTemplate(id)
	if err != nil {
		s.pageError(w, r, id, err)
		return
	}
	s.render(w, r, http.StatusOK, "reset", page{Title: t.Name, Template: t})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := s.service.Reset(id, r.PostFormValue("confirm") == "yes")
	switch {
	case err == nil:
		http.Redirect(w, r, "/"+url.PathEscape(id), http.StatusSeeOther)
	case apperrors.IsCode(err, apperrors.ErrCodeConfirmation):
		http.Redirect(w, r, "/"+url.PathEscape(id)+"/reset", http.StatusSeeOther)
	default:
		s.pageError(w, r, id, err)
	}
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	story, err := s.service.Story(id)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrCodeIncompleteAnswers) {
			http.Redirect(w, r, "/"+url.PathEscape(id), http.StatusSeeOther)
			return
		}
		s.pageError(w, r, id, err)
		return
	}
	s.render(w, r, http.StatusOK, "story", page{Title: story.Title, Story: story, Paragraphs: story.HTML()})
}
