package service

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/dpshade/pocket-madlibs/internal/catalog"
	"github.com/dpshade/pocket-madlibs/internal/config"
	"github.com/dpshade/pocket-madlibs/internal/entry"
	apperrors "github.com/dpshade/pocket-madlibs/internal/errors"
	"github.com/dpshade/pocket-madlibs/internal/models"
	"github.com/dpshade/pocket-madlibs/internal/renderer"
	"github.com/dpshade/pocket-madlibs/internal/storage"
	"github.com/dpshade/pocket-madlibs/internal/validation"
)

// Service ties the template catalog to the answer store for the front-ends
type Service struct {
	catalog *catalog.Catalog
	answers *storage.AnswerStore
	logger  *zap.Logger
	closeFn func() error
}

// New creates a service over an existing catalog and answer store
func New(cat *catalog.Catalog, answers *storage.AnswerStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		catalog: cat,
		answers: answers,
		logger:  logger,
		closeFn: func() error { return nil },
	}
}

// NewFromConfig opens the configured storage backend and template sources
func NewFromConfig(cfg *config.Config, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	kv, closeFn, err := storage.Open(cfg.Backend, cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	opts := []catalog.Option{catalog.WithLogger(logger), catalog.WithTemplatesDir(cfg.TemplatesDir)}
	if cfg.TemplatesFile != "" {
		opts = append(opts, catalog.WithDatasetFile(cfg.TemplatesFile))
	}
	cat, err := catalog.New(opts...)
	if err != nil {
		closeFn()
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	svc := New(cat, storage.NewAnswerStore(kv, logger), logger)
	svc.closeFn = closeFn
	logger.Debug("Service ready",
		zap.String("backend", cfg.Backend),
		zap.String("data_dir", cfg.DataDir),
		zap.Int("templates", cat.Len()))
	return svc, nil
}

// Close releases the storage backend
func (s *Service) Close() error {
	return s.closeFn()
}

// Catalog exposes the template catalog
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// ListTemplates returns every template with its completion status
func (s *Service) ListTemplates() []models.TemplateSummary {
	return s.summarize(s.catalog.List())
}

// SearchTemplates fuzzy-matches templates by name, description and id
func (s *Service) SearchTemplates(query string) []models.TemplateSummary {
	return s.summarize(s.catalog.Search(query))
}

// summarize marks completed templates. One key listing narrows the loads to
// ids that have a record; a record that no longer parses still counts as
// not completed.
func (s *Service) summarize(templates []*models.Template) []models.TemplateSummary {
	saved, listed := s.answers.SavedIDs()
	var candidates map[string]bool
	if listed {
		candidates = make(map[string]bool, len(saved))
		for _, id := range saved {
			candidates[id] = true
		}
	}

	out := make([]models.TemplateSummary, len(templates))
	for i, t := range templates {
		completed := false
		if !listed || candidates[t.ID] {
			completed = s.answers.Exists(t.ID)
		}
		out[i] = models.TemplateSummary{Template: t, Completed: completed}
	}
	return out
}

// GetTemplate returns a template by id
func (s *Service) GetTemplate(id string) (*models.Template, error) {
	return s.catalog.Get(id)
}

// IsCompleted reports whether answers are saved for a template
func (s *Service) IsCompleted(id string) bool {
	return s.answers.Exists(id)
}

// SavedAnswers returns the persisted answers for a template
func (s *Service) SavedAnswers(id string) (models.AnswerSet, error) {
	if _, err := s.catalog.Get(id); err != nil {
		return nil, err
	}
	answers, ok := s.answers.Load(id)
	if !ok {
		return nil, apperrors.NewAppError(apperrors.ErrCodeNoSavedAnswers,
			fmt.Sprintf("no saved answers for %q", id)).WithContext("template_id", id)
	}
	return answers, nil
}

// NewEntry starts an entry session for a template
func (s *Service) NewEntry(id string) (*entry.Controller, error) {
	return entry.New(s.catalog, s.answers, id)
}

// SubmitAnswers fills a template in one step. Unknown slot ids and malformed
// values are rejected;
// an incomplete set is a validation error and nothing is saved.
func (s *Service) SubmitAnswers(id string, answers models.AnswerSet) (*entry.Controller, error) {
	ctrl, err := s.NewEntry(id)
	if err != nil {
		return nil, err
	}

	if result := validation.ValidateAnswers(ctrl.Template(), answers); !result.Valid {
		return ctrl, result.ToAppError()
	}

	for slotID, value := range answers {
		ctrl.SetAnswer(slotID, value)
	}
	if err := ctrl.Submit(); err != nil {
		return ctrl, err
	}

	s.logger.Info("Answers submitted", zap.String("template_id", id))
	return ctrl, nil
}

// Story renders the saved answers for a template
func (s *Service) Story(id string) (*models.Story, error) {
	t, err := s.catalog.Get(id)
	if err != nil {
		return nil, err
	}
	answers, ok := s.answers.Load(id)
	return renderer.Render(t, answers, ok)
}

// Reset clears the saved answers for a template. confirmed must be true;
// an unconfirmed call changes nothing and returns ConfirmationRequired.
func (s *Service) Reset(id string, confirmed bool) error {
	ctrl, err := s.NewEntry(id)
	if err != nil {
		return err
	}
	if confirmed {
		ctrl.RequestReset()
	}
	if err := ctrl.ConfirmReset(); err != nil {
		return err
	}
	s.logger.Info("Answers reset", zap.String("template_id", id))
	return nil
}
