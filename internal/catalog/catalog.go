package catalog

import (
	_ "embed"
	"fmt"
	"sync"
	"time"

	"github.com/sahilm/fuzzy"
	"go.uber.org/zap"

	apperrors "github.com/dpshade/pocket-madlibs/internal/errors"
	"github.com/dpshade/pocket-madlibs/internal/models"
)

//go:embed madlibs.json
var builtinDataset []byte

// BuiltinSource names templates that come from the embedded dataset
const BuiltinSource = "builtin"

// Catalog holds the loaded templates. The collection is replaced as a whole
// on reload, so a reader always sees one consistent set.
type Catalog struct {
	mu        sync.RWMutex
	templates []*models.Template
	byID      map[string]*models.Template

	builtin      bool
	datasetFile  string
	templatesDir string
	debounce     time.Duration
	logger       *zap.Logger
}

// Option configures a Catalog
type Option func(*Catalog)

// WithDatasetFile adds a JSON dataset file as a template source
func WithDatasetFile(path string) Option {
	return func(c *Catalog) { c.datasetFile = path }
}

// WithTemplatesDir adds a directory of frontmatter templates as a source
func WithTemplatesDir(dir string) Option {
	return func(c *Catalog) { c.templatesDir = dir }
}

// WithLogger sets the logger used for load warnings
func WithLogger(logger *zap.Logger) Option {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithoutBuiltin skips the embedded dataset
func WithoutBuiltin() Option {
	return func(c *Catalog) { c.builtin = false }
}

// WithDebounce sets how long Watch waits for file events to settle
func WithDebounce(d time.Duration) Option {
	return func(c *Catalog) { c.debounce = d }
}

// New loads the catalog from its configured sources
func New(opts ...Option) (*Catalog, error) {
	c := &Catalog{
		builtin:  true,
		debounce: 200 * time.Millisecond,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("catalog")

	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// FromTemplates builds a catalog from in-memory templates. Invalid templates
// are an error rather than being skipped.
func FromTemplates(templates ...*models.Template) (*Catalog, error) {
	c := &Catalog{logger: zap.NewNop()}
	for _, t := range templates {
		if err := Validate(t).Err(); err != nil {
			return nil, err
		}
	}
	c.swap(templates)
	return c, nil
}

// Reload re-reads every source and replaces the collection. A broken dataset
// file fails the reload and keeps the current templates; broken files in the
// templates directory are logged and skipped.
func (c *Catalog) Reload() error {
	var loaded []*models.Template

	if c.builtin {
		ts, err := ParseDataset(builtinDataset, BuiltinSource)
		if err != nil {
			return fmt.Errorf("failed to load built-in templates: %w", err)
		}
		loaded = append(loaded, ts...)
	}

	if c.datasetFile != "" {
		ts, err := LoadDatasetFile(c.datasetFile)
		if err != nil {
			return err
		}
		loaded = append(loaded, ts...)
	}

	if c.templatesDir != "" {
		ts, errs := LoadDir(c.templatesDir)
		for _, err := range errs {
			c.logger.Warn("Skipping template file", zap.Error(err))
		}
		loaded = append(loaded, ts...)
	}

	var valid []*models.Template
	for _, t := range loaded {
		report := Validate(t)
		for _, w := range report.Warnings {
			c.logger.Warn("Template warning",
				zap.String("template_id", t.ID),
				zap.String("source", t.Source),
				zap.String("warning", w))
		}
		if !report.OK() {
			c.logger.Error("Rejecting invalid template",
				zap.String("template_id", t.ID),
				zap.String("source", t.Source),
				zap.Strings("errors", report.Errors))
			continue
		}
		valid = append(valid, t)
	}

	c.swap(valid)
	c.logger.Info("Templates loaded", zap.Int("count", c.Len()))
	return nil
}

// swap installs a new collection. A later template with an id already seen
// replaces the earlier one in place, keeping the original position.
func (c *Catalog) swap(templates []*models.Template) {
	ordered := make([]*models.Template, 0, len(templates))
	byID := make(map[string]*models.Template, len(templates))
	position := make(map[string]int, len(templates))

	for _, t := range templates {
		if i, ok := position[t.ID]; ok {
			ordered[i] = t
		} else {
			position[t.ID] = len(ordered)
			ordered = append(ordered, t)
		}
		byID[t.ID] = t
	}

	c.mu.Lock()
	c.templates = ordered
	c.byID = byID
	c.mu.Unlock()
}

// List returns all templates in dataset order
func (c *Catalog) List() []*models.Template {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*models.Template, len(c.templates))
	copy(out, c.templates)
	return out
}

// Len returns the number of loaded templates
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.templates)
}

// Get returns the template with the given id
func (c *Catalog) Get(id string) (*models.Template, error) {
	c.mu.RLock()
	t, ok := c.byID[id]
	c.mu.RUnlock()

	if !ok {
		return nil, apperrors.TemplateNotFoundError(id)
	}
	return t, nil
}

// searchSource adapts a template slice for fuzzy matching
type searchSource []*models.Template

func (s searchSource) String(i int) string {
	return s[i].Name + " " + s[i].Description + " " + s[i].ID
}

func (s searchSource) Len() int {
	return len(s)
}

// Search returns templates fuzzily matching query, best match first. An
// empty query returns every template.
func (c *Catalog) Search(query string) []*models.Template {
	templates := c.List()
	if query == "" {
		return templates
	}

	matches := fuzzy.FindFrom(query, searchSource(templates))
	out := make([]*models.Template, len(matches))
	for i, m := range matches {
		out[i] = templates[m.Index]
	}
	return out
}
