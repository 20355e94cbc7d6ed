package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dpshade/pocket-madlibs/internal/models"
)

// Lint validates every template found at path without loading it into a
// catalog. path may be a JSON dataset, a single .md template or a directory
// of .md templates. Files that cannot be parsed are reported as errors.
func Lint(path string) ([]Report, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot lint %s: %w", path, err)
	}

	if info.IsDir() {
		templates, errs := LoadDir(path)
		reports := make([]Report, 0, len(errs))
		for _, err := range errs {
			reports = append(reports, Report{Source: path, Errors: []string{err.Error()}})
		}
		return append(reports, lintTemplates(templates)...), nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		templates, err := LoadDatasetFile(path)
		if err != nil {
			return []Report{{Source: path, Errors: []string{err.Error()}}}, nil
		}
		return lintTemplates(templates), nil
	case ".md":
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read template: %w", err)
		}
		t, err := ParseTemplateFile(content)
		if err != nil {
			return []Report{{Source: path, Errors: []string{err.Error()}}}, nil
		}
		t.Source = path
		return lintTemplates([]*models.Template{t}), nil
	default:
		return nil, fmt.Errorf("cannot lint %s: expected a .json dataset, a .md template or a directory", path)
	}
}

// LintBuiltin validates the embedded dataset
func LintBuiltin() []Report {
	templates, err := ParseDataset(builtinDataset, BuiltinSource)
	if err != nil {
		return []Report{{Source: BuiltinSource, Errors: []string{err.Error()}}}
	}
	return lintTemplates(templates)
}

// lintTemplates validates each template and flags ids repeated within one
// source
func lintTemplates(templates []*models.Template) []Report {
	seen := make(map[string]string, len(templates))
	reports := make([]Report, len(templates))
	for i, t := range templates {
		reports[i] = Validate(t)
		if t.ID == "" {
			continue
		}
		if first, dup := seen[t.ID]; dup {
			reports[i].Errors = append(reports[i].Errors,
				fmt.Sprintf("template id %q is already used by %s", t.ID, first))
			continue
		}
		seen[t.ID] = t.Source
	}
	return reports
}

// Summarize counts errors and warnings across reports
func Summarize(reports []Report) (errs, warnings int) {
	for _, r := range reports {
		errs += len(r.Errors)
		warnings += len(r.Warnings)
	}
	return errs, warnings
}
