package catalog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dpshade/pocket-madlibs/internal/models"
)

// dataset is the JSON shape of a template collection
type dataset struct {
	Templates []*models.Template `json:"templates"`
}

// ParseDataset decodes a {"templates": [...]} JSON document
func ParseDataset(data []byte, source string) ([]*models.Template, error) {
	var ds dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse dataset %s: %w", source, err)
	}
	for _, t := range ds.Templates {
		if t == nil {
			return nil, fmt.Errorf("dataset %s contains a null template", source)
		}
		t.Source = source
	}
	return ds.Templates, nil
}

// LoadDatasetFile reads a JSON dataset from disk
func LoadDatasetFile(path string) ([]*models.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	return ParseDataset(data, path)
}

// LoadDir reads every *.md template directly in dir, sorted by name.
// Subdirectories are not descended into, matching what Watch observes.
// Files that fail to parse are returned as errors alongside the templates
// that loaded. A missing directory yields no templates and no errors.
func LoadDir(dir string) ([]*models.Template, []error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, []error{fmt.Errorf("failed to read %s: %w", dir, err)}
	}

	var paths []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	var templates []*models.Template
	var errs []error
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to read template %s: %w", path, err))
			continue
		}
		t, err := ParseTemplateFile(content)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to parse template %s: %w", path, err))
			continue
		}
		t.Source = path
		templates = append(templates, t)
	}
	return templates, errs
}

// ParseTemplateFile parses a markdown file with YAML frontmatter. The
// frontmatter carries id, name, description and words; everything after the
// closing delimiter is the story body.
func ParseTemplateFile(content []byte) (*models.Template, error) {
	scanner := bufio.NewScanner(bytes.NewReader(content))

	if !scanner.Scan() || strings.TrimSpace(scanner.Text()) != "---" {
		return nil, fmt.Errorf("missing frontmatter delimiter")
	}

	var frontmatterLines []string
	closed := false
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "---" {
			closed = true
			break
		}
		frontmatterLines = append(frontmatterLines, line)
	}
	if !closed {
		return nil, fmt.Errorf("unterminated frontmatter")
	}

	var t models.Template
	if err := yaml.Unmarshal([]byte(strings.Join(frontmatterLines, "\n")), &t); err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
	}

	var bodyLines []string
	for scanner.Scan() {
		bodyLines = append(bodyLines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	// Blank lines around the body are layout, not story text
	t.Body = strings.Trim(strings.Join(bodyLines, "\n"), "\n")

	return &t, nil
}

// SerializeTemplateFile renders a template in the frontmatter format read by
// ParseTemplateFile
func SerializeTemplateFile(t *models.Template) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("---\n")
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(t); err != nil {
		return nil, fmt.Errorf("failed to encode frontmatter: %w", err)
	}
	buf.WriteString("---\n\n")

	buf.WriteString(t.Body)
	if !strings.HasSuffix(t.Body, "\n") {
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}
