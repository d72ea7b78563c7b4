// Package homepage reads the YAML files of a Homepage dashboard
// (bookmarks.yaml, services.yaml) as link candidates.
package homepage

import (
	"fmt"
	"regexp"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/linkstash/internal/domain"
)

// Kind selects the Homepage file format.
type Kind string

const (
	KindBookmarks Kind = "bookmarks"
	KindServices  Kind = "services"
)

var templateVar = regexp.MustCompile(`\{\{[^}]+\}\}`)

// Loader handles loading and parsing of one Homepage YAML file
type Loader struct {
	fs       afero.Fs
	filePath string
	kind     Kind
}

// NewLoader creates a new Homepage loader
func NewLoader(fs afero.Fs, filePath string, kind Kind) *Loader {
	return &Loader{fs: fs, filePath: filePath, kind: kind}
}

// Path returns the file the loader reads.
func (l *Loader) Path() string { return l.filePath }

// Candidates loads the file and maps its entries to link inputs in file order.
func (l *Loader) Candidates() ([]domain.LinkInput, error) {
	switch l.kind {
	case KindBookmarks:
		config, err := l.LoadBookmarks()
		if err != nil {
			return nil, err
		}
		return MapBookmarks(config)
	case KindServices:
		config, err := l.LoadServices()
		if err != nil {
			return nil, err
		}
		return MapServices(config)
	default:
		return nil, fmt.Errorf("unknown homepage file kind %q", l.kind)
	}
}

// LoadBookmarks reads and parses a bookmarks.yaml file
func (l *Loader) LoadBookmarks() (BookmarksConfig, error) {
	var config BookmarksConfig
	if err := l.decode(&config); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadServices reads and parses a services.yaml file
func (l *Loader) LoadServices() (ServicesConfig, error) {
	var config ServicesConfig
	if err := l.decode(&config); err != nil {
		return nil, err
	}
	return config, nil
}

func (l *Loader) decode(out any) error {
	data, err := afero.ReadFile(l.fs, l.filePath)
	if err != nil {
		return fmt.Errorf("failed to read %s file: %w", l.kind, err)
	}

	// Strip Homepage template variables ({{HOMEPAGE_VAR_...}})
	data = stripTemplateVariables(data)

	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s yaml: %w", l.kind, err)
	}
	return nil
}

// stripTemplateVariables removes Homepage template variables from YAML
// Example: {{HOMEPAGE_VAR_ADGUARD_USER}} -> ""
func stripTemplateVariables(data []byte) []byte {
	return templateVar.ReplaceAll(data, []byte(`""`))
}
