package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidValue is returned when a defaults file holds an out-of-range value.
	ErrInvalidValue = errors.New("invalid config value")
)

// Defaults holds flag defaults read from the user's config file. Pointer
// fields distinguish "not set" from a zero value.
type Defaults struct {
	CaseSensitive   *bool    `yaml:"case_sensitive,omitempty"`
	WholeWord       *bool    `yaml:"whole_word,omitempty"`
	Regex           *bool    `yaml:"regex,omitempty"`
	Fuzzy           *bool    `yaml:"fuzzy,omitempty"`
	FuzzyThreshold  *int     `yaml:"fuzzy_threshold,omitempty"`
	Recursive       *bool    `yaml:"recursive,omitempty"`
	Exclude         []string `yaml:"exclude,omitempty"`
	Workers         *int     `yaml:"workers,omitempty"`
	ContextLines    *int     `yaml:"context_lines,omitempty"`
	Quiet           *bool    `yaml:"quiet,omitempty"`
	FilterNoResults *bool    `yaml:"filter_no_results,omitempty"`
	BaseURL         string   `yaml:"base_url,omitempty"`
	PDFEngine       string   `yaml:"pdf_engine,omitempty"`
	LogLevel        string   `yaml:"log_level,omitempty"`
	LogFormat       string   `yaml:"log_format,omitempty"`

	// path is the file these defaults were loaded from
	path string
}

// Path returns the file the defaults were read from, or "" when none existed.
func (d *Defaults) Path() string {
	return d.path
}

// Validate checks that all configured values are within acceptable bounds.
func (d *Defaults) Validate() error {
	if d.FuzzyThreshold != nil {
		if v := *d.FuzzyThreshold; v < 0 || v > 100 {
			return fmt.Errorf("%w: fuzzy_threshold must be between 0 and 100, got %d", ErrInvalidValue, v)
		}
	}
	if d.Workers != nil && *d.Workers < 0 {
		return fmt.Errorf("%w: workers must be 0 (auto) or positive, got %d", ErrInvalidValue, *d.Workers)
	}
	if d.ContextLines != nil && *d.ContextLines < 0 {
		return fmt.Errorf("%w: context_lines must not be negative, got %d", ErrInvalidValue, *d.ContextLines)
	}
	switch d.PDFEngine {
	case "", "ledongthuc", "pdfcpu":
	default:
		return fmt.Errorf("%w: pdf_engine must be ledongthuc or pdfcpu, got %q", ErrInvalidValue, d.PDFEngine)
	}
	return nil
}

// DefaultPath returns $XDG_CONFIG_HOME/nerd-search/config.yaml (or the
// platform equivalent). Returns "" if no config dir can be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "nerd-search", "config.yaml")
}

// LoadDefaults reads the defaults file at path. A missing file yields empty
// defaults and no error; the file is never written by this program.
func LoadDefaults(path string) (*Defaults, error) {
	d := &Defaults{}
	if path == "" {
		return d, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return d, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, d); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	d.path = path
	return d, nil
}
