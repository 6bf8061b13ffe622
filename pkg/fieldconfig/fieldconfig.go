// Package fieldconfig describes how each form section is presented: titles,
// labels, input types and select options. It carries presentation data only;
// validation rules live in package validation.
package fieldconfig

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-docsubmit/pkg/form"
)

//go:embed docsubmission.yaml
var defaultCatalogue []byte

// FieldType selects the input used to collect a value.
type FieldType string

const (
	TypeText   FieldType = "text"
	TypeEmail  FieldType = "email"
	TypeDate   FieldType = "date"
	TypeSelect FieldType = "select"
	TypeFile   FieldType = "file"
)

func (t FieldType) valid() bool {
	switch t {
	case TypeText, TypeEmail, TypeDate, TypeSelect, TypeFile:
		return true
	default:
		return false
	}
}

// Field describes one input.
type Field struct {
	Key                    string    `yaml:"key"`
	Label                  string    `yaml:"label"`
	Type                   FieldType `yaml:"type"`
	Required               bool      `yaml:"required"`
	Options                []string  `yaml:"options"`
	RequiredUnlessMirrored bool      `yaml:"requiredUnlessMirrored"`
}

// Section groups fields under a title. Repeating sections are rendered once
// per document row.
type Section struct {
	Name      form.Section `yaml:"name"`
	Title     string       `yaml:"title"`
	Fields    []Field      `yaml:"fields"`
	Repeating bool         `yaml:"repeating"`
}

// Catalogue is the ordered list of sections.
type Catalogue struct {
	Sections []Section `yaml:"sections"`
}

// Default returns the bundled catalogue.
func Default() (*Catalogue, error) {
	return Load(defaultCatalogue)
}

// MustDefault is Default that panics on error.
func MustDefault() *Catalogue {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// LoadFile reads and parses a catalogue from path.
func LoadFile(path string) (*Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fieldconfig: read %s: %w", path, err)
	}
	return Load(data)
}

// Load parses a YAML catalogue and validates it.
func Load(data []byte) (*Catalogue, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errors.New("fieldconfig: catalogue is empty")
	}
	var c Catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("fieldconfig: parse: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects sections and field keys the form does not know, unknown
// input types and select fields without options.
func (c *Catalogue) Validate() error {
	if c == nil || len(c.Sections) == 0 {
		return errors.New("fieldconfig: catalogue has no sections")
	}
	seen := make(map[form.Section]bool, len(c.Sections))
	for _, section := range c.Sections {
		known := form.SectionFields(section.Name)
		if known == nil {
			return fmt.Errorf("fieldconfig: unknown section %q", section.Name)
		}
		if seen[section.Name] {
			return fmt.Errorf("fieldconfig: duplicate section %q", section.Name)
		}
		seen[section.Name] = true

		for _, field := range section.Fields {
			if !contains(known, field.Key) {
				return fmt.Errorf("fieldconfig: section %q has unknown field %q", section.Name, field.Key)
			}
			if !field.Type.valid() {
				return fmt.Errorf("fieldconfig: field %s.%s has unknown type %q", section.Name, field.Key, field.Type)
			}
			if field.Type == TypeSelect && len(field.Options) == 0 {
				return fmt.Errorf("fieldconfig: select field %s.%s has no options", section.Name, field.Key)
			}
		}
	}
	return nil
}

// Section returns the named section.
func (c *Catalogue) Section(name form.Section) (Section, bool) {
	if c == nil {
		return Section{}, false
	}
	for _, section := range c.Sections {
		if section.Name == name {
			return section, true
		}
	}
	return Section{}, false
}

// Label returns the configured label for section/key, falling back to key.
func (c *Catalogue) Label(name form.Section, key string) string {
	section, ok := c.Section(name)
	if !ok {
		return key
	}
	for _, field := range section.Fields {
		if field.Key == key && field.Label != "" {
			return field.Label
		}
	}
	return key
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
