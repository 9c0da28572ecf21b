package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"askgreg/internal/config"
	"askgreg/internal/services"
)

type fileVariant struct {
	Description string `yaml:"description"`
	Template    string `yaml:"template"`
}

type fileCategory struct {
	Description string                 `yaml:"description,omitempty"`
	Variants    map[string]fileVariant `yaml:"variants"`
}

type fileDocument struct {
	Categories map[string]fileCategory `yaml:"categories"`
}

// LoadYAML reads an external catalog file. Any read, parse or content problem
// is reported as services.ErrConfiguration.
func LoadYAML(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "catalog", "load", fmt.Sprintf("read %s", path), err)
	}
	return ParseYAML(data)
}

// ParseYAML decodes catalog YAML of the form
//
//	categories:
//	  <id>:
//	    description: ...
//	    variants:
//	      <id>: {description: ..., template: ...}
func ParseYAML(data []byte) (*Catalog, error) {
	var doc fileDocument
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "catalog", "parse", "decode yaml", err)
	}
	if len(doc.Categories) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "catalog", "parse", "no categories defined", nil)
	}
	categories := make([]Category, 0, len(doc.Categories))
	for id, fc := range doc.Categories {
		if len(fc.Variants) == 0 {
			return nil, services.Wrap(services.ErrConfiguration, "catalog", "parse", fmt.Sprintf("category %q has no variants", id), nil)
		}
		cat := Category{ID: id, Description: fc.Description}
		for vid, fv := range fc.Variants {
			cat.Variants = append(cat.Variants, Variant{ID: vid, Description: fv.Description, Template: fv.Template})
		}
		categories = append(categories, cat)
	}
	return New(categories)
}

// WriteYAML persists the catalog in the format ParseYAML reads. The file is
// written to a sibling temp file first and renamed into place.
func (c *Catalog) WriteYAML(path string) error {
	doc := fileDocument{Categories: make(map[string]fileCategory)}
	for _, cat := range c.Describe() {
		fc := fileCategory{Description: cat.Description, Variants: make(map[string]fileVariant, len(cat.Variants))}
		for _, v := range cat.Variants {
			fc.Variants[v.ID] = fileVariant{Description: v.Description, Template: v.Template}
		}
		doc.Categories[cat.ID] = fc
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create catalog directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace catalog: %w", err)
	}
	return nil
}

// FromConfig builds the catalog selected by cfg.Catalog.Source.
func FromConfig(cfg *config.Config) (*Catalog, error) {
	if cfg == nil || cfg.Catalog.Source != config.CatalogExternal {
		return Inline(), nil
	}
	return LoadYAML(cfg.Catalog.Path)
}

// LoadOrInline reads path when it exists and falls back to the inline
// catalog otherwise. Used by editing commands that may create the file.
func LoadOrInline(path string) (*Catalog, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Inline(), nil
		}
		return nil, services.Wrap(services.ErrConfiguration, "catalog", "load", fmt.Sprintf("stat %s", path), err)
	}
	return LoadYAML(path)
}
