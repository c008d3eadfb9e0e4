// Package catalog holds the canonical category vocabulary shared by the
// income and expense forms, the filters and the store.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category is one business-unit tag and its display label.
type Category struct {
	Tag   string `yaml:"tag"`
	Label string `yaml:"label"`
}

// Catalog is an ordered, de-duplicated set of categories.
type Catalog struct {
	categories []Category
	index      map[string]int
}

type file struct {
	Categories []Category `yaml:"categories"`
}

var ErrEmptyCatalog = errors.New("catalog has no categories")

// Default returns the built-in vocabulary.
func Default() *Catalog {
	c, _ := New([]Category{
		{Tag: "media", Label: "CKK TV"},
		{Tag: "restaurant", Label: "Restaurant"},
		{Tag: "farm", Label: "Farm"},
		{Tag: "salon", Label: "Salon"},
		{Tag: "laundry", Label: "Laundry"},
		{Tag: "legal-bag", Label: "Legal Bag"},
		{Tag: "philanthropy", Label: "Philanthropy"},
		{Tag: "other", Label: "Other"},
	})
	return c
}

// New builds a catalog, dropping blank and repeated tags while keeping the
// input order. A missing label defaults to the capitalized tag.
func New(categories []Category) (*Catalog, error) {
	c := &Catalog{index: make(map[string]int, len(categories))}
	for _, cat := range categories {
		tag := strings.TrimSpace(cat.Tag)
		if tag == "" {
			continue
		}
		if _, ok := c.index[tag]; ok {
			continue
		}
		label := strings.TrimSpace(cat.Label)
		if label == "" {
			label = strings.ToUpper(tag[:1]) + tag[1:]
		}
		c.index[tag] = len(c.categories)
		c.categories = append(c.categories, Category{Tag: tag, Label: label})
	}
	if len(c.categories) == 0 {
		return nil, ErrEmptyCatalog
	}
	return c, nil
}

// Parse reads a YAML document of the form
//
//	categories:
//	  - tag: media
//	    label: CKK TV
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return New(f.Categories)
}

// Load reads a catalog file. An empty path yields the default catalog.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Contains reports whether tag is part of the vocabulary. Tags are matched
// exactly. A nil catalog contains nothing.
func (c *Catalog) Contains(tag string) bool {
	if c == nil {
		return false
	}
	_, ok := c.index[tag]
	return ok
}

func (c *Catalog) Tags() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.categories))
	for i, cat := range c.categories {
		out[i] = cat.Tag
	}
	return out
}

func (c *Catalog) Categories() []Category {
	if c == nil {
		return nil
	}
	return append([]Category(nil), c.categories...)
}

// Label returns the display label for tag, or the tag itself when unknown.
func (c *Catalog) Label(tag string) string {
	if c != nil {
		if i, ok := c.index[tag]; ok {
			return c.categories[i].Label
		}
	}
	return tag
}

// Marshal renders the catalog back to YAML.
func (c *Catalog) Marshal() ([]byte, error) {
	return yaml.Marshal(file{Categories: c.Categories()})
}
