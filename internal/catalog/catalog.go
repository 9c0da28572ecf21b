package catalog

import (
	"fmt"
	"slices"
	"strings"

	"askgreg/internal/services"
)

// Variant is one named system instruction within a category.
type Variant struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Template    string `json:"template"`
}

// Category groups the variants addressing one topic area.
type Category struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Variants    []Variant `json:"variants"`
}

// Variant returns the variant with the given id.
func (c Category) Variant(id string) (Variant, bool) {
	for _, v := range c.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

// VariantIDs lists the category's variant ids in sorted order.
func (c Category) VariantIDs() []string {
	ids := make([]string, 0, len(c.Variants))
	for _, v := range c.Variants {
		ids = append(ids, v.ID)
	}
	slices.Sort(ids)
	return ids
}

// Catalog maps category ids to their variants.
type Catalog struct {
	categories map[string]Category
}

// New builds a catalog from the supplied categories, rejecting blank or
// duplicate identifiers and empty templates.
func New(categories []Category) (*Catalog, error) {
	c := &Catalog{categories: make(map[string]Category, len(categories))}
	for _, cat := range categories {
		if err := c.put(cat); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) put(cat Category) error {
	id := strings.TrimSpace(cat.ID)
	if id == "" {
		return services.Wrap(services.ErrConfiguration, "catalog", "build", "category id is empty", nil)
	}
	if _, exists := c.categories[id]; exists {
		return services.Wrap(services.ErrConfiguration, "catalog", "build", fmt.Sprintf("duplicate category %q", id), nil)
	}
	seen := make(map[string]struct{}, len(cat.Variants))
	variants := make([]Variant, 0, len(cat.Variants))
	for _, v := range cat.Variants {
		v.ID = strings.TrimSpace(v.ID)
		if v.ID == "" {
			return services.Wrap(services.ErrConfiguration, "catalog", "build", fmt.Sprintf("category %q has a variant without id", id), nil)
		}
		if _, dup := seen[v.ID]; dup {
			return services.Wrap(services.ErrConfiguration, "catalog", "build", fmt.Sprintf("category %q: duplicate variant %q", id, v.ID), nil)
		}
		if strings.TrimSpace(v.Template) == "" {
			return services.Wrap(services.ErrConfiguration, "catalog", "build", fmt.Sprintf("category %q: variant %q has empty template", id, v.ID), nil)
		}
		seen[v.ID] = struct{}{}
		variants = append(variants, v)
	}
	slices.SortFunc(variants, func(a, b Variant) int { return strings.Compare(a.ID, b.ID) })
	cat.ID = id
	cat.Variants = variants
	c.categories[id] = cat
	return nil
}

// Category returns the named category. Absent categories and categories
// with zero variants are reported as services.ErrInvalidCategory.
func (c *Catalog) Category(id string) (Category, error) {
	key := strings.TrimSpace(id)
	if c == nil || key == "" {
		return Category{}, services.Wrap(services.ErrInvalidCategory, "catalog", "lookup", "category is empty", nil)
	}
	cat, ok := c.categories[key]
	if !ok {
		return Category{}, services.Wrap(services.ErrInvalidCategory, "catalog", "lookup", fmt.Sprintf("unknown category %q", key), nil)
	}
	if len(cat.Variants) == 0 {
		return Category{}, services.Wrap(services.ErrInvalidCategory, "catalog", "lookup", fmt.Sprintf("category %q has no variants", key), nil)
	}
	return cat, nil
}

// Has reports whether the catalog knows the category, regardless of variants.
func (c *Catalog) Has(id string) bool {
	if c == nil {
		return false
	}
	_, ok := c.categories[strings.TrimSpace(id)]
	return ok
}

// Categories returns the sorted category ids.
func (c *Catalog) Categories() []string {
	if c == nil {
		return nil
	}
	ids := make([]string, 0, len(c.categories))
	for id := range c.categories {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Describe returns every category in id order, for listings.
func (c *Catalog) Describe() []Category {
	ids := c.Categories()
	out := make([]Category, 0, len(ids))
	for _, id := range ids {
		cat := c.categories[id]
		cat.Variants = slices.Clone(cat.Variants)
		out = append(out, cat)
	}
	return out
}

// Add returns a new catalog with the variant added to the category, creating
// the category when it does not exist yet. The receiver is left untouched.
func (c *Catalog) Add(categoryID, description string, variant Variant) (*Catalog, error) {
	key := strings.TrimSpace(categoryID)
	variant.ID = strings.TrimSpace(variant.ID)
	switch {
	case key == "":
		return nil, services.Wrap(services.ErrValidation, "catalog", "add", "category id is required", nil)
	case variant.ID == "":
		return nil, services.Wrap(services.ErrValidation, "catalog", "add", "variant id is required", nil)
	case strings.TrimSpace(variant.Template) == "":
		return nil, services.Wrap(services.ErrValidation, "catalog", "add", "template is required", nil)
	}
	categories := c.Describe()
	found := false
	for i := range categories {
		if categories[i].ID != key {
			continue
		}
		if _, exists := categories[i].Variant(variant.ID); exists {
			return nil, services.Wrap(services.ErrConflict, "catalog", "add", fmt.Sprintf("variant %q already exists in %q", variant.ID, key), nil)
		}
		categories[i].Variants = append(categories[i].Variants, variant)
		found = true
		break
	}
	if !found {
		categories = append(categories, Category{ID: key, Description: description, Variants: []Variant{variant}})
	}
	return New(categories)
}
