// Package catalog holds the prompt variants askgreg can present for each
// category.
//
// A Catalog is immutable once built. It is assembled either from the
// built-in inline definitions or from an external YAML file, and exposes
// lookups that fail with services.ErrInvalidCategory when a category is
// missing or has no variants.
package catalog
