package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"askgreg/internal/catalog"
	"askgreg/internal/config"
	"askgreg/internal/services"
)

func TestInlineCatalogCategories(t *testing.T) {
	c := catalog.Inline()

	ids := c.Categories()
	assert.Contains(t, ids, catalog.DefaultCategory)
	assert.Contains(t, ids, "Math Tutor")
	assert.Contains(t, ids, "returns")
	assert.Len(t, ids, 8)

	general, err := c.Category("General Questions")
	require.NoError(t, err)
	assert.Equal(t, []string{"variant1", "variant2", "variant3", "variant4"}, general.VariantIDs())

	v, ok := general.Variant(catalog.VariantForKids)
	require.True(t, ok)
	assert.Contains(t, v.Template, "for kids")

	productInfo, err := c.Category("product_info")
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, productInfo.VariantIDs())
}

func TestCategoryLookupErrors(t *testing.T) {
	c, err := catalog.New([]catalog.Category{{ID: "empty"}})
	require.NoError(t, err)

	_, err = c.Category("missing")
	assert.ErrorIs(t, err, services.ErrInvalidCategory)

	_, err = c.Category("empty")
	assert.ErrorIs(t, err, services.ErrInvalidCategory)
	assert.True(t, c.Has("empty"))

	_, err = c.Category("  ")
	assert.ErrorIs(t, err, services.ErrInvalidCategory)
}

func TestNewRejectsInvalidDefinitions(t *testing.T) {
	cases := map[string][]catalog.Category{
		"blank category": {{ID: " ", Variants: []catalog.Variant{{ID: "a", Template: "x"}}}},
		"duplicate category": {
			{ID: "a", Variants: []catalog.Variant{{ID: "v", Template: "x"}}},
			{ID: "a", Variants: []catalog.Variant{{ID: "w", Template: "y"}}},
		},
		"duplicate variant": {{ID: "a", Variants: []catalog.Variant{{ID: "v", Template: "x"}, {ID: "v", Template: "y"}}}},
		"empty template":    {{ID: "a", Variants: []catalog.Variant{{ID: "v", Template: "  "}}}},
	}
	for name, categories := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := catalog.New(categories)
			assert.ErrorIs(t, err, services.ErrConfiguration)
		})
	}
}

const sampleYAML = `categories:
  returns:
    description: Returns and refunds
    variants:
      A:
        description: polite
        template: You are a polite support agent.
      C:
        description: terse
        template: You are a concise technical assistant.
  general:
    variants:
      B:
        template: You are a friendly assistant.
`

func TestParseYAML(t *testing.T) {
	c, err := catalog.ParseYAML([]byte(sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, []string{"general", "returns"}, c.Categories())

	returns, err := c.Category("returns")
	require.NoError(t, err)
	assert.Equal(t, "Returns and refunds", returns.Description)
	assert.Equal(t, []string{"A", "C"}, returns.VariantIDs())
}

func TestParseYAMLRejectsMalformedInput(t *testing.T) {
	cases := map[string]string{
		"syntax":         "categories: [",
		"unknown field":  "categories:\n  a:\n    bogus: 1\n",
		"no categories":  "categories: {}\n",
		"no variants":    "categories:\n  a:\n    description: x\n",
		"empty template": "categories:\n  a:\n    variants:\n      v:\n        template: \"\"\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := catalog.ParseYAML([]byte(input))
			assert.ErrorIs(t, err, services.ErrConfiguration)
		})
	}
}

func TestAddAndWriteYAMLRoundTrip(t *testing.T) {
	base, err := catalog.ParseYAML([]byte(sampleYAML))
	require.NoError(t, err)

	next, err := base.Add("returns", "", catalog.Variant{ID: "D", Description: "empathetic", Template: "You are an empathetic agent."})
	require.NoError(t, err)
	next, err = next.Add("shipping", "Delivery questions", catalog.Variant{ID: "A", Template: "You track parcels."})
	require.NoError(t, err)

	original, err := base.Category("returns")
	require.NoError(t, err)
	assert.Len(t, original.Variants, 2, "Add must not mutate the receiver")

	path := filepath.Join(t.TempDir(), "nested", "prompts.yaml")
	require.NoError(t, next.WriteYAML(path))

	loaded, err := catalog.LoadYAML(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"general", "returns", "shipping"}, loaded.Categories())
	returns, err := loaded.Category("returns")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C", "D"}, returns.VariantIDs())
	shipping, err := loaded.Category("shipping")
	require.NoError(t, err)
	assert.Equal(t, "Delivery questions", shipping.Description)
}

func TestAddRejectsDuplicatesAndBlanks(t *testing.T) {
	c := catalog.Inline()

	_, err := c.Add("returns", "", catalog.Variant{ID: "A", Template: "again"})
	assert.ErrorIs(t, err, services.ErrConflict)

	_, err = c.Add("returns", "", catalog.Variant{ID: "Z"})
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = c.Add("", "", catalog.Variant{ID: "Z", Template: "x"})
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	c, err := catalog.FromConfig(&cfg)
	require.NoError(t, err)
	assert.True(t, c.Has("Math Tutor"))

	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))
	cfg.Catalog.Source = config.CatalogExternal
	cfg.Catalog.Path = path
	c, err = catalog.FromConfig(&cfg)
	require.NoError(t, err)
	assert.False(t, c.Has("Math Tutor"))
	assert.True(t, c.Has("returns"))

	cfg.Catalog.Path = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = catalog.FromConfig(&cfg)
	assert.ErrorIs(t, err, services.ErrConfiguration)

	fallback, err := catalog.LoadOrInline(cfg.Catalog.Path)
	require.NoError(t, err)
	assert.True(t, fallback.Has("Math Tutor"))
}
