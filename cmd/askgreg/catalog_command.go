package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"askgreg/internal/catalog"
	"askgreg/internal/config"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the external prompt catalog",
	}
	cmd.AddCommand(newCatalogAddCommand(ctx))
	return cmd
}

func newCatalogAddCommand(ctx *commandContext) *cobra.Command {
	var (
		categoryID          string
		categoryDescription string
		variantID           string
		description         string
		template            string
		templateFile        string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a prompt style to the external catalog file",
		Long: "Adds a style to catalog.path, creating the file from the built-in catalog\n" +
			"when it does not exist yet. Set catalog.source = \"external\" to serve it.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(templateFile) != "" {
				if template != "" {
					return errors.New("use either --template or --template-file")
				}
				data, err := os.ReadFile(templateFile)
				if err != nil {
					return fmt.Errorf("read template file: %w", err)
				}
				template = string(data)
			}

			current, err := catalog.LoadOrInline(cfg.Catalog.Path)
			if err != nil {
				return err
			}
			updated, err := current.Add(categoryID, categoryDescription, catalog.Variant{
				ID:          strings.TrimSpace(variantID),
				Description: strings.TrimSpace(description),
				Template:    template,
			})
			if err != nil {
				return err
			}
			if err := updated.WriteYAML(cfg.Catalog.Path); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Added style %s to %s in %s\n", strings.TrimSpace(variantID), strings.TrimSpace(categoryID), cfg.Catalog.Path)
			if cfg.Catalog.Source != config.CatalogExternal {
				fmt.Fprintln(out, `Set catalog.source = "external" to use the edited catalog.`)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&categoryID, "category", "", "Category to add the style to (created when missing)")
	cmd.Flags().StringVar(&categoryDescription, "category-description", "", "Description for a new category")
	cmd.Flags().StringVar(&variantID, "id", "", "Style identifier")
	cmd.Flags().StringVar(&description, "description", "", "Short style description")
	cmd.Flags().StringVar(&template, "template", "", "System instruction text")
	cmd.Flags().StringVar(&templateFile, "template-file", "", "Read the system instruction from a file")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
