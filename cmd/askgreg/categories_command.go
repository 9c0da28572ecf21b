package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"askgreg/internal/catalog"
)

func newCategoriesCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput, templates bool

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List prompt categories and their styles",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cat, err := catalog.FromConfig(cfg)
			if err != nil {
				return err
			}
			categories := cat.Describe()
			if jsonOutput {
				return writeJSON(cmd, categories)
			}

			headers := []string{"Category", "Style", "Description"}
			if templates {
				headers = append(headers, "Template")
			}
			var rows [][]string
			for _, c := range categories {
				for i, v := range c.Variants {
					name := ""
					if i == 0 {
						name = displayName(c.ID)
					}
					row := []string{name, v.ID, v.Description}
					if templates {
						row = append(row, truncate(v.Template, 60))
					}
					rows = append(rows, row)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, nil))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&templates, "templates", false, "Include the start of each template")
	return cmd
}

func truncate(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
