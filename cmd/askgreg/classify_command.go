package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"askgreg/internal/catalog"
	"askgreg/internal/config"
	"askgreg/internal/generator"
	"askgreg/internal/intent"
)

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "classify <text...>",
		Short: "Show which category the classifier picks for text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Classification.Mode == config.ClassifyNone {
				return errors.New("classification is disabled; set classification.mode to heuristic or llm")
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			cat, err := catalog.FromConfig(cfg)
			if err != nil {
				return err
			}
			var gen *generator.Generator
			if cfg.Classification.Mode == config.ClassifyLLM {
				gen = generator.FromConfig(cfg, logger)
			}
			classifier, err := intent.New(cfg, cat, gen, logger)
			if err != nil {
				return err
			}
			result, err := classifier.Classify(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, result)
			}
			category := result.Category
			if category == intent.Unclassified {
				category = "(unclassified)"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Category:   %s\n", category)
			fmt.Fprintf(out, "Mode:       %s\n", result.Mode)
			fmt.Fprintf(out, "Confidence: %.2f\n", result.Confidence)
			fmt.Fprintf(out, "Fallback:   %s\n", yesNo(result.Fallback))
			fmt.Fprintf(out, "Reason:     %s\n", result.Reason)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
