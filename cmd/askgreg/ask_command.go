package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"askgreg/internal/session"
)

func newAskCommand(ctx *commandContext) *cobra.Command {
	var category, provider string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "ask <question...>",
		Short: "Answer one question with a single prompt style and log it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			category = strings.TrimSpace(category)
			if category == "" && classifierOrNil(rt.classifier) == nil {
				category = rt.cfg.Catalog.DefaultCategory
			}
			result, err := rt.controller.Ask(cmd.Context(), session.Question{
				Input:    strings.Join(args, " "),
				Category: category,
				Provider: provider,
			})
			var persistErr *session.PersistError
			if err != nil && !errors.As(err, &persistErr) {
				return err
			}
			if persistErr != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", persistErr.Error())
			}
			if jsonOutput {
				return writeJSON(cmd, result)
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, paint(fmt.Sprintf("[%s / %s via %s]", result.Category, result.Variant, result.Provider), ansiYellow, colorize))
			fmt.Fprintln(out, strings.TrimSpace(result.Text))
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Prompt category (default: classify, or the default category when classification is off)")
	cmd.Flags().StringVar(&provider, "provider", "", "Provider to ask (default: providers.default)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
