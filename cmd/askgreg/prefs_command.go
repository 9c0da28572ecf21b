package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"askgreg/internal/preference"
	"askgreg/internal/preference/sink"
)

func newPrefsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Inspect recorded preferences",
	}
	cmd.AddCommand(newPrefsListCommand(ctx))
	cmd.AddCommand(newPrefsStatsCommand(ctx))
	return cmd
}

func newPrefsListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the most recent preference records",
		RunE: func(cmd *cobra.Command, args []string) error {
			querier, closeFn, err := ctx.openQuerier(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			entries, err := querier.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				if entries == nil {
					entries = []preference.Entry{}
				}
				return writeJSON(cmd, entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No preferences recorded.")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					e.RecordedAt.Local().Format(time.DateTime),
					e.Category,
					e.ChosenVariant,
					e.Provider,
					truncate(e.Question, 40),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Recorded", "Category", "Style", "Provider", "Question"}, rows, nil))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum records to show (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newPrefsStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show how often each style was chosen per category",
		RunE: func(cmd *cobra.Command, args []string) error {
			querier, closeFn, err := ctx.openQuerier(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			stats, err := querier.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				if stats == nil {
					stats = []sink.Stat{}
				}
				return writeJSON(cmd, stats)
			}
			if len(stats) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No preferences recorded.")
				return nil
			}
			rows := make([][]string, 0, len(stats))
			for _, s := range stats {
				rows = append(rows, []string{s.Category, s.Variant, strconv.Itoa(s.Picks)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Category", "Style", "Picks"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
