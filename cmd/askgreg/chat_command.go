package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"askgreg/internal/session"
)

func newChatCommand(ctx *commandContext) *cobra.Command {
	var category, provider string
	var showVariants bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Ask questions and pick the better of two replies",
		Long: "Each question is answered twice under two prompt styles. Pick the reply you prefer;\n" +
			"the styles you pick most are offered first from then on.\n\n" +
			"Commands: /category <name|auto>, /categories, /stats, /clear, /reset, /quit",
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
			if category != "" {
				cat, err := rt.catalog.Category(category)
				if err != nil {
					return err
				}
				category = cat.ID
			}
			loop := &chatLoop{
				rt:           rt,
				id:           rt.controller.Open(),
				category:     category,
				provider:     strings.TrimSpace(provider),
				in:           bufio.NewScanner(cmd.InOrStdin()),
				out:          cmd.OutOrStdout(),
				colorize:     shouldColorize(cmd.OutOrStdout()),
				showVariants: showVariants,
			}
			return loop.run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Prompt category (default: classify, or the default category when classification is off)")
	cmd.Flags().StringVar(&provider, "provider", "", "Provider to ask (default: providers.default)")
	cmd.Flags().BoolVar(&showVariants, "show-variants", false, "Label replies with their prompt style")
	return cmd
}

type chatLoop struct {
	rt           *runtime
	id           string
	category     string
	provider     string
	in           *bufio.Scanner
	out          io.Writer
	colorize     bool
	showVariants bool
}

func (l *chatLoop) run(ctx context.Context) error {
	fmt.Fprintf(l.out, "Ask Greg (%s). Type /quit to leave.\n", l.categoryLabel())
	for {
		line, ok := l.prompt("> ")
		if !ok {
			return l.in.Err()
		}
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if l.command(line) {
				return nil
			}
			continue
		}

		pending, err := l.rt.controller.Submit(ctx, l.id, session.Question{Input: line, Category: l.category, Provider: l.provider})
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			l.fail(err)
			continue
		}
		fmt.Fprintln(l.out, renderPending(pending, l.showVariants, l.colorize))
		if l.awaitChoice(ctx) {
			return nil
		}
	}
}

// awaitChoice reads until a side is picked, the selection is reset, or input
// ends. It reports whether the loop should stop.
func (l *chatLoop) awaitChoice(ctx context.Context) bool {
	for {
		line, ok := l.prompt("Choose 1 or 2 (/reset to discard): ")
		if !ok {
			return true
		}
		switch strings.ToLower(line) {
		case "/quit", "/exit":
			return true
		case "/reset":
			l.reset()
			return false
		}
		side, err := session.ParseSide(line)
		if err != nil {
			fmt.Fprintln(l.out, "Please answer 1 or 2.")
			continue
		}
		record, err := l.rt.controller.Choose(ctx, l.id, side)
		var persistErr *session.PersistError
		switch {
		case errors.As(err, &persistErr):
			fmt.Fprintln(l.out, paint("warning: "+persistErr.Error(), ansiYellow, l.colorize))
		case err != nil:
			l.fail(err)
			return false
		}
		label := "Recorded your preference."
		if l.showVariants {
			label = fmt.Sprintf("Recorded your preference for %s.", record.ChosenVariant)
		}
		fmt.Fprintln(l.out, paint(label, ansiGreen, l.colorize))
		return false
	}
}

// command handles a slash command and reports whether the loop should stop.
func (l *chatLoop) command(line string) bool {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(name) {
	case "/quit", "/exit":
		return true
	case "/reset":
		l.reset()
	case "/clear":
		if err := l.rt.controller.ClearPreferences(l.id); err != nil {
			l.fail(err)
			break
		}
		fmt.Fprintln(l.out, "Preference history cleared.")
	case "/categories":
		for _, id := range l.rt.catalog.Categories() {
			fmt.Fprintf(l.out, "  %s\n", id)
		}
	case "/category":
		l.setCategory(arg)
	case "/stats":
		l.stats()
	default:
		fmt.Fprintf(l.out, "Unknown command %s\n", name)
	}
	return false
}

func (l *chatLoop) setCategory(arg string) {
	if strings.EqualFold(arg, "auto") || arg == "" {
		if classifierOrNil(l.rt.classifier) == nil {
			fmt.Fprintln(l.out, "Classification is off; name a category.")
			return
		}
		l.category = ""
		fmt.Fprintln(l.out, "Category will be detected from each question.")
		return
	}
	cat, err := l.rt.catalog.Category(arg)
	if err != nil {
		l.fail(err)
		return
	}
	l.category = cat.ID
	fmt.Fprintf(l.out, "Category set to %s.\n", cat.ID)
}

func (l *chatLoop) stats() {
	if l.category == "" {
		fmt.Fprintln(l.out, "Set a category with /category to see its stats.")
		return
	}
	counts, err := l.rt.controller.Stats(l.id, l.category)
	if err != nil {
		l.fail(err)
		return
	}
	cat, _ := l.rt.catalog.Category(l.category)
	rows := make([][]string, 0, len(cat.Variants))
	for _, v := range cat.Variants {
		rows = append(rows, []string{v.ID, v.Description, strconv.Itoa(counts[v.ID])})
	}
	fmt.Fprintln(l.out, renderTable([]string{"Style", "Description", "Picks"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))
}

func (l *chatLoop) reset() {
	if err := l.rt.controller.Reset(l.id); err != nil {
		l.fail(err)
		return
	}
	fmt.Fprintln(l.out, "Session reset.")
}

func (l *chatLoop) prompt(text string) (string, bool) {
	fmt.Fprint(l.out, text)
	if !l.in.Scan() {
		fmt.Fprintln(l.out)
		return "", false
	}
	return strings.TrimSpace(l.in.Text()), true
}

func (l *chatLoop) fail(err error) {
	fmt.Fprintln(l.out, paint("error: "+err.Error(), ansiRed, l.colorize))
}

func (l *chatLoop) categoryLabel() string {
	if l.category == "" {
		return "category detected per question"
	}
	return "category " + l.category
}
