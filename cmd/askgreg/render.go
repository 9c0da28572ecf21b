package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"askgreg/internal/session"
)

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

var titleCaser = cases.Title(language.English)

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func paint(text, color string, colorize bool) string {
	if !colorize || color == "" {
		return text
	}
	return color + text + ansiReset
}

// renderReply formats one side of a pending selection. Variant ids are shown
// only on request so the choice stays blind.
func renderReply(label, variant, text, failure string, showVariant, colorize bool) string {
	header := label
	if showVariant {
		header = fmt.Sprintf("%s (%s)", label, variant)
	}
	var b strings.Builder
	b.WriteString(paint("== "+header+" ==", ansiBlue+ansiBold, colorize))
	b.WriteByte('\n')
	if failure != "" {
		b.WriteString(paint("generation failed: "+failure, ansiRed, colorize))
	} else {
		b.WriteString(strings.TrimSpace(text))
	}
	b.WriteByte('\n')
	return b.String()
}

func renderPending(p session.Pending, showVariant, colorize bool) string {
	var b strings.Builder
	if p.Classification != nil {
		b.WriteString(paint(fmt.Sprintf("Category: %s (%s)", p.Category, p.Classification.Reason), ansiYellow, colorize))
		b.WriteString("\n\n")
	}
	b.WriteString(renderReply("Response 1", p.FirstVariant, p.FirstText, p.FirstError, showVariant, colorize))
	b.WriteByte('\n')
	b.WriteString(renderReply("Response 2", p.SecondVariant, p.SecondText, p.SecondError, showVariant, colorize))
	return b.String()
}

// displayName title-cases snake_case category ids for listings.
func displayName(id string) string {
	if strings.ContainsAny(id, " ") {
		return id
	}
	return titleCaser.String(strings.ReplaceAll(id, "_", " "))
}
