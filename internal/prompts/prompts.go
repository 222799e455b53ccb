// Package prompts builds the generation prompt from modeled papers, the
// format template, and extracted citations. Building is a pure function:
// identical inputs always produce the identical prompt string.
package prompts

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/paperforge/paperforge/internal/citations"
	"github.com/paperforge/paperforge/internal/doc"
	"github.com/paperforge/paperforge/internal/paper"
	"github.com/paperforge/paperforge/internal/prompts/report"
	"github.com/paperforge/paperforge/internal/prompts/slides"
)

// NeutralTemplateNote replaces the literal format-template text before it
// is embedded in a prompt. First line of defense against template content
// leaking into generated output; the normalizer checks for this exact
// string downstream.
const NeutralTemplateNote = "This document provides layout guidelines. DO NOT use its content. Only follow its structure."

// Per-paper content budgets. Slide prompts embed less of each paper to
// keep the total prompt size in check.
const (
	slideContentBudget  = 2000
	reportContentBudget = 8000
)

// Build constructs the generation prompt for the given target kind.
func Build(papers []paper.Paper, templateText string, cites []citations.Entry, kind doc.Kind) (string, error) {
	budget := reportContentBudget
	if kind == doc.KindSlides {
		budget = slideContentBudget
	}

	papersBlock := PapersBlock(papers, budget)
	citationsBlock := strings.Join(citations.Bibitems(cites), "\n")

	switch kind {
	case doc.KindSlides:
		return slides.UserPrompt(slides.Data{
			Papers:    papersBlock,
			Template:  templateText,
			Citations: citationsBlock,
		})
	case doc.KindReport:
		return report.UserPrompt(report.Data{
			Papers:    papersBlock,
			Template:  templateText,
			Citations: citationsBlock,
		})
	}
	return "", fmt.Errorf("unknown output kind %q", kind)
}

// PapersBlock renders each paper's weak metadata plus a truncated slice of
// its full text, separated by blank lines.
func PapersBlock(papers []paper.Paper, contentBudget int) string {
	blocks := make([]string, 0, len(papers))
	for _, p := range papers {
		var b strings.Builder
		fmt.Fprintf(&b, "Title: %s\n", p.Title)
		fmt.Fprintf(&b, "Author: %s\n", p.Author)
		fmt.Fprintf(&b, "Sections: %s\n", strings.Join(p.SectionHeadings(), "; "))
		fmt.Fprintf(&b, "Content:\n%s", Truncate(p.FullText, contentBudget))
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}

// Truncate caps s at n bytes, marking the cut with an ellipsis. The cut
// backs up to a rune boundary so multibyte text never yields invalid UTF-8.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
