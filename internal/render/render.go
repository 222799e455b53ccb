// Package render turns normalized content into final LaTeX documents.
// Rendering is total for reports: a report always produces a complete
// document, falling back to stock sections when the content carries none.
// A slide deck with no sections renders empty, which downstream layers
// treat as "nothing to save".
package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/paperforge/paperforge/internal/citations"
	"github.com/paperforge/paperforge/internal/doc"
	"github.com/paperforge/paperforge/internal/normalize"
)

// RefsPerSlide is how many bibliography entries share one reference frame
// in slide decks.
const RefsPerSlide = 3

// defaultAbstract is used when report content carries no abstract.
const defaultAbstract = "No abstract provided."

// LaTeX braces collide with the default template delimiters, so both
// templates use << >>.

//go:embed report.tmpl
var reportTmpl string

//go:embed beamer.tmpl
var beamerTmpl string

var (
	reportTemplate = template.Must(template.New("report").Delims("<<", ">>").Parse(reportTmpl))
	beamerTemplate = template.Must(template.New("beamer").Delims("<<", ">>").Parse(beamerTmpl))
)

// defaultReportSections fill a report whose content has no sections at
// all, so the document still compiles to a complete skeleton.
var defaultReportSections = []normalize.Section{
	{Heading: "Introduction", Body: normalize.SectionBody{Paragraph: "This report was generated from the submitted research papers. It summarizes their motivation, approach, and findings."}},
	{Heading: "Background", Body: normalize.SectionBody{Paragraph: "The submitted papers situate their contributions within prior work in the field."}},
	{Heading: "Methodology", Body: normalize.SectionBody{Paragraph: "The papers describe the experimental setups and evaluation criteria used in their studies."}},
	{Heading: "Results", Body: normalize.SectionBody{Paragraph: "Key results reported by the papers are summarized here."}},
	{Heading: "Discussion", Body: normalize.SectionBody{Paragraph: "The findings suggest directions for further investigation and practical application."}},
	{Heading: "Conclusion", Body: normalize.SectionBody{Paragraph: "This report highlighted the main contributions of the submitted papers."}},
}

// Render produces the final LaTeX document for the given kind.
func Render(content normalize.Content, kind doc.Kind, logger *slog.Logger) (doc.Rendered, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var latex string
	var err error
	switch kind {
	case doc.KindSlides:
		latex, err = renderBeamer(content, logger)
	default:
		latex, err = renderReport(content)
	}
	if err != nil {
		return doc.Rendered{}, err
	}

	if latex == "" {
		logger.Warn("render produced no content, nothing will be saved", "kind", kind)
	}
	return doc.Rendered{LaTeX: latex, Kind: kind, Filename: kind.Filename()}, nil
}

type reportSectionView struct {
	Heading string
	Content string
}

type reportView struct {
	Title     string
	Author    string
	Abstract  string
	Sections  []reportSectionView
	Citations string
}

func renderReport(content normalize.Content) (string, error) {
	sections := content.Sections
	if len(sections) == 0 {
		sections = defaultReportSections
	}

	view := reportView{
		Title:     content.Title,
		Author:    content.Author,
		Abstract:  content.Abstract,
		Citations: strings.Join(citations.Bibitems(content.Citations), "\n"),
	}
	if view.Abstract == "" {
		view.Abstract = defaultAbstract
	}
	for _, s := range sections {
		view.Sections = append(view.Sections, reportSectionView{
			Heading: s.Heading,
			Content: sectionProse(s.Body),
		})
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return buf.String(), nil
}

// sectionProse renders a section body as report prose. Bullet lists become
// an itemize block rather than being flattened into a sentence.
func sectionProse(body normalize.SectionBody) string {
	if !body.IsList {
		return body.Paragraph
	}
	var b strings.Builder
	b.WriteString("\\begin{itemize}\n")
	for _, item := range body.Bullets {
		fmt.Fprintf(&b, "\\item %s\n", item)
	}
	b.WriteString("\\end{itemize}")
	return b.String()
}

type beamerSectionView struct {
	Heading string
	Items   []string
}

type refSlideView struct {
	Part    int
	Entries string
}

type beamerView struct {
	Title     string
	Author    string
	Sections  []beamerSectionView
	RefSlides []refSlideView
}

func renderBeamer(content normalize.Content, logger *slog.Logger) (string, error) {
	if len(content.Sections) == 0 {
		logger.Warn("no sections in generated content, skipping slide render")
		return "", nil
	}

	view := beamerView{
		Title:     content.Title,
		Author:    content.Author,
		RefSlides: referenceSlides(content.Citations),
	}
	for _, s := range content.Sections {
		view.Sections = append(view.Sections, beamerSectionView{
			Heading: s.Heading,
			Items:   bulletItems(s.Body),
		})
	}

	var buf bytes.Buffer
	if err := beamerTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to render presentation: %w", err)
	}
	return buf.String(), nil
}

// bulletItems resolves a section body into slide bullet lines. Prose that
// arrived where a list was expected is split on sentence boundaries so the
// slide still reads as points.
func bulletItems(body normalize.SectionBody) []string {
	points := body.Bullets
	if !body.IsList {
		points = strings.Split(body.Paragraph, ". ")
	}

	items := make([]string, 0, len(points))
	for _, p := range points {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	return items
}

// referenceSlides batches bibliography entries into numbered reference
// frames, RefsPerSlide entries apiece, preserving entry order.
func referenceSlides(cites []citations.Entry) []refSlideView {
	lines := citations.Bibitems(cites)

	var slides []refSlideView
	for start := 0; start < len(lines); start += RefsPerSlide {
		end := start + RefsPerSlide
		if end > len(lines) {
			end = len(lines)
		}
		slides = append(slides, refSlideView{
			Part:    len(slides) + 1,
			Entries: strings.Join(lines[start:end], "\n"),
		})
	}
	return slides
}
