// Package doc defines the target output kinds and the rendered document
// artifact shared across the pipeline stages.
package doc

import "fmt"

// Kind is a target output layout.
type Kind string

const (
	// KindReport is a multi-page IEEE-style report with an abstract.
	KindReport Kind = "report"
	// KindSlides is a frame-by-frame Beamer slide deck.
	KindSlides Kind = "slides"
)

// ParseKind maps user-facing selectors onto a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "report", "IEEE report", "ieee":
		return KindReport, nil
	case "slides", "Beamer presentation", "beamer":
		return KindSlides, nil
	}
	return "", fmt.Errorf("unknown output kind %q (want %q or %q)", s, KindReport, KindSlides)
}

// Filename returns the suggested download filename for this kind.
func (k Kind) Filename() string {
	if k == KindSlides {
		return "generated_presentation.tex"
	}
	return "generated_report.tex"
}

// Rendered is the final LaTeX text plus its target kind. Immutable once
// produced; the sole artifact exposed across the core boundary. An empty
// LaTeX field means "nothing to save" and must not be persisted.
type Rendered struct {
	LaTeX    string
	Kind     Kind
	Filename string
}

// Empty reports whether the render produced no content.
func (r Rendered) Empty() bool {
	return r.LaTeX == ""
}
