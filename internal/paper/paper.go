// Package paper models extracted PDF text as structured research papers.
package paper

import "strings"

// UnknownAuthor is the sentinel used when no author line is present.
const UnknownAuthor = "Unknown"

// Section is one heuristically detected numbered section of a paper.
type Section struct {
	Heading string
	Body    string
}

// Paper is a modeled research paper. Title, Author and Sections are
// first-lines heuristics over the raw text: approximate by design, used
// only as weak LLM context and never as ground truth.
type Paper struct {
	SourcePath string
	Title      string
	Author     string
	Sections   []Section // ordered by first appearance in the source text
	FullText   string
}

// Template is the uploaded layout-reference PDF. Its text is used for
// structure only; none of it may appear verbatim in generated output.
type Template struct {
	SourcePath string
	Text       string
}

// sectionMarkers are the leading numeric heading markers the modeler
// recognizes.
var sectionMarkers = []string{"1.", "2.", "3.", "4.", "5.", "6.", "7.", "8.", "9.", "0."}

// Model turns raw extracted text plus a source identifier into a Paper.
// The title guess is the first non-empty line, the author guess the second
// line. Sections accumulate lines under the most recently seen numbered
// heading; text before the first heading only survives in FullText.
func Model(rawText, sourcePath string) Paper {
	return Paper{
		SourcePath: sourcePath,
		Title:      extractTitle(rawText),
		Author:     extractAuthor(rawText),
		Sections:   extractSections(rawText),
		FullText:   rawText,
	}
}

// Section returns the accumulated body for a heading, if detected.
func (p *Paper) Section(heading string) (string, bool) {
	for _, s := range p.Sections {
		if s.Heading == heading {
			return s.Body, true
		}
	}
	return "", false
}

// SectionHeadings returns the detected headings in source order.
func (p *Paper) SectionHeadings() []string {
	headings := make([]string, len(p.Sections))
	for i, s := range p.Sections {
		headings[i] = s.Heading
	}
	return headings
}

func extractTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func extractAuthor(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) > 1 {
		if author := strings.TrimSpace(lines[1]); author != "" {
			return author
		}
	}
	return UnknownAuthor
}

func extractSections(text string) []Section {
	lines := strings.Split(text, "\n")
	// Drop the empty trailing element produced by a final newline so it
	// does not get appended to the last section body.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	var sections []Section
	current := -1
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if isHeading(trimmed) {
			current = indexOfHeading(sections, trimmed)
			if current < 0 {
				sections = append(sections, Section{Heading: trimmed})
				current = len(sections) - 1
			} else {
				// Repeated heading restarts its body, position keeps
				// the first appearance.
				sections[current].Body = ""
			}
		} else if current >= 0 {
			sections[current].Body += line + "\n"
		}
	}
	return sections
}

func isHeading(line string) bool {
	for _, marker := range sectionMarkers {
		if strings.HasPrefix(line, marker) {
			return true
		}
	}
	return false
}

func indexOfHeading(sections []Section, heading string) int {
	for i, s := range sections {
		if s.Heading == heading {
			return i
		}
	}
	return -1
}
