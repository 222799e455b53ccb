// Package citations extracts bibliography entries from research paper
// text via an LLM call and normalizes the reply into canonical \bibitem
// entries.
package citations

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/paperforge/paperforge/internal/llmcall"
	"github.com/paperforge/paperforge/internal/providers"
)

// BibitemMarker is the canonical LaTeX bibliography-entry prefix.
const BibitemMarker = `\bibitem`

// DefaultCount is the fixed number of entries requested per extraction.
const DefaultCount = 15

//go:embed extract.tmpl
var extractPromptTmpl string

var extractTemplate = template.Must(template.New("extract").Parse(extractPromptTmpl))

// Entry is one bibliography item.
type Entry struct {
	Key  string // short identifier used for in-text \cite references
	Body string // formatted citation text (author, title, venue, year)
}

// Bibitem renders the entry in canonical markup.
func (e Entry) Bibitem() string {
	return fmt.Sprintf(`%s{%s} %s`, BibitemMarker, e.Key, e.Body)
}

// ParseEntry splits a raw citation on its first two brace-delimited groups
// (key, then content). Entries that don't match this shape report ok=false.
func ParseEntry(raw string) (Entry, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, BibitemMarker)

	open := strings.Index(s, "{")
	if open < 0 {
		return Entry{}, false
	}
	close := strings.Index(s[open:], "}")
	if close < 0 {
		return Entry{}, false
	}
	key := s[open+1 : open+close]
	body := strings.TrimSpace(s[open+close+1:])
	if key == "" {
		return Entry{}, false
	}
	return Entry{Key: key, Body: body}, true
}

// Extractor asks an LLM for a fixed number of bibliography entries.
type Extractor struct {
	client   providers.LLMClient
	count    int
	recorder *llmcall.Recorder
	logger   *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRecorder attaches an LLM call recorder.
func WithRecorder(rec *llmcall.Recorder) Option {
	return func(e *Extractor) { e.recorder = rec }
}

// New creates an Extractor. A non-positive count falls back to DefaultCount.
func New(client providers.LLMClient, count int, logger *slog.Logger, opts ...Option) *Extractor {
	if count <= 0 {
		count = DefaultCount
	}
	if logger == nil {
		logger = slog.Default()
	}
	e := &Extractor{client: client, count: count, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract issues one LLM call and returns at most count entries, each in
// canonical \bibitem form. Fewer entries than requested are returned
// as-is. A backend failure propagates to the caller.
//
// When multiple paper texts are passed, each loop iteration replaces the
// working text, so only the last paper's text reaches the model.
func (e *Extractor) Extract(ctx context.Context, paperTexts []string) ([]Entry, error) {
	text := ""
	for _, t := range paperTexts {
		text = t
	}

	prompt, err := buildPrompt(text, e.count)
	if err != nil {
		return nil, fmt.Errorf("failed to build citation prompt: %w", err)
	}

	result, err := e.client.Chat(ctx, &providers.ChatRequest{
		Messages: []providers.Message{
			{Role: "user", Content: prompt},
		},
	})
	if e.recorder != nil {
		e.recorder.Record(result, llmcall.RecordOptions{Stage: "citations"})
	}
	if err != nil {
		return nil, fmt.Errorf("citation extraction failed: %w", err)
	}

	entries := SplitEntries(result.Content, e.count)
	e.logger.Info("extracted citations", "requested", e.count, "got", len(entries))
	return entries, nil
}

func buildPrompt(text string, count int) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Text  string
		Count int
	}{Text: text, Count: count}
	if err := extractTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// CleanReply strips code fences and thebibliography wrappers from an LLM
// reply.
func CleanReply(reply string) string {
	reply = strings.ReplaceAll(reply, "```latex", "")
	reply = strings.ReplaceAll(reply, "```", "")
	reply = strings.ReplaceAll(reply, `\begin{thebibliography}{99}`, "")
	reply = strings.ReplaceAll(reply, `\end{thebibliography}`, "")
	return reply
}

// SplitEntries cleans a reply, splits it on the bibitem marker, re-parses
// each non-empty fragment, and truncates to the first n entries. Fragments
// without a parseable {key} group are dropped.
func SplitEntries(reply string, n int) []Entry {
	cleaned := CleanReply(reply)

	var entries []Entry
	for _, fragment := range strings.Split(cleaned, BibitemMarker) {
		fragment = strings.TrimSpace(fragment)
		if fragment == "" {
			continue
		}
		entry, ok := ParseEntry(BibitemMarker + fragment)
		if !ok {
			continue
		}
		entries = append(entries, entry)
		if len(entries) == n {
			break
		}
	}
	return entries
}

// Bibitems renders entries as canonical markup lines.
func Bibitems(entries []Entry) []string {
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.Bibitem()
	}
	return lines
}
