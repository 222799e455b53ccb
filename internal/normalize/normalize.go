// Package normalize turns a raw generation reply into structured content
// the renderers can consume. Reasoning blocks and leaked template text are
// stripped, the JSON payload is parsed, and every section body is resolved
// once into either a prose paragraph or a bullet list. Normalization is
// total: a reply that cannot be parsed degrades to fallback content rather
// than failing the pipeline.
package normalize

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/paperforge/paperforge/internal/citations"
	"github.com/paperforge/paperforge/internal/doc"
	"github.com/paperforge/paperforge/internal/prompts"
	"github.com/paperforge/paperforge/internal/prompts/report"
	"github.com/paperforge/paperforge/internal/prompts/slides"
)

// FallbackAuthor is the author attached to fallback content.
const FallbackAuthor = "AI-generated"

const fallbackHeading = "Generated Content"

// thinkBlock matches an entire chain-of-thought block, greedily, so nested
// or repeated markers collapse into a single removal.
var thinkBlock = regexp.MustCompile(`(?s)<think>.*</think>`)

// SectionBody is one normalized section body: either a single prose
// paragraph or a list of bullet points. The shape is resolved at parse
// time so renderers never re-inspect raw JSON.
type SectionBody struct {
	Paragraph string
	Bullets   []string
	IsList    bool
}

// Section is one normalized content section.
type Section struct {
	Heading string
	Body    SectionBody
}

// Content is the fully normalized generation output. Citations come from
// the extraction stage, never from the model reply.
type Content struct {
	Title     string
	Author    string
	Abstract  string
	Sections  []Section
	Citations []citations.Entry
	Fallback  bool
}

// Normalizer cleans and parses generation replies for one output kind.
type Normalizer struct {
	kind   doc.Kind
	schema *jsonschema.Schema
	logger *slog.Logger
}

// New creates a Normalizer for the given output kind. Schema compilation
// failures disable validation but never fail construction.
func New(kind doc.Kind, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{kind: kind, schema: compileSchema(kind, logger), logger: logger}
}

// Normalize runs the full cleaning pass over a raw reply and attaches the
// extracted citations. It never returns an error: unparseable replies
// produce fallback content carrying the cleaned text verbatim.
func (n *Normalizer) Normalize(raw string, cites []citations.Entry) Content {
	cleaned := StripThink(raw)
	cleaned = n.removeTemplateLeak(cleaned)
	jsonText := StripFences(cleaned)

	// The payload must be a JSON object. Other valid JSON values (null,
	// arrays, bare strings) would unmarshal into an empty rawContent and
	// lose the reply, so they degrade to fallback like malformed JSON.
	if !strings.HasPrefix(jsonText, "{") {
		n.logger.Warn("generation reply is not a JSON object, using fallback content",
			"kind", n.kind)
		return n.fallback(jsonText, cites)
	}

	var payload rawContent
	if err := json.Unmarshal([]byte(jsonText), &payload); err != nil {
		n.logger.Warn("generation reply is not valid JSON, using fallback content",
			"kind", n.kind,
			"error", err)
		return n.fallback(jsonText, cites)
	}
	n.validate(jsonText)

	content := Content{
		Title:     strings.TrimSpace(payload.Title),
		Author:    strings.TrimSpace(payload.Author),
		Abstract:  strings.TrimSpace(payload.Abstract),
		Citations: cites,
	}
	if content.Title == "" {
		content.Title = n.fallbackTitle()
	}
	if content.Author == "" {
		content.Author = FallbackAuthor
	}
	for _, s := range payload.Sections {
		content.Sections = append(content.Sections, Section{
			Heading: strings.TrimSpace(s.Heading),
			Body:    parseBody(s.Content),
		})
	}
	return content
}

// StripThink removes a chain-of-thought block from the reply. The match is
// greedy: everything between the first opening marker and the last closing
// marker goes.
func StripThink(reply string) string {
	return strings.TrimSpace(thinkBlock.ReplaceAllString(reply, ""))
}

// StripFences removes markdown code fences wrapping a JSON payload.
func StripFences(reply string) string {
	reply = strings.ReplaceAll(reply, "```json", "")
	reply = strings.ReplaceAll(reply, "```", "")
	return strings.TrimSpace(reply)
}

func (n *Normalizer) removeTemplateLeak(reply string) string {
	if !strings.Contains(reply, prompts.NeutralTemplateNote) {
		return reply
	}
	n.logger.Warn("template placeholder leaked into generated content, removing",
		"kind", n.kind)
	return strings.ReplaceAll(reply, prompts.NeutralTemplateNote, "")
}

func (n *Normalizer) fallback(cleaned string, cites []citations.Entry) Content {
	return Content{
		Title:  n.fallbackTitle(),
		Author: FallbackAuthor,
		Sections: []Section{
			{Heading: fallbackHeading, Body: SectionBody{Paragraph: cleaned}},
		},
		Citations: cites,
		Fallback:  true,
	}
}

func (n *Normalizer) fallbackTitle() string {
	if n.kind == doc.KindSlides {
		return "Generated Presentation"
	}
	return "Generated Report"
}

// validate checks the parsed payload against the generation schema.
// Mismatches are logged, never fatal: the renderers tolerate loose shapes.
func (n *Normalizer) validate(jsonText string) {
	if n.schema == nil {
		return
	}
	var v any
	if err := json.Unmarshal([]byte(jsonText), &v); err != nil {
		return
	}
	if err := n.schema.Validate(v); err != nil {
		n.logger.Warn("generated content does not match the expected shape",
			"kind", n.kind,
			"error", err)
	}
}

type rawContent struct {
	Title    string       `json:"title"`
	Author   string       `json:"author"`
	Abstract string       `json:"abstract"`
	Sections []rawSection `json:"sections"`
}

type rawSection struct {
	Heading string          `json:"heading"`
	Content json.RawMessage `json:"content"`
}

// parseBody resolves a section's content field, which the model may emit
// as a string or as a list of bullet strings.
func parseBody(raw json.RawMessage) SectionBody {
	if len(raw) == 0 {
		return SectionBody{}
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return SectionBody{Paragraph: s}
	}

	var items []any
	if err := json.Unmarshal(raw, &items); err == nil {
		bullets := make([]string, 0, len(items))
		for _, item := range items {
			switch v := item.(type) {
			case string:
				bullets = append(bullets, v)
			default:
				bullets = append(bullets, fmt.Sprint(v))
			}
		}
		return SectionBody{Bullets: bullets, IsList: true}
	}

	// Some other JSON value entirely; keep its text so nothing is lost.
	return SectionBody{Paragraph: string(raw)}
}

// compileSchema extracts the inner JSON schema from the prompt package's
// wrapped structured-output definition and compiles it.
func compileSchema(kind doc.Kind, logger *slog.Logger) *jsonschema.Schema {
	wrapper := report.ContentSchema
	if kind == doc.KindSlides {
		wrapper = slides.ContentSchema
	}
	inner, ok := wrapper["json_schema"].(map[string]any)
	if !ok {
		return nil
	}
	raw, err := json.Marshal(inner["schema"])
	if err != nil {
		logger.Warn("failed to serialize content schema", "kind", kind, "error", err)
		return nil
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("content.json", strings.NewReader(string(raw))); err != nil {
		logger.Warn("failed to load content schema", "kind", kind, "error", err)
		return nil
	}
	schema, err := compiler.Compile("content.json")
	if err != nil {
		logger.Warn("failed to compile content schema", "kind", kind, "error", err)
		return nil
	}
	return schema
}
