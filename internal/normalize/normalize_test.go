package normalize

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/paperforge/paperforge/internal/citations"
	"github.com/paperforge/paperforge/internal/doc"
	"github.com/paperforge/paperforge/internal/prompts"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCites() []citations.Entry {
	return []citations.Entry{{Key: "Smith2020", Body: "J. Smith, 2020."}}
}

func TestStripThink(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{
			name:  "no block",
			reply: `{"title": "x"}`,
			want:  `{"title": "x"}`,
		},
		{
			name:  "single block",
			reply: "<think>let me reason</think>\n{\"title\": \"x\"}",
			want:  `{"title": "x"}`,
		},
		{
			name:  "greedy across repeated markers",
			reply: "<think>a</think>middle<think>b</think>after",
			want:  "after",
		},
		{
			name:  "multiline block",
			reply: "<think>line one\nline two\n</think>result",
			want:  "result",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripThink(tt.reply); got != tt.want {
				t.Errorf("StripThink() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStripFences(t *testing.T) {
	reply := "```json\n{\"title\": \"x\"}\n```"
	if got := StripFences(reply); got != `{"title": "x"}` {
		t.Errorf("StripFences() = %q", got)
	}
}

func TestNormalizeReport(t *testing.T) {
	n := New(doc.KindReport, testLogger())
	reply := `{
		"title": "LLM Survey",
		"author": "A. Researcher",
		"abstract": "A survey of recent work.",
		"sections": [
			{"heading": "Introduction", "content": "Prose about the field."},
			{"heading": "Methods", "content": "How the studies were run."}
		]
	}`

	content := n.Normalize(reply, testCites())

	if content.Fallback {
		t.Fatal("valid JSON must not fall back")
	}
	if content.Title != "LLM Survey" || content.Author != "A. Researcher" {
		t.Errorf("metadata = %q / %q", content.Title, content.Author)
	}
	if content.Abstract != "A survey of recent work." {
		t.Errorf("abstract = %q", content.Abstract)
	}
	if len(content.Sections) != 2 {
		t.Fatalf("got %d sections", len(content.Sections))
	}
	if content.Sections[0].Body.IsList {
		t.Error("prose content must not resolve to a list")
	}
	if content.Sections[0].Body.Paragraph != "Prose about the field." {
		t.Errorf("paragraph = %q", content.Sections[0].Body.Paragraph)
	}
	if len(content.Citations) != 1 || content.Citations[0].Key != "Smith2020" {
		t.Errorf("citations not attached: %+v", content.Citations)
	}
}

func TestNormalizeSlidesBullets(t *testing.T) {
	n := New(doc.KindSlides, testLogger())
	reply := "```json\n" + `{
		"title": "Deck",
		"author": "B",
		"sections": [
			{"heading": "Overview", "content": ["First point.", "Second point."]}
		]
	}` + "\n```"

	content := n.Normalize(reply, nil)

	if content.Fallback {
		t.Fatal("fenced valid JSON must not fall back")
	}
	body := content.Sections[0].Body
	if !body.IsList {
		t.Fatal("list content must resolve to bullets")
	}
	if len(body.Bullets) != 2 || body.Bullets[1] != "Second point." {
		t.Errorf("bullets = %v", body.Bullets)
	}
}

func TestNormalizeFallback(t *testing.T) {
	tests := []struct {
		kind      doc.Kind
		wantTitle string
	}{
		{doc.KindReport, "Generated Report"},
		{doc.KindSlides, "Generated Presentation"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			n := New(tt.kind, testLogger())
			content := n.Normalize("not json at all", testCites())

			if !content.Fallback {
				t.Fatal("unparseable reply must fall back")
			}
			if content.Title != tt.wantTitle {
				t.Errorf("title = %q, want %q", content.Title, tt.wantTitle)
			}
			if content.Author != FallbackAuthor {
				t.Errorf("author = %q", content.Author)
			}
			if len(content.Sections) != 1 || content.Sections[0].Heading != "Generated Content" {
				t.Fatalf("sections = %+v", content.Sections)
			}
			if content.Sections[0].Body.Paragraph != "not json at all" {
				t.Errorf("fallback body = %q", content.Sections[0].Body.Paragraph)
			}
			if len(content.Citations) != 1 {
				t.Error("fallback must still carry citations")
			}
		})
	}
}

func TestNormalizeNonObjectJSONFallsBack(t *testing.T) {
	// Valid JSON that is not an object must degrade like malformed JSON,
	// keeping the raw reply instead of rendering zero sections.
	tests := []struct {
		name  string
		reply string
	}{
		{"null", "null"},
		{"array", `[{"heading": "H", "content": "x"}]`},
		{"bare string", `"just a sentence"`},
		{"number", "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := New(doc.KindReport, testLogger())
			content := n.Normalize(tt.reply, testCites())

			if !content.Fallback {
				t.Fatal("non-object reply must fall back")
			}
			if content.Title != "Generated Report" {
				t.Errorf("title = %q", content.Title)
			}
			if len(content.Sections) != 1 || content.Sections[0].Body.Paragraph != tt.reply {
				t.Errorf("fallback must carry the reply verbatim: %+v", content.Sections)
			}
		})
	}
}

func TestNormalizeRemovesTemplateLeak(t *testing.T) {
	n := New(doc.KindReport, testLogger())
	reply := `{"title": "T", "author": "A", "sections": [{"heading": "H", "content": "Before. ` +
		prompts.NeutralTemplateNote + ` After."}]}`

	content := n.Normalize(reply, nil)

	for _, s := range content.Sections {
		if strings.Contains(s.Body.Paragraph, prompts.NeutralTemplateNote) {
			t.Error("placeholder sentence survived normalization")
		}
	}
	if !strings.Contains(content.Sections[0].Body.Paragraph, "Before.") {
		t.Error("surrounding text must survive leak removal")
	}
}

func TestNormalizeFillsMissingMetadata(t *testing.T) {
	n := New(doc.KindReport, testLogger())
	content := n.Normalize(`{"sections": [{"heading": "H", "content": "x"}]}`, nil)

	if content.Fallback {
		t.Fatal("valid JSON with missing metadata must not fall back")
	}
	if content.Title != "Generated Report" {
		t.Errorf("title = %q", content.Title)
	}
	if content.Author != FallbackAuthor {
		t.Errorf("author = %q", content.Author)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := New(doc.KindReport, testLogger())
	reply := `{"title": "T", "author": "A", "sections": [{"heading": "H", "content": "Clean prose."}]}`

	first := n.Normalize(reply, nil)
	second := n.Normalize(reply, nil)

	if first.Title != second.Title || len(first.Sections) != len(second.Sections) {
		t.Error("normalizing the same reply twice diverged")
	}
	if first.Sections[0].Body.Paragraph != second.Sections[0].Body.Paragraph {
		t.Error("section bodies diverged")
	}
}

func TestParseBodyNonStringItems(t *testing.T) {
	body := parseBody([]byte(`["point", 42]`))
	if !body.IsList || len(body.Bullets) != 2 {
		t.Fatalf("body = %+v", body)
	}
	if body.Bullets[1] != "42" {
		t.Errorf("non-string item = %q", body.Bullets[1])
	}
}
