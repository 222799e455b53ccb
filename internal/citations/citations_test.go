package citations

import (
	"context"
	"strings"
	"testing"

	"github.com/paperforge/paperforge/internal/providers"
)

func TestParseEntry(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		key  string
		body string
		ok   bool
	}{
		{
			name: "canonical entry",
			raw:  `\bibitem{Smith2020} J. Smith, "A Paper," IEEE Trans., 2020.`,
			key:  "Smith2020",
			body: `J. Smith, "A Paper," IEEE Trans., 2020.`,
			ok:   true,
		},
		{
			name: "no marker prefix",
			raw:  `{Lee2019} K. Lee, "Another," NeurIPS, 2019.`,
			key:  "Lee2019",
			body: `K. Lee, "Another," NeurIPS, 2019.`,
			ok:   true,
		},
		{
			name: "missing braces",
			raw:  `just some text without a key`,
			ok:   false,
		},
		{
			name: "empty key",
			raw:  `\bibitem{} body`,
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, ok := ParseEntry(tt.raw)
			if ok != tt.ok {
				t.Fatalf("ok: got %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if entry.Key != tt.key {
				t.Errorf("key: got %q, want %q", entry.Key, tt.key)
			}
			if entry.Body != tt.body {
				t.Errorf("body: got %q, want %q", entry.Body, tt.body)
			}
		})
	}
}

func TestSplitEntries(t *testing.T) {
	t.Run("strips fences and wrappers", func(t *testing.T) {
		reply := "```latex\n" +
			`\begin{thebibliography}{99}` + "\n" +
			`\bibitem{a} First entry.` + "\n" +
			`\bibitem{b} Second entry.` + "\n" +
			`\end{thebibliography}` + "\n" +
			"```"

		entries := SplitEntries(reply, 15)
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		for _, e := range entries {
			if !strings.HasPrefix(e.Bibitem(), BibitemMarker) {
				t.Errorf("entry missing marker: %q", e.Bibitem())
			}
			if strings.Contains(e.Body, "```") || strings.Contains(e.Body, "thebibliography") {
				t.Errorf("entry contains artifacts: %q", e.Body)
			}
		}
	})

	t.Run("truncates to n", func(t *testing.T) {
		var b strings.Builder
		for i := 0; i < 20; i++ {
			b.WriteString(`\bibitem{k` + string(rune('a'+i)) + `} entry` + "\n")
		}

		entries := SplitEntries(b.String(), 15)
		if len(entries) != 15 {
			t.Errorf("expected 15 entries, got %d", len(entries))
		}
	})

	t.Run("fewer than n returned as-is", func(t *testing.T) {
		entries := SplitEntries(`\bibitem{only} one entry`, 15)
		if len(entries) != 1 {
			t.Errorf("expected 1 entry, got %d", len(entries))
		}
	})

	t.Run("unparseable fragments dropped", func(t *testing.T) {
		reply := `\bibitem{good} fine` + "\n" + `\bibitem no braces here`
		entries := SplitEntries(reply, 15)
		if len(entries) != 1 || entries[0].Key != "good" {
			t.Errorf("unexpected entries: %+v", entries)
		}
	})
}

func TestExtract(t *testing.T) {
	t.Run("returns normalized entries", func(t *testing.T) {
		mock := providers.NewMockClient()
		mock.ResponseText = "```latex\n" +
			`\bibitem{x} X.` + "\n" +
			`\bibitem{y} Y.` + "\n```"

		e := New(mock, 15, nil)
		entries, err := e.Extract(context.Background(), []string{"paper text"})
		if err != nil {
			t.Fatalf("Extract failed: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
	})

	t.Run("only last paper text reaches the model", func(t *testing.T) {
		mock := providers.NewMockClient()
		mock.ResponseText = `\bibitem{z} Z.`

		e := New(mock, 15, nil)
		if _, err := e.Extract(context.Background(), []string{"FIRST PAPER", "SECOND PAPER"}); err != nil {
			t.Fatalf("Extract failed: %v", err)
		}

		prompt := mock.LastRequest.Messages[0].Content
		if !strings.Contains(prompt, "SECOND PAPER") {
			t.Error("expected last paper's text in prompt")
		}
		if strings.Contains(prompt, "FIRST PAPER") {
			t.Error("earlier papers must not reach the model: each loop iteration overwrites the working text")
		}
	})

	t.Run("backend failure propagates", func(t *testing.T) {
		mock := providers.NewMockClient()
		mock.ShouldFail = true

		e := New(mock, 15, nil)
		if _, err := e.Extract(context.Background(), []string{"text"}); err == nil {
			t.Error("expected backend failure to propagate")
		}
	})

	t.Run("prompt includes fixed count instruction", func(t *testing.T) {
		mock := providers.NewMockClient()
		e := New(mock, 15, nil)
		if _, err := e.Extract(context.Background(), []string{"text"}); err != nil {
			t.Fatalf("Extract failed: %v", err)
		}
		prompt := mock.LastRequest.Messages[0].Content
		if !strings.Contains(prompt, "Return exactly 15 references") {
			t.Errorf("prompt missing count instruction:\n%s", prompt)
		}
	})
}
