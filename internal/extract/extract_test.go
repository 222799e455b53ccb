package extract

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExtractMissingFileReturnsEmpty(t *testing.T) {
	e := New(0, nil)
	if text := e.Extract(filepath.Join(t.TempDir(), "nope.pdf")); text != "" {
		t.Errorf("expected empty text for missing file, got %d chars", len(text))
	}
}

func TestExtractCorruptFileReturnsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 this is not really a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}

	e := New(0, nil)
	if text := e.Extract(path); text != "" {
		t.Errorf("expected empty text for corrupt file, got %q", text)
	}
}

func TestNewDefaultsCap(t *testing.T) {
	e := New(0, nil)
	if e.maxChars != DefaultMaxChars {
		t.Errorf("expected default cap %d, got %d", DefaultMaxChars, e.maxChars)
	}

	e = New(500, nil)
	if e.maxChars != 500 {
		t.Errorf("expected cap 500, got %d", e.maxChars)
	}
}

func TestValidateInputs(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		err := ValidateInputs(filepath.Join(t.TempDir(), "missing.pdf"))
		if err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("unreadable pdf", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.pdf")
		if err := os.WriteFile(path, []byte("not a pdf at all"), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := ValidateInputs(path); err == nil {
			t.Error("expected error for unreadable PDF")
		}
	})

	t.Run("real fixture", func(t *testing.T) {
		testPDF := filepath.Join("..", "..", "testdata", "sample-paper.pdf")
		if _, err := os.Stat(testPDF); os.IsNotExist(err) {
			t.Skip("test fixture not found")
		}
		if err := ValidateInputs(testPDF); err != nil {
			t.Errorf("expected fixture to validate: %v", err)
		}
	})
}

func TestPageCountFixture(t *testing.T) {
	testPDF := filepath.Join("..", "..", "testdata", "sample-paper.pdf")
	if _, err := os.Stat(testPDF); os.IsNotExist(err) {
		t.Skip("test fixture not found")
	}

	count, err := PageCount(testPDF)
	if err != nil {
		t.Fatalf("PageCount failed: %v", err)
	}
	if count < 1 {
		t.Errorf("expected at least one page, got %d", count)
	}
}
