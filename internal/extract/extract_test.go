package extract

import (
	"context"
	"strings"
	"testing"

	"docchat-backend/internal/pdfgen"
)

func TestPagesNumbersEveryPage(t *testing.T) {
	text := strings.TrimRight(strings.Repeat("line of body text\n", 2*46), "\n")
	data, err := pdfgen.Build(text)
	if err != nil {
		t.Fatalf("build pdf: %v", err)
	}

	pages, err := Pages(context.Background(), data)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	for i, page := range pages {
		if page.Number != i+1 {
			t.Fatalf("page %d numbered %d", i, page.Number)
		}
		if !strings.Contains(page.Text, "line of body text") {
			t.Fatalf("page %d missing text: %q", page.Number, page.Text)
		}
	}
}

func TestPagesTrimsWhitespace(t *testing.T) {
	data, err := pdfgen.Build("only line")
	if err != nil {
		t.Fatalf("build pdf: %v", err)
	}
	pages, err := Pages(context.Background(), data)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if pages[0].Text != strings.TrimSpace(pages[0].Text) {
		t.Fatalf("expected trimmed text, got %q", pages[0].Text)
	}
}

func TestPagesRejectsEmptyData(t *testing.T) {
	if _, err := Pages(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty data")
	}
}

func TestPagesRejectsNonPDF(t *testing.T) {
	if _, err := Pages(context.Background(), []byte("plain text, not a pdf")); err == nil {
		t.Fatal("expected error for non-pdf data")
	}
}
