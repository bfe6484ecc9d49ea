package pdfgen

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"docchat-backend/internal/extract"
)

func TestBuildProducesParseablePDF(t *testing.T) {
	data, err := Build("Hello world.\nSecond line with (parens) and a back\\slash.")
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if !bytes.HasPrefix(data, []byte("%PDF-1.4\n")) {
		t.Fatal("missing PDF header")
	}
	if !bytes.HasSuffix(data, []byte("%%EOF\n")) {
		t.Fatal("missing EOF marker")
	}

	pages, err := extract.Pages(context.Background(), data)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	if !strings.Contains(pages[0].Text, "Hello world.") {
		t.Fatalf("expected text roundtrip, got %q", pages[0].Text)
	}
}

func TestBuildSplitsLongTextAcrossPages(t *testing.T) {
	text := strings.TrimRight(strings.Repeat("a single fixed line of content\n", 100), "\n")
	data, err := Build(text)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	pages, err := extract.Pages(context.Background(), data)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	// 100 lines at 46 lines per page.
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
}

func TestBuildEmptyTextStillYieldsOnePage(t *testing.T) {
	data, err := Build("")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	pages, err := extract.Pages(context.Background(), data)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
}

func TestWrapTextBreaksOversizedWords(t *testing.T) {
	lines := wrapText(strings.Repeat("x", 205), 90)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if len(lines[0]) != 90 || len(lines[2]) != 25 {
		t.Fatalf("unexpected split lengths: %d/%d/%d", len(lines[0]), len(lines[1]), len(lines[2]))
	}
}

func TestEscapeText(t *testing.T) {
	got := escapeText(`a(b)c\d`)
	want := `a\(b\)c\\d`
	if got != want {
		t.Fatalf("escape: want %q, got %q", want, got)
	}
	if escapeText("smile ☺") != "smile ?" {
		t.Fatalf("expected non-WinAnsi runes replaced, got %q", escapeText("smile ☺"))
	}
}

func TestEscapeTextEmitsSingleWinAnsiBytes(t *testing.T) {
	got := escapeText("café")
	if got != "caf\xe9" {
		t.Fatalf("expected single WinAnsi byte for é, got %q", got)
	}
}

func TestBuildRoundTripsLatin1Text(t *testing.T) {
	data, err := Build("café au lait, crème brûlée")
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	// The content stream must carry Latin-1 bytes, not UTF-8 sequences.
	if !bytes.Contains(data, []byte("caf\xe9")) {
		t.Fatal("expected WinAnsi byte 0xE9 in content stream")
	}
	if bytes.Contains(data, []byte("café")) {
		t.Fatal("content stream carries UTF-8 bytes for é")
	}

	pages, err := extract.Pages(context.Background(), data)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(pages[0].Text, "café au lait") {
		t.Fatalf("expected accented text roundtrip, got %q", pages[0].Text)
	}
}

func TestWrapTextCountsRunesNotBytes(t *testing.T) {
	lines := wrapText(strings.Repeat("é", 100), 90)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	first, second := []rune(lines[0]), []rune(lines[1])
	if len(first) != 90 || len(second) != 10 {
		t.Fatalf("unexpected rune split: %d/%d", len(first), len(second))
	}
	for _, r := range first {
		if r != 'é' {
			t.Fatalf("multi-byte rune split mid-sequence: %q", lines[0])
		}
	}
}
