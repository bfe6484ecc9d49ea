// Package pdfgen builds plain-text PDF byte streams for regenerated
// documents: literal text, left-aligned, one column, no further layout.
package pdfgen

import (
	"bytes"
	"fmt"
	"strings"
)

const (
	pageWidth    = 612
	pageHeight   = 792
	marginX      = 72
	marginTop    = 72
	fontSize     = 12
	leading      = 14
	maxLineChars = 90
)

var linesPerPage = (pageHeight - 2*marginTop) / leading

// Build renders the given text into a PDF byte stream. Text is wrapped at a
// fixed column, split across as many pages as needed, and set in a standard
// base font so no font data needs embedding.
func Build(text string) ([]byte, error) {
	lines := wrapText(text, maxLineChars)
	if len(lines) == 0 {
		lines = []string{""}
	}
	pages := paginate(lines, linesPerPage)
	numPages := len(pages)

	// Object layout: 1 catalog, 2 page tree, 3 font, then one page object
	// and one content stream per page.
	firstPageObj := 4
	firstContentObj := firstPageObj + numPages
	totalObjs := 3 + 2*numPages

	var buf bytes.Buffer
	offsets := make([]int, totalObjs+1)
	writeObj := func(num int, body string) {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	buf.WriteString("%PDF-1.4\n")

	writeObj(1, "<< /Type /Catalog /Pages 2 0 R >>")

	kids := make([]string, 0, numPages)
	for i := 0; i < numPages; i++ {
		kids = append(kids, fmt.Sprintf("%d 0 R", firstPageObj+i))
	}
	writeObj(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), numPages))

	writeObj(3, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	for i := 0; i < numPages; i++ {
		writeObj(firstPageObj+i, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d %d] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			pageWidth, pageHeight, firstContentObj+i))
	}

	for i, pageLines := range pages {
		stream := contentStream(pageLines)
		writeObj(firstContentObj+i, fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(stream), stream))
	}

	xrefPos := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", totalObjs+1)
	buf.WriteString("0000000000 65535 f \n")
	for num := 1; num <= totalObjs; num++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[num])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", totalObjs+1, xrefPos)

	return buf.Bytes(), nil
}

func contentStream(lines []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "BT\n/F1 %d Tf\n%d TL\n%d %d Td\n", fontSize, leading, marginX, pageHeight-marginTop-fontSize)
	for i, line := range lines {
		if i > 0 {
			b.WriteString("T*\n")
		}
		fmt.Fprintf(&b, "(%s) Tj\n", escapeText(line))
	}
	b.WriteString("ET\n")
	return b.String()
}

// escapeText escapes PDF string delimiters and drops characters outside the
// WinAnsi range. The font declares /WinAnsiEncoding, so Latin-1 characters
// must land in the stream as single bytes, never as UTF-8 sequences.
func escapeText(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\', '(', ')':
			b.WriteByte('\\')
			b.WriteByte(byte(r))
		case '\t':
			b.WriteString("    ")
		case '\r', '\n':
			b.WriteByte(' ')
		default:
			if r >= 32 && r < 256 {
				b.WriteByte(byte(r))
			} else {
				b.WriteByte('?')
			}
		}
	}
	return b.String()
}

func wrapText(text string, width int) []string {
	var out []string
	for _, paragraph := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		paragraph = strings.TrimRight(paragraph, " ")
		if paragraph == "" {
			out = append(out, "")
			continue
		}
		line := ""
		lineLen := 0
		for _, word := range strings.Fields(paragraph) {
			// Widths count runes, not bytes, so multi-byte characters
			// are never split mid-sequence.
			runes := []rune(word)
			for len(runes) > width {
				if line != "" {
					out = append(out, line)
					line, lineLen = "", 0
				}
				out = append(out, string(runes[:width]))
				runes = runes[width:]
			}
			word = string(runes)
			switch {
			case line == "":
				line, lineLen = word, len(runes)
			case lineLen+1+len(runes) <= width:
				line += " " + word
				lineLen += 1 + len(runes)
			default:
				out = append(out, line)
				line, lineLen = word, len(runes)
			}
		}
		if line != "" {
			out = append(out, line)
		}
	}
	// Trim trailing blank lines so an all-whitespace input still yields one page.
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

func paginate(lines []string, perPage int) [][]string {
	if perPage <= 0 {
		perPage = 1
	}
	var pages [][]string
	for start := 0; start < len(lines); start += perPage {
		end := start + perPage
		if end > len(lines) {
			end = len(lines)
		}
		pages = append(pages, lines[start:end])
	}
	if len(pages) == 0 {
		pages = [][]string{{""}}
	}
	return pages
}
