package devserver

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/SaiNivedh26/Ignite-Chatbot/internal/evaluator"
)

const (
	pdfLineWidth = 90
	pdfMaxLines  = 48
	pdfEntryMax  = 400
)

// SummaryLines condenses history into printable lines.
func SummaryLines(history []evaluator.HistoryEntry) []string {
	var lines []string
	for _, e := range history {
		speaker := "Reviewer"
		if e.Role == evaluator.RoleUser {
			speaker = "You"
		}
		text := plainText(e.Content)
		if len([]rune(text)) > pdfEntryMax {
			text = string([]rune(text)[:pdfEntryMax]) + "..."
		}
		lines = append(lines, wrap(speaker+": "+text, pdfLineWidth)...)
		lines = append(lines, "")
	}
	if len(lines) > pdfMaxLines {
		lines = append(lines[:pdfMaxLines-1], "...")
	}
	return lines
}

// RenderPDF produces a single-page PDF 1.4 document of title and lines in
// Helvetica.
func RenderPDF(title string, lines []string) []byte {
	var content bytes.Buffer
	content.WriteString("BT\n/F1 16 Tf\n50 790 Td\n")
	fmt.Fprintf(&content, "(%s) Tj\n", pdfEscape(title))
	content.WriteString("/F1 10 Tf\n14 TL\nT*\n")
	for _, l := range lines {
		fmt.Fprintf(&content, "(%s) '\n", pdfEscape(l))
	}
	content.WriteString("ET\n")

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 842] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", content.Len(), content.String()),
	}

	var out bytes.Buffer
	out.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = out.Len()
		fmt.Fprintf(&out, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&out, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return out.Bytes()
}

// pdfEscape escapes string delimiters and replaces anything outside
// printable ASCII, which the standard Helvetica encoding cannot show.
func pdfEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '\\' || r == '(' || r == ')':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r < 0x20 || r > 0x7e:
			b.WriteByte('?')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// plainText flattens the markdown the service emits.
func plainText(s string) string {
	s = strings.NewReplacer("**", "", "__", "", "_", "", "`", "", "#", "").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

func wrap(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}
	var (
		lines []string
		cur   strings.Builder
	)
	for _, w := range words {
		if cur.Len() > 0 && cur.Len()+1+len(w) > width {
			lines = append(lines, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(w)
	}
	return append(lines, cur.String())
}
