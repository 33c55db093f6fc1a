package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"
)

// Artifact is a rendered document ready for storage or delivery.
type Artifact struct {
	Name     string
	MIMEType string
	Data     []byte
	// Path is set once the artifact has been saved.
	Path string
}

// Sanitize replaces every rune the PDF core fonts cannot encode
// (Windows-1252) with '?'. Line structure is left untouched.
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if _, ok := charmap.Windows1252.EncodeRune(r); ok {
			return r
		}
		return '?'
	}, s)
}

// encodeCP1252 sanitizes s and converts it to the single-byte encoding the
// core fonts expect.
func encodeCP1252(s string) (string, error) {
	return charmap.Windows1252.NewEncoder().String(Sanitize(s))
}

// RenderPDF writes doc as an A4 single-font paginated document, one wrapped
// paragraph per line.
func RenderPDF(doc Document, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(doc.Name, false)
	pdf.AddPage()
	pdf.SetFont("Arial", "", 12)

	for i, line := range doc.Lines {
		text, err := encodeCP1252(line)
		if err != nil {
			return fmt.Errorf("encode %s line %d: %w", doc.Name, i, err)
		}
		pdf.MultiCell(0, 10, text, "", "", false)
		pdf.Ln(-1)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render %s: %w", doc.Name, err)
	}
	return nil
}

// Render renders doc into an in-memory artifact.
func Render(doc Document) (Artifact, error) {
	var buf bytes.Buffer
	if err := RenderPDF(doc, &buf); err != nil {
		return Artifact{}, err
	}
	return Artifact{Name: doc.Name, MIMEType: "application/pdf", Data: buf.Bytes()}, nil
}
