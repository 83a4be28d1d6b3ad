package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"botdesk/internal/domain/conversation"
)

// AnalysisDocx writes the conversation-analysis Word document: a title,
// a totals section, the busiest-hour line and the top-contacts list.
// The docx container is assembled directly; the document needs nothing
// beyond paragraphs and bold runs.
func AnalysisDocx(w io.Writer, a conversation.Analysis) error {
	var doc bytes.Buffer
	doc.WriteString(xml.Header)
	doc.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)

	writeHeading(&doc, "Análisis de conversaciones")
	writeParagraph(&doc, "Generado el "+a.GeneratedAt.Format("2006-01-02 15:04"))

	writeHeading(&doc, "Totales")
	writeParagraph(&doc, fmt.Sprintf("Conversaciones: %d", a.Conversations))
	writeParagraph(&doc, fmt.Sprintf("Mensajes totales: %d", a.TotalMessages))
	writeParagraph(&doc, fmt.Sprintf("Recibidos: %d", a.Inbound))
	writeParagraph(&doc, fmt.Sprintf("Enviados: %d", a.Outbound))

	writeHeading(&doc, "Actividad")
	writeParagraph(&doc, fmt.Sprintf("Hora con más mensajes: %02d:00", a.BusiestHour))

	writeHeading(&doc, "Contactos principales")
	if len(a.TopContacts) == 0 {
		writeParagraph(&doc, "Sin datos")
	}
	for i, c := range a.TopContacts {
		label := c.Contact
		if label == "" {
			label = c.Phone
		}
		writeParagraph(&doc, fmt.Sprintf("%d. %s — %d mensajes", i+1, label, c.Messages))
	}

	doc.WriteString(`<w:sectPr/></w:body></w:document>`)

	zw := zip.NewWriter(w)
	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/document.xml", doc.String()},
	}
	for _, part := range parts {
		f, err := zw.Create(part.name)
		if err != nil {
			return fmt.Errorf("failed to create docx part %s: %w", part.name, err)
		}
		if _, err := f.Write([]byte(part.content)); err != nil {
			return fmt.Errorf("failed to write docx part %s: %w", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize docx: %w", err)
	}
	return nil
}

func writeHeading(b *bytes.Buffer, text string) {
	b.WriteString(`<w:p><w:r><w:rPr><w:b/><w:sz w:val="28"/></w:rPr><w:t xml:space="preserve">`)
	b.WriteString(escapeXML(text))
	b.WriteString(`</w:t></w:r></w:p>`)
}

func writeParagraph(b *bytes.Buffer, text string) {
	b.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
	b.WriteString(escapeXML(text))
	b.WriteString(`</w:t></w:r></w:p>`)
}

func escapeXML(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}

const contentTypesXML = xml.Header + `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`</Types>`

const relsXML = xml.Header + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`</Relationships>`
