// Package extract converts uploaded case documents (PDF, DOC, DOCX) into
// plain text for analysis.
package extract

import (
	"bytes"
	"fmt"
	"strings"

	docx "github.com/fumiama/go-docx"
	"github.com/ledongthuc/pdf"
)

// Kind identifies the declared document format from the chat transport.
type Kind string

const (
	KindPDF  Kind = "pdf"
	KindDOC  Kind = "doc"
	KindDOCX Kind = "docx"
)

// ErrUnsupportedKind is a validation error: the user sent a format we do
// not process.
type ErrUnsupportedKind struct {
	Kind Kind
}

func (e *ErrUnsupportedKind) Error() string {
	return fmt.Sprintf("unsupported document kind %q", e.Kind)
}

// KindFromFileName maps a file name to a Kind, or "" when unsupported.
func KindFromFileName(name string) Kind {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return KindPDF
	case strings.HasSuffix(lower, ".docx"):
		return KindDOCX
	case strings.HasSuffix(lower, ".doc"):
		return KindDOC
	default:
		return ""
	}
}

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Text extracts plain text from the document bytes according to the
// declared kind. DOC files are parsed with the DOCX reader, matching what
// the upload path accepts.
func (e *Extractor) Text(data []byte, kind Kind) (string, error) {
	switch kind {
	case KindPDF:
		return e.fromPDF(data)
	case KindDOC, KindDOCX:
		return e.fromDocx(data)
	default:
		return "", &ErrUnsupportedKind{Kind: kind}
	}
}

func (e *Extractor) fromPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	return buf.String(), nil
}

func (e *Extractor) fromDocx(data []byte) (string, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}

	var sb strings.Builder
	for _, item := range doc.Document.Body.Items {
		switch v := item.(type) {
		case *docx.Paragraph:
			sb.WriteString(v.String())
			sb.WriteString("\n")
		case *docx.Table:
			sb.WriteString(v.String())
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}
