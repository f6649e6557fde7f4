package extract

import (
	"errors"
	"testing"
)

func TestKindFromFileName(t *testing.T) {
	tests := []struct {
		name string
		want Kind
	}{
		{"case.pdf", KindPDF},
		{"Case.PDF", KindPDF},
		{"case.docx", KindDOCX},
		{"case.doc", KindDOC},
		{"case.txt", ""},
		{"case", ""},
		{"archive.pdf.zip", ""},
	}

	for _, tt := range tests {
		if got := KindFromFileName(tt.name); got != tt.want {
			t.Errorf("KindFromFileName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestTextUnsupportedKind(t *testing.T) {
	e := NewExtractor()
	_, err := e.Text([]byte("data"), Kind("txt"))

	var unsupported *ErrUnsupportedKind
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected ErrUnsupportedKind, got %v", err)
	}
	if unsupported.Kind != "txt" {
		t.Errorf("unsupported.Kind = %q", unsupported.Kind)
	}
}

func TestTextInvalidPDF(t *testing.T) {
	e := NewExtractor()
	if _, err := e.Text([]byte("not a pdf"), KindPDF); err == nil {
		t.Fatal("expected error for invalid PDF bytes")
	}
}

func TestTextInvalidDocx(t *testing.T) {
	e := NewExtractor()
	if _, err := e.Text([]byte("not a zip"), KindDOCX); err == nil {
		t.Fatal("expected error for invalid DOCX bytes")
	}
}
