package codegen

import "testing"

func TestGenerateLength(t *testing.T) {
	for _, length := range []int{4, 6, 8} {
		g := New(length)
		code, err := g.Generate()
		if err != nil {
			t.Fatalf("Generate() error: %v", err)
		}
		if len(code) != length {
			t.Errorf("len(code) = %d, want %d", len(code), length)
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Errorf("non-digit %q in code %q", c, code)
			}
		}
	}
}

func TestGenerateDefaultsLength(t *testing.T) {
	g := New(0)
	code, err := g.Generate()
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if len(code) != DefaultLength {
		t.Errorf("len(code) = %d, want %d", len(code), DefaultLength)
	}
}

func TestGenerateVaries(t *testing.T) {
	g := New(6)
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		code, err := g.Generate()
		if err != nil {
			t.Fatalf("Generate() error: %v", err)
		}
		seen[code] = true
	}
	// 20 draws from a million values virtually never collide into one.
	if len(seen) < 2 {
		t.Error("Generate() returned the same code on every call")
	}
}
