// Package codegen produces one-time numeric verification codes.
package codegen

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const DefaultLength = 6

type Generator struct {
	length int
}

func New(length int) *Generator {
	if length <= 0 {
		length = DefaultLength
	}
	return &Generator{length: length}
}

// Generate returns a fresh code of g.length digits drawn uniformly from 0-9
// with repetition. Every call, including resends, produces an independent
// value.
func (g *Generator) Generate() (string, error) {
	var sb strings.Builder
	sb.Grow(g.length)
	for i := 0; i < g.length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("generate verification code: %w", err)
		}
		sb.WriteByte(byte('0' + n.Int64()))
	}
	return sb.String(), nil
}

func (g *Generator) Length() int {
	return g.length
}
