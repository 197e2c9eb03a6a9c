package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescriptionSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical ignoring case", "ACME Invoice", "acme invoice", 1},
		{"subset", "ACME INVOICE", "Acme Invoice Payment", 2.0 / 3.0},
		{"disjoint", "rent", "groceries", 0},
		{"both empty", "", "", 0},
		{"one empty", "rent", "  ", 0},
		{"repeated words count once", "pay pay pay", "pay", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DescriptionSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}
