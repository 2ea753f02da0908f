package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeLike_NeutralizaComodines(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"café", "café"},
		{"100%", `100\%`},
		{"a_b", `a\_b`},
		{`ya\escapado`, `ya\\escapado`},
		{"%_%", `\%\_\%`},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, escapeLike(tc.in),
			"la entrada %q debe buscarse literal", tc.in)
	}
}
