package shellquote

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuotePassthrough(t *testing.T) {
	assert.Equal(t, "plain", Quote("plain"))
	assert.Equal(t, "--edition=2024", Quote("--edition=2024"))
}

func TestQuoteWrapsSpecialChars(t *testing.T) {
	cases := []string{
		`has space`,
		`has"quote`,
		`has$dollar`,
		`has'tick`,
	}
	for _, c := range cases {
		got := Quote(c)
		require.True(t, len(got) >= 2, "quoted form must be non-empty: %q", got)
		assert.Equal(t, byte('\''), got[0], "must start with a single quote: %q", got)
		assert.Equal(t, byte('\''), got[len(got)-1], "must end with a single quote: %q", got)
	}
}

func TestQuoteEscapesInteriorTicks(t *testing.T) {
	got := Quote(`it's`)
	assert.Equal(t, `'it'\''s'`, got)
	// No unescaped interior single quote: once every '\'' escape is
	// removed from the body, no single quote is left.
	body := got[1 : len(got)-1]
	assert.NotContains(t, strings.ReplaceAll(body, `'\''`, ""), "'")
}

func TestQuoteJoin(t *testing.T) {
	got := QuoteJoin([]string{"--cfg", `feature="serde"`})
	assert.Equal(t, `--cfg 'feature="serde"'`, got)
}
