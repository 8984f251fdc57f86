package captcha

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCode(t *testing.T) {
	t.Parallel()

	for i := 0; i < 50; i++ {
		code, err := Code()
		require.NoError(t, err)
		require.Len(t, code, Length)
		for _, ch := range code {
			assert.True(t, strings.ContainsRune(Alphabet, ch), "unexpected %q", ch)
		}
	}
}

func TestSVG(t *testing.T) {
	t.Parallel()

	out, err := SVG("AB3D")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.True(t, strings.HasSuffix(out, "</svg>"))
	assert.Equal(t, 4, strings.Count(out, "<text"))
	for _, ch := range []string{">A<", ">B<", ">3<", ">D<"} {
		assert.Contains(t, out, ch)
	}
}
