package captcha

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// Alphabet leaves out characters that are easy to confuse (0/O, 1/I/L).
const Alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const (
	Length = 4
	width  = 100
	height = 40
	noise  = 3
)

var palette = []string{"#1677ff", "#13c2c2", "#52c41a", "#fa8c16", "#eb2f96", "#722ed1"}

func randInt(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}

// Code returns a random code of Length characters from Alphabet.
func Code() (string, error) {
	var b strings.Builder
	for i := 0; i < Length; i++ {
		idx, err := randInt(len(Alphabet))
		if err != nil {
			return "", fmt.Errorf("captcha code: %w", err)
		}
		b.WriteByte(Alphabet[idx])
	}
	return b.String(), nil
}

// SVG draws code with per-glyph rotation and a few noise lines.
func SVG(code string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0,0,%d,%d">`, width, height, width, height)
	fmt.Fprintf(&b, `<rect width="100%%" height="100%%" fill="#f0f2f5"/>`)

	for i := 0; i < noise; i++ {
		var p [5]int
		for j, n := range []int{width, height, width, height, len(palette)} {
			v, err := randInt(n)
			if err != nil {
				return "", err
			}
			p[j] = v
		}
		fmt.Fprintf(&b, `<path d="M%d %d L%d %d" stroke="%s" fill="none"/>`, p[0], p[1], p[2], p[3], palette[p[4]])
	}

	step := width / (len(code) + 1)
	for i, ch := range code {
		rot, err := randInt(50)
		if err != nil {
			return "", err
		}
		col, err := randInt(len(palette))
		if err != nil {
			return "", err
		}
		x := step * (i + 1)
		y := height/2 + 8
		fmt.Fprintf(&b, `<text x="%d" y="%d" fill="%s" font-size="24" font-family="monospace" text-anchor="middle" transform="rotate(%d %d %d)">%c</text>`,
			x, y, palette[col], rot-25, x, y, ch)
	}

	b.WriteString(`</svg>`)
	return b.String(), nil
}
