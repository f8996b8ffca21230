// Package badge renders shields-style SVG status badges, measuring text
// with real glyph widths when a font file is supplied.
package badge

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// FontMetrics measures badge text and carries the font bytes for embedding.
type FontMetrics struct {
	family string
	points float64
	raw    []byte // nil when metrics are approximate
	widths map[rune]float64
	avg    float64 // width for runes outside the measured set
}

// TextWidth returns the rendered width of s in pixels.
func (m *FontMetrics) TextWidth(s string) float64 {
	var w float64
	for _, r := range s {
		if px, ok := m.widths[r]; ok {
			w += px
		} else {
			w += m.avg
		}
	}
	return w
}

// FontData returns the raw font bytes, or nil for approximate metrics.
func (m *FontMetrics) FontData() []byte { return m.raw }

// FontName returns the font family name.
func (m *FontMetrics) FontName() string { return m.family }

// FontSize returns the point size.
func (m *FontMetrics) FontSize() float64 { return m.points }

// LoadFont parses TTF/OTF bytes and measures advances for printable ASCII
// at the given point size (72 DPI, so points equal pixels).
func LoadFont(name string, data []byte, size float64) (*FontMetrics, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing font %s: %w", name, err)
	}

	var buf sfnt.Buffer
	ppem := fixed.Int26_6(math.Round(size * 64))

	widths := make(map[rune]float64, '~'-' '+1)
	var sum float64
	for r := rune(' '); r <= '~'; r++ {
		gi, err := f.GlyphIndex(&buf, r)
		if err != nil || gi == 0 {
			continue
		}
		adv, err := f.GlyphAdvance(&buf, gi, ppem, font.HintingNone)
		if err != nil {
			continue
		}
		px := float64(adv) / 64
		widths[r] = px
		sum += px
	}

	avg := size * 0.6
	if len(widths) > 0 {
		avg = sum / float64(len(widths))
	}

	family := name
	if n, err := f.Name(&buf, sfnt.NameIDFamily); err == nil && n != "" {
		family = n
	}

	return &FontMetrics{
		family: family,
		points: size,
		raw:    data,
		widths: widths,
		avg:    avg,
	}, nil
}

// LoadFontFile loads a font from disk, naming it after the file.
func LoadFontFile(path string, size float64) (*FontMetrics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading font file %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return LoadFont(name, data, size)
}

// ApproxMetrics sizes text by a per-character average for when no font file
// is supplied. Renderers substitute their own sans-serif anyway, so this is
// close enough for badge geometry.
func ApproxMetrics(size float64) *FontMetrics {
	return &FontMetrics{
		family: "Verdana",
		points: size,
		widths: map[rune]float64{},
		avg:    size * 0.6,
	}
}
