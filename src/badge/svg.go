package badge

import (
	"encoding/base64"
	"fmt"
	"math"
	"strings"
)

// Badge is the content of one rendered badge.
type Badge struct {
	Label string // left side text
	Value string // right side text
	Color string // right-side fill, e.g. "#4c1"
}

// Engine renders badges with a fixed font metrics source.
type Engine struct {
	metrics *FontMetrics
}

// New creates a badge engine.
func New(metrics *FontMetrics) *Engine {
	return &Engine{metrics: metrics}
}

const (
	badgeHeight = 20
	textPad     = 10 // horizontal padding per side segment
)

// Generate renders b as a shields-style flat SVG.
func (e *Engine) Generate(b Badge) string {
	lw := e.segmentWidth(b.Label)
	vw := e.segmentWidth(b.Value)
	total := lw + vw

	var css string
	if data := e.metrics.FontData(); data != nil {
		css = fmt.Sprintf(`<style type="text/css">%s</style>`, fontFaceCSS(e.metrics.FontName(), data))
	}

	family := escaper.Replace(fmt.Sprintf("'%s',Verdana,Geneva,sans-serif", e.metrics.FontName()))

	return fmt.Sprintf(svgTemplate,
		total, badgeHeight,
		css,
		total, badgeHeight,
		lw, badgeHeight,
		lw, vw, badgeHeight, escaper.Replace(b.Color),
		total, badgeHeight,
		family, e.metrics.FontSize(),
		textSegment(escaper.Replace(b.Label), lw/2),
		textSegment(escaper.Replace(b.Value), lw+vw/2),
	)
}

// svgTemplate lays out: frame, defs (font + shine gradient), rounded mask,
// the two color blocks, and the text group. Text is drawn twice, shadow
// first, which is what shields.io emits.
const svgTemplate = `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">` +
	`<defs>%s<linearGradient id="shine" x2="0" y2="100%%">` +
	`<stop offset="0" stop-color="#bbb" stop-opacity=".1"/>` +
	`<stop offset="1" stop-opacity=".1"/>` +
	`</linearGradient></defs>` +
	`<mask id="round"><rect width="%d" height="%d" rx="3" fill="#fff"/></mask>` +
	`<g mask="url(#round)">` +
	`<rect width="%d" height="%d" fill="#555"/>` +
	`<rect x="%d" width="%d" height="%d" fill="%s"/>` +
	`<rect width="%d" height="%d" fill="url(#shine)"/>` +
	`</g>` +
	`<g fill="#fff" text-anchor="middle" font-family="%s" font-size="%g">%s%s</g>` +
	`</svg>`

// textSegment emits the shadow/text pair centered at x.
func textSegment(text string, x int) string {
	return fmt.Sprintf(`<text x="%d" y="15" fill="#010101" fill-opacity=".3">%s</text><text x="%d" y="14">%s</text>`,
		x, text, x, text)
}

func (e *Engine) segmentWidth(text string) int {
	return int(math.Round(e.metrics.TextWidth(text))) + textPad
}

// StatusColor maps a pipeline status keyword to a badge hex color.
func StatusColor(status string) string {
	switch status {
	case "passing", "success":
		return "#4c1"
	case "partial", "warning":
		return "#dfb317"
	case "failing", "failed":
		return "#e05d44"
	default:
		return "#9f9f9f"
	}
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"'", "&apos;",
	`"`, "&quot;",
)

// fontFaceCSS embeds the font as a base64 data URL so the SVG is
// self-contained.
func fontFaceCSS(name string, data []byte) string {
	format, css := "ttf", "truetype"
	// "OTTO" magic marks CFF-flavored OpenType
	if len(data) >= 4 && string(data[:4]) == "OTTO" {
		format, css = "otf", "opentype"
	}
	return fmt.Sprintf(`@font-face{font-family:'%s';src:url(data:font/%s;base64,%s) format('%s')}`,
		name, format, base64.StdEncoding.EncodeToString(data), css)
}
