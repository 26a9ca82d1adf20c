package recibos

import (
	"strings"
	"unicode/utf8"
)

// Kind identifies a draw instruction.
type Kind string

const (
	KindFont      Kind = "font"
	KindLineWidth Kind = "line_width"
	KindText      Kind = "text"
	KindBlock     Kind = "block"
	KindLine      Kind = "line"
	KindPageBreak Kind = "page_break"
)

// Style is a font style of the Helvetica family.
type Style string

const (
	StyleNormal Style = "normal"
	StyleBold   Style = "bold"
	StyleItalic Style = "italic"
)

// Align is the horizontal anchor of a text instruction.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Font is a size in points plus a style.
type Font struct {
	Size  float64 `json:"size"`
	Style Style   `json:"style"`
}

// Instruction is one immutable draw step. Coordinates are millimetres from
// the top-left corner of the current page; Y is the text baseline.
type Instruction struct {
	Kind      Kind    `json:"kind"`
	Font      Font    `json:"font,omitzero"`
	X         float64 `json:"x,omitempty"`
	Y         float64 `json:"y,omitempty"`
	X2        float64 `json:"x2,omitempty"`
	Y2        float64 `json:"y2,omitempty"`
	Width     float64 `json:"width,omitempty"`
	Leading   float64 `json:"leading,omitempty"`
	Align     Align   `json:"align,omitempty"`
	Text      string  `json:"text,omitempty"`
	LineWidth float64 `json:"line_width,omitempty"`
}

// PageSize is the page geometry in millimetres.
type PageSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// A4 is the default page.
var A4 = PageSize{Width: 210, Height: 297}

// Document is the composed receipt: the ordered instructions plus the facts
// they were derived from.
type Document struct {
	Filename     string                `json:"filename"`
	Variant      Variant               `json:"variant"`
	Page         PageSize              `json:"page"`
	Amount       AmountResolution      `json:"amount"`
	Installments InstallmentResolution `json:"installments"`
	Instructions []Instruction         `json:"instructions"`
}

// Texts returns the text of every text and block instruction in order.
func (d Document) Texts() []string {
	out := make([]string, 0, len(d.Instructions))
	for _, in := range d.Instructions {
		if in.Kind == KindText || in.Kind == KindBlock {
			out = append(out, in.Text)
		}
	}
	return out
}

// Contains reports whether any text instruction contains substr.
func (d Document) Contains(substr string) bool {
	for _, text := range d.Texts() {
		if strings.Contains(text, substr) {
			return true
		}
	}
	return false
}

// Count returns the number of instructions of the given kind.
func (d Document) Count(kind Kind) int {
	n := 0
	for _, in := range d.Instructions {
		if in.Kind == kind {
			n++
		}
	}
	return n
}

// Pages returns the number of pages the document spans.
func (d Document) Pages() int {
	return d.Count(KindPageBreak) + 1
}

// Wrapper is the width-aware text wrapping capability of the drawing backend.
// The composer only asks how many lines a text occupies.
type Wrapper interface {
	LineCount(text string, font Font, width float64) int
}

// EstimateWrapper approximates Helvetica metrics with an average glyph width
// of half the font size. It is used when no backend measurer is configured.
type EstimateWrapper struct{}

// LineCount implements Wrapper.
func (EstimateWrapper) LineCount(text string, font Font, width float64) int {
	size := font.Size
	if size <= 0 {
		size = 12
	}
	// 1pt = 0.3528mm
	glyph := size * 0.5 * 0.3528
	perLine := int(width / glyph)
	if perLine < 1 {
		perLine = 1
	}
	lines := 0
	for _, paragraph := range strings.Split(text, "\n") {
		lines += wrapCount(paragraph, perLine)
	}
	return lines
}

func wrapCount(paragraph string, perLine int) int {
	words := strings.Fields(paragraph)
	if len(words) == 0 {
		return 1
	}
	lines, current := 1, 0
	for _, w := range words {
		n := utf8.RuneCountInString(w)
		switch {
		case current == 0:
			current = n
		case current+1+n <= perLine:
			current += 1 + n
		default:
			lines++
			current = n
		}
		for current > perLine {
			lines++
			current -= perLine
		}
	}
	return lines
}

// builder accumulates instructions for a single document.
type builder struct {
	page PageSize
	wrap Wrapper
	font Font
	out  []Instruction
}

func newBuilder(page PageSize, wrap Wrapper) *builder {
	if wrap == nil {
		wrap = EstimateWrapper{}
	}
	return &builder{page: page, wrap: wrap, out: make([]Instruction, 0, 96)}
}

func (b *builder) setFont(size float64, style Style) {
	b.font = Font{Size: size, Style: style}
	b.out = append(b.out, Instruction{Kind: KindFont, Font: b.font})
}

func (b *builder) lineWidth(w float64) {
	b.out = append(b.out, Instruction{Kind: KindLineWidth, LineWidth: w})
}

func (b *builder) text(x, y float64, s string, align Align) {
	b.out = append(b.out, Instruction{Kind: KindText, X: x, Y: y, Text: s, Align: align})
}

// block emits wrapped text and returns the number of lines it occupies.
func (b *builder) block(x, y, width float64, s string, leading float64) int {
	b.out = append(b.out, Instruction{Kind: KindBlock, X: x, Y: y, Width: width, Text: s, Leading: leading})
	n := b.wrap.LineCount(s, b.font, width)
	if n < 1 {
		n = 1
	}
	return n
}

func (b *builder) line(x1, y1, x2, y2 float64) {
	b.out = append(b.out, Instruction{Kind: KindLine, X: x1, Y: y1, X2: x2, Y2: y2})
}

func (b *builder) pageBreak() {
	b.out = append(b.out, Instruction{Kind: KindPageBreak})
}

func (b *builder) instructions() []Instruction {
	out := make([]Instruction, len(b.out))
	copy(out, b.out)
	return out
}
