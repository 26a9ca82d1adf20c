// Package pdf draws composed receipts with the fpdf library.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/atende-erp/atende/internal/recibos"
)

const family = "Helvetica"

// Canvas implements recibos.Canvas on top of an fpdf document.
type Canvas struct {
	doc *fpdf.Fpdf
	tr  func(string) string
}

// NewCanvas starts a single-page document of the given size.
func NewCanvas(page recibos.PageSize) *Canvas {
	doc := newDoc(page)
	doc.AddPage()
	return &Canvas{doc: doc, tr: doc.UnicodeTranslatorFromDescriptor("")}
}

func newDoc(page recibos.PageSize) *fpdf.Fpdf {
	doc := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: page.Width, Ht: page.Height},
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.SetFont(family, "", 12)
	return doc
}

// SetFont implements recibos.Canvas.
func (c *Canvas) SetFont(f recibos.Font) {
	c.doc.SetFont(family, styleCode(f.Style), f.Size)
}

// SetLineWidth implements recibos.Canvas.
func (c *Canvas) SetLineWidth(w float64) {
	c.doc.SetLineWidth(w)
}

// Text implements recibos.Canvas.
func (c *Canvas) Text(x, y float64, s string, align recibos.Align) {
	s = c.tr(s)
	switch align {
	case recibos.AlignCenter:
		x -= c.doc.GetStringWidth(s) / 2
	case recibos.AlignRight:
		x -= c.doc.GetStringWidth(s)
	}
	c.doc.Text(x, y, s)
}

// Block implements recibos.Canvas.
func (c *Canvas) Block(x, y, width float64, s string, leading float64) {
	for i, line := range wrap(c.doc, c.tr(s), width) {
		c.doc.Text(x, y+float64(i)*leading, line)
	}
}

// Line implements recibos.Canvas.
func (c *Canvas) Line(x1, y1, x2, y2 float64) {
	c.doc.Line(x1, y1, x2, y2)
}

// AddPage implements recibos.Canvas.
func (c *Canvas) AddPage() {
	c.doc.AddPage()
}

// Finish implements recibos.Canvas.
func (c *Canvas) Finish(_ context.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("recibos/pdf: output: %w", err)
	}
	return buf.Bytes(), nil
}

// Renderer produces PDF bytes for composed documents.
type Renderer struct{}

// NewRenderer returns an fpdf based renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render replays doc onto a fresh canvas.
func (Renderer) Render(ctx context.Context, doc recibos.Document) ([]byte, error) {
	page := doc.Page
	if page.Width <= 0 || page.Height <= 0 {
		page = recibos.A4
	}
	return recibos.Replay(ctx, doc, NewCanvas(page))
}

func styleCode(s recibos.Style) string {
	switch s {
	case recibos.StyleBold:
		return "B"
	case recibos.StyleItalic:
		return "I"
	default:
		return ""
	}
}

// wrap splits translated (single byte) text into lines no wider than width
// using the current font metrics. Words wider than a line are cut.
func wrap(doc *fpdf.Fpdf, s string, width float64) []string {
	var lines []string
	for _, paragraph := range strings.Split(s, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		current := ""
		for _, word := range words {
			candidate := word
			if current != "" {
				candidate = current + " " + word
			}
			if doc.GetStringWidth(candidate) <= width {
				current = candidate
				continue
			}
			if current != "" {
				lines = append(lines, current)
			}
			current = word
			for len(current) > 1 && doc.GetStringWidth(current) > width {
				cut := fit(doc, current, width)
				lines = append(lines, current[:cut])
				current = current[cut:]
			}
		}
		lines = append(lines, current)
	}
	return lines
}

// fit returns how many leading bytes of s fit in width, at least one.
func fit(doc *fpdf.Fpdf, s string, width float64) int {
	n := 1
	for n < len(s) && doc.GetStringWidth(s[:n+1]) <= width {
		n++
	}
	return n
}
