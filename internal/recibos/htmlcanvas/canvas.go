// Package htmlcanvas lays composed receipts out as absolutely positioned HTML
// and converts them to PDF through Gotenberg.
package htmlcanvas

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strconv"

	"github.com/atende-erp/atende/internal/recibos"
	"github.com/atende-erp/atende/web"
)

// PDFClient exposes the subset of the report client used by the renderer.
type PDFClient interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

type element struct {
	X, Y    float64
	Width   float64
	Leading float64
	Size    float64
	Style   recibos.Style
	Align   recibos.Align
	Text    string
	Block   bool
}

type stroke struct {
	X1, Y1, X2, Y2 float64
	Width          float64
}

type page struct {
	Texts []element
	Lines []stroke
}

type view struct {
	Title string
	Page  recibos.PageSize
	Pages []*page
}

// Canvas collects drawing calls per page and executes the document template
// on Finish.
type Canvas struct {
	tpl    *template.Template
	client PDFClient
	view   view
	font   recibos.Font
	width  float64
	html   string
}

// Template parses the embedded receipt document template.
func Template() (*template.Template, error) {
	funcMap := template.FuncMap{
		"mm":  func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) + "mm" },
		"num": func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
	}
	return template.New("document.html").Funcs(funcMap).ParseFS(web.Templates, web.ReceiptDocument)
}

func newCanvas(tpl *template.Template, client PDFClient, title string, size recibos.PageSize) *Canvas {
	return &Canvas{
		tpl:    tpl,
		client: client,
		view:   view{Title: title, Page: size, Pages: []*page{{}}},
		font:   recibos.Font{Size: 12, Style: recibos.StyleNormal},
		width:  0.2,
	}
}

func (c *Canvas) current() *page {
	return c.view.Pages[len(c.view.Pages)-1]
}

// SetFont implements recibos.Canvas.
func (c *Canvas) SetFont(f recibos.Font) {
	c.font = f
}

// SetLineWidth implements recibos.Canvas.
func (c *Canvas) SetLineWidth(w float64) {
	c.width = w
}

// Text implements recibos.Canvas.
func (c *Canvas) Text(x, y float64, s string, align recibos.Align) {
	if align == "" {
		align = recibos.AlignLeft
	}
	p := c.current()
	p.Texts = append(p.Texts, element{X: x, Y: y, Size: c.font.Size, Style: c.font.Style, Align: align, Text: s})
}

// Block implements recibos.Canvas.
func (c *Canvas) Block(x, y, width float64, s string, leading float64) {
	p := c.current()
	p.Texts = append(p.Texts, element{
		X: x, Y: y, Width: width, Leading: leading,
		Size: c.font.Size, Style: c.font.Style, Text: s, Block: true,
	})
}

// Line implements recibos.Canvas.
func (c *Canvas) Line(x1, y1, x2, y2 float64) {
	p := c.current()
	p.Lines = append(p.Lines, stroke{X1: x1, Y1: y1, X2: x2, Y2: y2, Width: c.width})
}

// AddPage implements recibos.Canvas.
func (c *Canvas) AddPage() {
	c.view.Pages = append(c.view.Pages, &page{})
}

// HTML returns the markup produced by the last Finish call.
func (c *Canvas) HTML() string {
	return c.html
}

// Finish implements recibos.Canvas.
func (c *Canvas) Finish(ctx context.Context) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := c.tpl.Execute(buf, c.view); err != nil {
		return nil, fmt.Errorf("recibos/htmlcanvas: execute template: %w", err)
	}
	c.html = buf.String()
	pdf, err := c.client.RenderHTML(ctx, c.html)
	if err != nil {
		return nil, fmt.Errorf("recibos/htmlcanvas: convert: %w", err)
	}
	return pdf, nil
}

// Renderer produces PDF bytes through Gotenberg.
type Renderer struct {
	tpl    *template.Template
	client PDFClient
}

// NewRenderer parses the document template and wires the PDF client.
func NewRenderer(client PDFClient) (*Renderer, error) {
	if client == nil {
		return nil, fmt.Errorf("recibos/htmlcanvas: pdf client required")
	}
	tpl, err := Template()
	if err != nil {
		return nil, err
	}
	return &Renderer{tpl: tpl, client: client}, nil
}

// Render replays doc onto an HTML canvas and converts it.
func (r *Renderer) Render(ctx context.Context, doc recibos.Document) ([]byte, error) {
	if r == nil || r.tpl == nil || r.client == nil {
		return nil, fmt.Errorf("recibos/htmlcanvas: renderer not initialised")
	}
	size := doc.Page
	if size.Width <= 0 || size.Height <= 0 {
		size = recibos.A4
	}
	return recibos.Replay(ctx, doc, newCanvas(r.tpl, r.client, doc.Filename, size))
}
