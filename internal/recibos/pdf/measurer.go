package pdf

import (
	"sync"

	"github.com/go-pdf/fpdf"

	"github.com/atende-erp/atende/internal/recibos"
)

// Measurer answers line counts with the same metrics and wrapping rules the
// Canvas uses when drawing blocks.
type Measurer struct {
	mu  sync.Mutex
	doc *fpdf.Fpdf
	tr  func(string) string
}

// NewMeasurer allocates a metrics-only fpdf document.
func NewMeasurer() *Measurer {
	doc := newDoc(recibos.A4)
	return &Measurer{doc: doc, tr: doc.UnicodeTranslatorFromDescriptor("")}
}

// LineCount implements recibos.Wrapper.
func (m *Measurer) LineCount(text string, font recibos.Font, width float64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	size := font.Size
	if size <= 0 {
		size = 12
	}
	m.doc.SetFont(family, styleCode(font.Style), size)
	return len(wrap(m.doc, m.tr(text), width))
}
