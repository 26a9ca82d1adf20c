package recibos

import (
	"context"
	"fmt"
)

// Canvas is the page-drawing capability a Document is replayed onto.
type Canvas interface {
	SetFont(f Font)
	SetLineWidth(w float64)
	Text(x, y float64, s string, align Align)
	Block(x, y, width float64, s string, leading float64)
	Line(x1, y1, x2, y2 float64)
	AddPage()
	Finish(ctx context.Context) ([]byte, error)
}

// Replay draws every instruction of doc onto canvas in order and returns the
// finished artefact.
func Replay(ctx context.Context, doc Document, canvas Canvas) ([]byte, error) {
	if canvas == nil {
		return nil, fmt.Errorf("recibos: canvas required")
	}
	for i, in := range doc.Instructions {
		switch in.Kind {
		case KindFont:
			canvas.SetFont(in.Font)
		case KindLineWidth:
			canvas.SetLineWidth(in.LineWidth)
		case KindText:
			canvas.Text(in.X, in.Y, in.Text, in.Align)
		case KindBlock:
			canvas.Block(in.X, in.Y, in.Width, in.Text, in.Leading)
		case KindLine:
			canvas.Line(in.X, in.Y, in.X2, in.Y2)
		case KindPageBreak:
			canvas.AddPage()
		default:
			return nil, fmt.Errorf("recibos: instruction %d: unknown kind %q", i, in.Kind)
		}
	}
	return canvas.Finish(ctx)
}
