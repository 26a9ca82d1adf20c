package recibos

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/atende-erp/atende/internal/extenso"
)

// ContentTypePDF is the media type of rendered receipts.
const ContentTypePDF = "application/pdf"

// sharedRenderTimeout bounds a coalesced render once it no longer follows
// the cancellation of the caller that started it.
const sharedRenderTimeout = 2 * time.Minute

// Repository loads receipts with their payment and installments.
type Repository interface {
	Get(ctx context.Context, id string) (*Receipt, error)
}

// Renderer turns a composed document into PDF bytes.
type Renderer interface {
	Render(ctx context.Context, doc Document) ([]byte, error)
}

// Store persists rendered artefacts and returns their location.
type Store interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
}

// Artifact is a rendered receipt.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
	Document    Document
}

// Stored is an artefact saved by the configured Store.
type Stored struct {
	Artifact
	Location string
}

// Service loads, composes and renders receipts.
type Service struct {
	repo     Repository
	composer *Composer
	renderer Renderer
	store    Store
	logger   *slog.Logger
	group    singleflight.Group
}

// NewService wires the receipt pipeline. The store is optional; without it
// RenderAndStore fails.
func NewService(repo Repository, composer *Composer, renderer Renderer, store Store, logger *slog.Logger) *Service {
	if composer == nil {
		composer = NewComposer(nil, nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, composer: composer, renderer: renderer, store: store, logger: logger}
}

// Compose loads the receipt and lays it out without rendering.
func (s *Service) Compose(ctx context.Context, id string) (Document, error) {
	if s.repo == nil {
		return Document{}, fmt.Errorf("recibos: repository not configured")
	}
	receipt, err := s.repo.Get(ctx, id)
	if err != nil {
		return Document{}, err
	}
	if receipt == nil {
		return Document{}, ErrNotFound
	}
	return s.ComposeReceipt(*receipt)
}

// ComposeReceipt validates r and lays it out.
func (s *Service) ComposeReceipt(r Receipt) (Document, error) {
	if err := r.Validate(); err != nil {
		return Document{}, err
	}
	doc := s.composer.Compose(r)
	s.inspect(r, doc)
	return doc, nil
}

// Render produces the PDF of a stored receipt. Concurrent requests for the
// same id share one render; a caller that gives up does not abort it for
// the others.
func (s *Service) Render(ctx context.Context, id string) (Artifact, error) {
	ch := s.group.DoChan(id, func() (interface{}, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedRenderTimeout)
		defer cancel()
		doc, err := s.Compose(shared, id)
		if err != nil {
			return nil, err
		}
		return s.render(shared, doc)
	})
	select {
	case <-ctx.Done():
		return Artifact{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Artifact{}, res.Err
		}
		return res.Val.(Artifact), nil
	}
}

// RenderReceipt renders a receipt that is not read from the repository.
func (s *Service) RenderReceipt(ctx context.Context, r Receipt) (Artifact, error) {
	doc, err := s.ComposeReceipt(r)
	if err != nil {
		return Artifact{}, err
	}
	return s.render(ctx, doc)
}

// RenderAndStore renders a stored receipt and saves it under its filename.
func (s *Service) RenderAndStore(ctx context.Context, id string) (Stored, error) {
	if s.store == nil {
		return Stored{}, fmt.Errorf("recibos: store not configured")
	}
	artifact, err := s.Render(ctx, id)
	if err != nil {
		return Stored{}, err
	}
	location, err := s.store.Save(ctx, artifact.Filename, artifact.Data)
	if err != nil {
		return Stored{}, fmt.Errorf("recibos: store %s: %w", artifact.Filename, err)
	}
	s.logger.Info("receipt stored", slog.String("recibo_id", id), slog.String("location", location))
	return Stored{Artifact: artifact, Location: location}, nil
}

func (s *Service) render(ctx context.Context, doc Document) (Artifact, error) {
	if s.renderer == nil {
		return Artifact{}, fmt.Errorf("recibos: renderer not configured")
	}
	data, err := s.renderer.Render(ctx, doc)
	if err != nil {
		return Artifact{}, fmt.Errorf("recibos: render %s: %w", doc.Filename, err)
	}
	return Artifact{Filename: doc.Filename, ContentType: ContentTypePDF, Data: data, Document: doc}, nil
}

// inspect logs amounts the converter cannot spell and installment plans that
// do not add up to the printed total.
func (s *Service) inspect(r Receipt, doc Document) {
	if !extenso.InRange(doc.Amount.Value) {
		s.logger.Warn("receipt amount outside words range",
			slog.String("recibo_id", r.ID),
			slog.String("numero", r.Numero),
			slog.String("valor", doc.Amount.Value.String()))
	}
	if doc.Installments.Parcelado() {
		if sum := doc.Installments.Sum(); !sum.Equal(doc.Amount.Value) {
			s.logger.Warn("installments do not match receipt total",
				slog.String("recibo_id", r.ID),
				slog.String("total", doc.Amount.Value.String()),
				slog.String("installments", sum.String()))
		}
	}
}

// IsNotFound reports whether err means the receipt does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
