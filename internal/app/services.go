package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/atende-erp/atende/internal/historico"
	"github.com/atende-erp/atende/internal/recibos"
	"github.com/atende-erp/atende/internal/recibos/htmlcanvas"
	"github.com/atende-erp/atende/internal/recibos/pdf"
	"github.com/atende-erp/atende/internal/storage"
	"github.com/atende-erp/atende/report"
)

// NewComposer builds the receipt composer from configuration. Line counts
// always come from the fpdf metrics so both renderers share one layout.
func NewComposer(cfg *Config) *recibos.Composer {
	composer := recibos.NewComposer(pdf.NewMeasurer(), cfg.Location())
	if cfg.ReceiptDefaultCity != "" {
		composer.DefaultCity = cfg.ReceiptDefaultCity
	}
	return composer
}

// NewRenderer selects the receipt renderer named by RECEIPT_RENDERER.
func NewRenderer(cfg *Config) (recibos.Renderer, error) {
	switch cfg.ReceiptRenderer {
	case RendererGotenberg:
		renderer, err := htmlcanvas.NewRenderer(report.NewClient(cfg.GotenbergURL))
		if err != nil {
			return nil, err
		}
		return renderer, nil
	case RendererFPDF, "":
		return pdf.NewRenderer(), nil
	default:
		return nil, fmt.Errorf("unknown receipt renderer %q", cfg.ReceiptRenderer)
	}
}

// NewStore selects the artefact store named by RECEIPT_STORAGE. The returned
// close function is never nil.
func NewStore(ctx context.Context, cfg *Config) (storage.Store, func() error, error) {
	switch cfg.ReceiptStorage {
	case StorageGCS:
		store, err := storage.NewGCS(ctx, cfg.ReceiptGCSBucket, cfg.ReceiptGCSPrefix, cfg.ReceiptGCSCredentials)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case StorageLocal, "":
		return storage.NewLocal(cfg.ReceiptStorageDir), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown receipt storage %q", cfg.ReceiptStorage)
	}
}

// ReceiptService bundles the receipt pipeline with the resources it holds.
type ReceiptService struct {
	*recibos.Service
	close func() error
}

// Close releases the artefact store.
func (s *ReceiptService) Close() error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close()
}

// NewReceiptService wires repository, composer, renderer and store.
func NewReceiptService(ctx context.Context, cfg *Config, pool *pgxpool.Pool, logger *slog.Logger) (*ReceiptService, error) {
	renderer, err := NewRenderer(cfg)
	if err != nil {
		return nil, fmt.Errorf("init receipt renderer: %w", err)
	}
	store, closeStore, err := NewStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init receipt storage: %w", err)
	}
	service := recibos.NewService(recibos.NewRepository(pool), NewComposer(cfg), renderer, store, logger)
	return &ReceiptService{Service: service, close: closeStore}, nil
}

// NewHistoricoLoader wires the history repository, optionally fronted by
// the Redis name cache, and an observer for load metrics.
func NewHistoricoLoader(cfg *Config, pool *pgxpool.Pool, redisClient *redis.Client, observer historico.Observer, logger *slog.Logger) *historico.Loader {
	repo := historico.NewRepository(pool)
	opts := []historico.LoaderOption{}
	if redisClient != nil && cfg.NameCacheTTL > 0 {
		opts = append(opts, historico.WithLookup(historico.NewNameCache(redisClient, repo, cfg.NameCacheTTL, logger)))
	}
	if observer != nil {
		opts = append(opts, historico.WithObserver(observer))
	}
	return historico.NewLoader(repo, logger, opts...)
}
