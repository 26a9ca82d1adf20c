package historico

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Notifier shows user-facing notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify implements Notifier.
func (n LogNotifier) Notify(ctx context.Context, note Notification) {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	level := slog.LevelInfo
	if note.Variant == VariantDestructive {
		level = slog.LevelError
	}
	logger.Log(ctx, level, note.Title, slog.String("description", note.Description))
}

// Observer records the outcome of each load.
type Observer interface {
	ObserveLoad(outcome string, records int, elapsed time.Duration)
}

// Loader fetches the history and resolves its references in one batch per
// relation. It keeps the last successfully loaded list.
type Loader struct {
	source   Source
	lookup   Lookup
	notifier Notifier
	observer Observer
	logger   *slog.Logger

	loading atomic.Int32
	mu      sync.RWMutex
	items   []Item
}

// LoaderOption customises a Loader.
type LoaderOption func(*Loader)

// WithLookup resolves names through l instead of the source, typically a
// NameCache.
func WithLookup(l Lookup) LoaderOption {
	return func(ld *Loader) {
		if l != nil {
			ld.lookup = l
		}
	}
}

// WithNotifier replaces the log notifier.
func WithNotifier(n Notifier) LoaderOption {
	return func(ld *Loader) {
		if n != nil {
			ld.notifier = n
		}
	}
}

// WithObserver records load metrics.
func WithObserver(o Observer) LoaderOption {
	return func(ld *Loader) {
		ld.observer = o
	}
}

// NewLoader constructs a Loader reading from source.
func NewLoader(source Source, logger *slog.Logger, opts ...LoaderOption) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	ld := &Loader{source: source, lookup: source, notifier: LogNotifier{Logger: logger}, logger: logger}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// Loading reports whether a load is in flight.
func (l *Loader) Loading() bool {
	return l.loading.Load() > 0
}

// Items returns a copy of the last loaded list.
func (l *Loader) Items() []Item {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Item, len(l.items))
	copy(out, l.items)
	return out
}

// SetItems replaces the stored list.
func (l *Loader) SetItems(items []Item) {
	stored := make([]Item, len(items))
	copy(stored, items)
	l.mu.Lock()
	l.items = stored
	l.mu.Unlock()
}

// Load fetches the filtered history and resolves every reference. Any
// failure notifies the user, returns an error wrapping ErrLoad and leaves
// the stored list untouched.
func (l *Loader) Load(ctx context.Context, filters Filters) (items []Item, err error) {
	l.loading.Add(1)
	start := time.Now()
	defer func() {
		l.loading.Add(-1)
		l.observe(err, len(items), time.Since(start))
	}()

	records, err := l.source.List(ctx, filters)
	if err != nil {
		return nil, l.fail(ctx, "list", err)
	}
	names, err := l.resolve(ctx, records)
	if err != nil {
		return nil, l.fail(ctx, "resolve names", err)
	}
	items = enrich(records, names)
	l.SetItems(items)
	return items, nil
}

func (l *Loader) fail(ctx context.Context, op string, err error) error {
	l.logger.Error("historico load failed", slog.String("op", op), slog.Any("error", err))
	l.notifier.Notify(ctx, LoadFailure)
	return fmt.Errorf("%w: %s: %w", ErrLoad, op, err)
}

func (l *Loader) observe(err error, records int, elapsed time.Duration) {
	if l.observer == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	l.observer.ObserveLoad(outcome, records, elapsed)
}

// resolve issues one lookup per relation concurrently.
func (l *Loader) resolve(ctx context.Context, records []Record) (map[Relation]map[uuid.UUID]string, error) {
	ids := collect(records)
	results := make([]map[uuid.UUID]string, len(Relations))
	g, gctx := errgroup.WithContext(ctx)
	for i, relation := range Relations {
		if len(ids[relation]) == 0 {
			results[i] = map[uuid.UUID]string{}
			continue
		}
		g.Go(func() error {
			names, err := l.lookup.Names(gctx, relation, ids[relation])
			if err != nil {
				return err
			}
			results[i] = names
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make(map[Relation]map[uuid.UUID]string, len(Relations))
	for i, relation := range Relations {
		out[relation] = results[i]
	}
	return out, nil
}

// collect returns the distinct ids per relation in first-seen order.
func collect(records []Record) map[Relation][]uuid.UUID {
	out := make(map[Relation][]uuid.UUID, len(Relations))
	seen := make(map[Relation]map[uuid.UUID]struct{}, len(Relations))
	add := func(relation Relation, id uuid.UUID) {
		set, ok := seen[relation]
		if !ok {
			set = map[uuid.UUID]struct{}{}
			seen[relation] = set
		}
		if _, dup := set[id]; dup {
			return
		}
		set[id] = struct{}{}
		out[relation] = append(out[relation], id)
	}
	for _, rec := range records {
		add(RelationConsultores, rec.ConsultorID)
		add(RelationServicos, rec.ServicoID)
		add(RelationClientes, rec.ClienteID)
		if rec.FormaPagamento != nil {
			add(RelationFormasPagamento, *rec.FormaPagamento)
		}
	}
	return out
}

func enrich(records []Record, names map[Relation]map[uuid.UUID]string) []Item {
	items := make([]Item, len(records))
	for i, rec := range records {
		items[i] = Item{
			Record:             rec,
			ConsultorNome:      nameOr(names[RelationConsultores], rec.ConsultorID, FallbackNotFound),
			ServicoNome:        nameOr(names[RelationServicos], rec.ServicoID, FallbackNotFound),
			ClienteNome:        nameOr(names[RelationClientes], rec.ClienteID, FallbackNotFound),
			FormaPagamentoNome: FallbackNotInformed,
		}
		if rec.FormaPagamento != nil {
			items[i].FormaPagamentoNome = nameOr(names[RelationFormasPagamento], *rec.FormaPagamento, FallbackNotInformed)
		}
	}
	return items
}

func nameOr(names map[uuid.UUID]string, id uuid.UUID, fallback string) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return fallback
}
