package ledger

import (
	"cmp"
	"context"
	"errors"
	"iter"
	"log/slog"
	"slices"
	"sync"
	"time"
)

// Store persists the full record set. Load returns records in append order;
// a store that does not exist yet loads as an empty set. Save replaces the
// persisted set wholesale.
type Store interface {
	Load(ctx context.Context) ([]Record, error)
	Save(ctx context.Context, records []Record) error
	Path() string
}

// Exporter materializes the export projection (the unloaded records) as a
// standalone artifact, replacing any previous artifact.
type Exporter interface {
	Export(ctx context.Context, unloaded []Record) error
	Path() string
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the wall clock (tests use a fake clock).
func WithClock(c Clock) Option {
	return func(l *Ledger) { l.clock = c }
}

// WithIDGenerator overrides record ID generation.
func WithIDGenerator(g IDGenerator) Option {
	return func(l *Ledger) { l.ids = g }
}

// WithExporter sets the export projection writer. Without one, unloads
// still persist but no artifact is produced.
func WithExporter(e Exporter) Option {
	return func(l *Ledger) { l.exporter = e }
}

// WithOvens restricts OvenNumber to the given set.
func WithOvens(ovens []string) Option {
	return func(l *Ledger) { l.ovens = slices.Clone(ovens) }
}

// WithLogger sets the logger used for operation traces.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// Ledger is the authoritative, append-mostly set of cylinder records.
//
// Thread-safety: all methods are safe for concurrent use. Operations are
// serialized so each add or unload completes (validate, mutate, persist,
// export) before the next one starts.
type Ledger struct {
	mu       sync.Mutex
	records  []Record
	index    map[string]int
	store    Store
	exporter Exporter
	clock    Clock
	ids      IDGenerator
	ovens    []string
	logger   *slog.Logger
}

// Load reads the persisted record set from st and returns a Ledger owning it.
//
// Records persisted without an ID (legacy tabular files) are assigned one
// and written back immediately so the IDs stay stable across processes.
// Returns *StorageReadError if the store is malformed.
func Load(ctx context.Context, st Store, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		store:  st,
		clock:  SystemClock{},
		ids:    UUIDv7Generator{},
		ovens:  slices.Clone(DefaultOvens),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}

	records, err := st.Load(ctx)
	if err != nil {
		return nil, &StorageReadError{Path: st.Path(), Err: err}
	}

	assigned := 0
	l.records = make([]Record, 0, len(records))
	l.index = make(map[string]int, len(records))
	for _, r := range records {
		if r.ID == "" {
			r.ID = l.ids.Generate()
			assigned++
		}
		if _, dup := l.index[r.ID]; dup {
			return nil, &StorageReadError{Path: st.Path(), Err: errors.New("duplicate record id " + r.ID)}
		}
		l.index[r.ID] = len(l.records)
		l.records = append(l.records, r.clone())
	}

	if assigned > 0 {
		l.logger.Info("assigned ids to legacy records", "count", assigned, "path", st.Path())
		if err := l.save(ctx); err != nil {
			l.logger.Warn("could not persist assigned ids", "error", err)
		}
	}

	l.logger.Debug("ledger loaded", "records", len(l.records), "path", st.Path())
	return l, nil
}

// Ovens returns the configured oven set.
func (l *Ledger) Ovens() []string {
	return slices.Clone(l.ovens)
}

// AddCylinder validates c and appends a new in-oven record stamped with the
// current time.
//
// Returns *ValidationError naming every invalid field (no mutation). When
// the record is appended but cannot be persisted, the record is returned
// together with a *StorageWriteError.
func (l *Ledger) AddCylinder(ctx context.Context, c NewCylinder) (Record, error) {
	c = c.normalize()
	if verr := validate(c, l.ovens); verr != nil {
		return Record{}, verr
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	rec := Record{
		ID:                l.ids.Generate(),
		OrderNumber:       c.OrderNumber,
		CurrentID:         c.CurrentID,
		NeededID:          c.NeededID,
		OvenNumber:        c.OvenNumber,
		EstimatedDuration: c.EstimatedDuration,
		Operator:          c.Operator,
		Material:          c.Material,
		Thickness:         c.Thickness,
		LoadTime:          stamp(l.clock.Now()),
	}
	l.index[rec.ID] = len(l.records)
	l.records = append(l.records, rec)

	l.logger.Info("cylinder loaded",
		"id", rec.ID,
		"order", rec.OrderNumber,
		"cylinder", rec.CurrentID,
		"oven", rec.OvenNumber,
	)

	if err := l.save(ctx); err != nil {
		return rec.clone(), err
	}
	return rec.clone(), nil
}

// UnloadCylinder marks the record with the given ID as unloaded now, persists
// the ledger and regenerates the export projection.
//
// Returns *NotFoundError for an unknown ID and *AlreadyUnloadedError when the
// record was unloaded before. Persistence and export failures are returned as
// *StorageWriteError (joined when both fail) alongside the updated record.
func (l *Ledger) UnloadCylinder(ctx context.Context, id string) (Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, ok := l.index[id]
	if !ok {
		return Record{}, &NotFoundError{ID: id}
	}
	rec := &l.records[i]
	if !rec.InOven() {
		return Record{}, &AlreadyUnloadedError{Record: rec.clone()}
	}

	now := stamp(l.clock.Now())
	if now.Before(rec.LoadTime) {
		now = rec.LoadTime
	}
	rec.UnloadTime = &now

	l.logger.Info("cylinder unloaded",
		"id", rec.ID,
		"order", rec.OrderNumber,
		"oven", rec.OvenNumber,
		"minutes", elapsedMinutes(now, rec.LoadTime),
	)

	saveErr := l.save(ctx)
	exportErr := l.export(ctx)
	return rec.clone(), errors.Join(saveErr, exportErr)
}

// Get returns the record with the given ID.
func (l *Ledger) Get(id string) (Record, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, ok := l.index[id]
	if !ok {
		return Record{}, false
	}
	return l.records[i].clone(), true
}

// Len returns the number of records ever loaded.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Records returns a copy of every record in append order.
func (l *Ledger) Records() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot()
}

// Unloaded returns the export projection: every unloaded record in append
// order.
func (l *Ledger) Unloaded() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.unloaded()
}

// InOvenSummary counts in-oven records per oven. Ovens with no in-oven
// record are omitted. Rows are ordered by OvenNumber ascending.
func (l *Ledger) InOvenSummary() []OvenCount {
	l.mu.Lock()
	records := l.snapshot()
	l.mu.Unlock()
	return summarize(records)
}

// InOvenDetail yields every in-oven record in append order, decorated with
// elapsed minutes and the overdue flag.
//
// The sequence is lazy and restartable: each iteration snapshots the ledger
// and reads the clock once when it starts, so ranging again later reflects
// records added since and the time that has passed.
func (l *Ledger) InOvenDetail() iter.Seq[InOvenItem] {
	return func(yield func(InOvenItem) bool) {
		l.mu.Lock()
		records := l.snapshot()
		l.mu.Unlock()

		now := l.clock.Now()
		for _, r := range records {
			if !r.InOven() {
				continue
			}
			if !yield(detailItem(r, now)) {
				return
			}
		}
	}
}

// ExportNow rewrites the export projection from the current ledger state.
func (l *Ledger) ExportNow(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.export(ctx)
}

// summarize counts in-oven records per oven, ordered by OvenNumber.
func summarize(records []Record) []OvenCount {
	counts := make(map[string]int)
	for _, r := range records {
		if r.InOven() {
			counts[r.OvenNumber]++
		}
	}
	summary := make([]OvenCount, 0, len(counts))
	for oven, n := range counts {
		summary = append(summary, OvenCount{OvenNumber: oven, Count: n})
	}
	slices.SortFunc(summary, func(a, b OvenCount) int {
		return cmp.Compare(a.OvenNumber, b.OvenNumber)
	})
	return summary
}

// detailItem decorates an in-oven record with its elapsed minutes at now.
func detailItem(r Record, now time.Time) InOvenItem {
	elapsed := elapsedMinutes(now, r.LoadTime)
	return InOvenItem{
		Record:         r,
		ElapsedMinutes: elapsed,
		Overdue:        elapsed > r.EstimatedDuration,
	}
}

// snapshot copies the records. Caller must hold l.mu.
func (l *Ledger) snapshot() []Record {
	out := make([]Record, len(l.records))
	for i, r := range l.records {
		out[i] = r.clone()
	}
	return out
}

// unloaded copies the unloaded records. Caller must hold l.mu.
func (l *Ledger) unloaded() []Record {
	out := []Record{}
	for _, r := range l.records {
		if !r.InOven() {
			out = append(out, r.clone())
		}
	}
	return out
}

// save persists the full record set. Caller must hold l.mu (or own l
// exclusively, as Load does).
func (l *Ledger) save(ctx context.Context) error {
	if err := l.store.Save(ctx, l.snapshot()); err != nil {
		l.logger.Error("ledger save failed", "path", l.store.Path(), "error", err)
		return &StorageWriteError{Op: OpSave, Path: l.store.Path(), Err: err}
	}
	return nil
}

// export regenerates the export artifact. Caller must hold l.mu.
func (l *Ledger) export(ctx context.Context) error {
	if l.exporter == nil {
		return nil
	}
	unloaded := l.unloaded()
	if err := l.exporter.Export(ctx, unloaded); err != nil {
		l.logger.Error("export failed", "path", l.exporter.Path(), "error", err)
		return &StorageWriteError{Op: OpExport, Path: l.exporter.Path(), Err: err}
	}
	l.logger.Debug("export written", "path", l.exporter.Path(), "rows", len(unloaded))
	return nil
}
