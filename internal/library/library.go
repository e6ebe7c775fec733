// Package library keeps the creator library: creator metadata, a query
// log and free-form stored facts. Every mutation rewrites the whole
// document through the configured storage backend while holding the
// library lock, so writers never interleave.
package library

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xaenox/chronex/internal/metrics"
	"github.com/xaenox/chronex/internal/models"
	"github.com/xaenox/chronex/internal/storage"
	"go.uber.org/zap"
)

const (
	DefaultPrimaryCreator   = "DEMON ALEX"
	DefaultSecondaryCreator = "DEVELOPER OF NEXCHAT"
	DefaultSystem           = "Chronex AI"
	DefaultVersion          = "1.0"
)

// Info summarises the library for the creator-info endpoint.
type Info struct {
	PrimaryCreator   string `json:"primary_creator"`
	SecondaryCreator string `json:"secondary_creator"`
	System           string `json:"system"`
	Version          string `json:"version"`
	CreatedDate      string `json:"created_date"`
	TotalQueries     int    `json:"total_queries"`
	StoredItems      int    `json:"stored_items"`
}

type Library struct {
	mu      sync.Mutex
	store   storage.Storage
	record  *models.LibraryRecord
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

type Option func(*Library)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Library) { l.now = now }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Library) { l.metrics = m }
}

// Open loads the library from store. A missing document is replaced by a
// fresh default and saved at once; an unreadable one is logged and also
// replaced in memory. Open never fails.
func Open(ctx context.Context, store storage.Storage, logger *zap.Logger, opts ...Option) *Library {
	l := &Library{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}

	record, err := store.LoadLibrary(ctx)
	switch {
	case err == nil:
		l.record = record
		logger.Info("Creator library loaded",
			zap.Int("queries", len(record.QueryHistory)),
			zap.Int("stored_items", len(record.StoredInfo)))
	case errors.Is(err, storage.ErrNotFound):
		l.record = l.defaultRecord()
		l.save(ctx)
	default:
		logger.Warn("Could not load library, creating new one", zap.Error(err))
		l.record = l.defaultRecord()
		l.save(ctx)
	}
	return l
}

func (l *Library) defaultRecord() *models.LibraryRecord {
	record := &models.LibraryRecord{
		PrimaryCreator:   DefaultPrimaryCreator,
		SecondaryCreator: DefaultSecondaryCreator,
		System:           DefaultSystem,
		Version:          DefaultVersion,
		CreatedDate:      l.timestamp(),
	}
	record.Normalize()
	return record
}

// save must be called with l.mu held (or before the library is shared).
// Failures are logged; the in-memory record stays authoritative.
func (l *Library) save(ctx context.Context) {
	if err := l.store.SaveLibrary(ctx, l.record); err != nil {
		l.logger.Error("Failed to save library", zap.Error(err))
		return
	}
	l.logger.Debug("Creator library saved")
}

func (l *Library) timestamp() string {
	return l.now().Format(time.RFC3339Nano)
}

// Record appends a query to the history.
func (l *Library) Record(ctx context.Context, query, queryType string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.metrics.RecordLibraryOperation("record")
	l.record.QueryHistory = append(l.record.QueryHistory, models.QueryEntry{
		ID:        uuid.New().String(),
		Timestamp: l.timestamp(),
		Query:     query,
		Type:      queryType,
	})
	l.save(ctx)
}

// Put stores value under key and returns the number of stored items.
func (l *Library) Put(ctx context.Context, key string, value any) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.metrics.RecordLibraryOperation("store")
	l.record.StoredInfo[key] = models.StoredValue{
		Value:     value,
		Timestamp: l.timestamp(),
	}
	l.save(ctx)
	return len(l.record.StoredInfo)
}

func (l *Library) Get(key string) (models.StoredValue, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.record.StoredInfo[key]
	return v, ok
}

// All returns a copy of every stored fact.
func (l *Library) All() map[string]models.StoredValue {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string]models.StoredValue, len(l.record.StoredInfo))
	for k, v := range l.record.StoredInfo {
		out[k] = v
	}
	return out
}

// RecentHistory returns the last limit queries in chronological order.
// A limit of zero or less yields an empty slice.
func (l *Library) RecentHistory(limit int) []models.QueryEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	history := l.record.QueryHistory
	if limit <= 0 {
		return []models.QueryEntry{}
	}
	if limit > len(history) {
		limit = len(history)
	}
	return append([]models.QueryEntry{}, history[len(history)-limit:]...)
}

func (l *Library) TotalQueries() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.record.QueryHistory)
}

func (l *Library) Clear(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.metrics.RecordLibraryOperation("clear")
	l.record.QueryHistory = []models.QueryEntry{}
	l.save(ctx)
}

// Export returns a deep copy of the whole document.
func (l *Library) Export() *models.LibraryRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	clone, err := l.record.Clone()
	if err != nil {
		l.logger.Error("Failed to copy library", zap.Error(err))
		return &models.LibraryRecord{}
	}
	return clone
}

func (l *Library) Info() Info {
	l.mu.Lock()
	defer l.mu.Unlock()

	return Info{
		PrimaryCreator:   l.record.PrimaryCreator,
		SecondaryCreator: l.record.SecondaryCreator,
		System:           l.record.System,
		Version:          l.record.Version,
		CreatedDate:      l.record.CreatedDate,
		TotalQueries:     len(l.record.QueryHistory),
		StoredItems:      len(l.record.StoredInfo),
	}
}
