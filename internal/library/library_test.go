package library

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaenox/chronex/internal/models"
	"github.com/xaenox/chronex/internal/storage"
	"go.uber.org/zap"
)

type failingStorage struct {
	loadErr error
	saves   int
}

func (f *failingStorage) LoadLibrary(context.Context) (*models.LibraryRecord, error) {
	return nil, f.loadErr
}

func (f *failingStorage) SaveLibrary(context.Context, *models.LibraryRecord) error {
	f.saves++
	return errors.New("disk full")
}

func (f *failingStorage) Close() error { return nil }

func openMemory(t *testing.T) (*Library, *storage.MemoryStorage) {
	t.Helper()
	store := storage.NewMemoryStorage()
	return Open(context.Background(), store, zap.NewNop()), store
}

func TestOpen_FreshDocumentIsSaved(t *testing.T) {
	lib, store := openMemory(t)

	saved, err := store.LoadLibrary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultPrimaryCreator, saved.PrimaryCreator)

	info := lib.Info()
	assert.Equal(t, DefaultSystem, info.System)
	assert.Zero(t, info.TotalQueries)
	assert.Zero(t, info.StoredItems)
}

func TestOpen_LoadsExistingFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "creator_library.json")

	first := Open(ctx, storage.NewFileStorage(path), zap.NewNop())
	first.Record(ctx, "who built you", "creator")
	first.Put(ctx, "favorite", "go")

	second := Open(ctx, storage.NewFileStorage(path), zap.NewNop())
	assert.Equal(t, 1, second.TotalQueries())
	got, ok := second.Get("favorite")
	require.True(t, ok)
	assert.Equal(t, "go", got.Value)
}

func TestOpen_UnreadableFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creator_library.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o600))

	lib := Open(context.Background(), storage.NewFileStorage(path), zap.NewNop())

	assert.Equal(t, DefaultPrimaryCreator, lib.Info().PrimaryCreator)
}

func TestSaveFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	store := &failingStorage{loadErr: storage.ErrNotFound}
	lib := Open(ctx, store, zap.NewNop())

	lib.Record(ctx, "q", "general")
	assert.Equal(t, 1, lib.Put(ctx, "k", "v"))

	assert.Equal(t, 1, lib.TotalQueries())
	assert.Equal(t, 3, store.saves)
}

func TestPutExportRoundTrip(t *testing.T) {
	ctx := context.Background()
	lib, _ := openMemory(t)

	value := map[string]any{"nested": []any{"a", float64(1)}}
	lib.Put(ctx, "config", value)

	exported := lib.Export()
	require.Contains(t, exported.StoredInfo, "config")
	assert.Equal(t, value, exported.StoredInfo["config"].Value)

	exported.StoredInfo["config"] = models.StoredValue{Value: "mutated"}
	got, _ := lib.Get("config")
	assert.Equal(t, value, got.Value)
}

func TestRecentHistory(t *testing.T) {
	ctx := context.Background()
	lib, _ := openMemory(t)

	assert.Empty(t, lib.RecentHistory(10))

	for i := 0; i < 5; i++ {
		lib.Record(ctx, fmt.Sprintf("q%d", i), "general")
	}

	assert.Empty(t, lib.RecentHistory(0))
	assert.Empty(t, lib.RecentHistory(-3))

	last2 := lib.RecentHistory(2)
	require.Len(t, last2, 2)
	assert.Equal(t, "q3", last2[0].Query)
	assert.Equal(t, "q4", last2[1].Query)

	all := lib.RecentHistory(50)
	require.Len(t, all, 5)
	for i, entry := range all {
		assert.Equal(t, fmt.Sprintf("q%d", i), entry.Query)
		assert.NotEmpty(t, entry.ID)
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	lib, store := openMemory(t)
	lib.Record(ctx, "q", "status")
	lib.Put(ctx, "keep", true)

	lib.Clear(ctx)

	assert.Zero(t, lib.TotalQueries())
	assert.Len(t, lib.All(), 1)
	saved, err := store.LoadLibrary(ctx)
	require.NoError(t, err)
	assert.Empty(t, saved.QueryHistory)
}

func TestTimestampsUseClock(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	lib := Open(ctx, storage.NewMemoryStorage(), zap.NewNop(), WithClock(func() time.Time { return at }))

	lib.Put(ctx, "k", "v")

	got, _ := lib.Get("k")
	assert.Equal(t, "2026-05-06T07:08:09Z", got.Timestamp)
	assert.Equal(t, "2026-05-06T07:08:09Z", lib.Info().CreatedDate)
}

func TestConcurrentMutations(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "creator_library.json")
	lib := Open(ctx, storage.NewFileStorage(path), zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			lib.Record(ctx, fmt.Sprintf("q%d", i), "general")
			lib.Put(ctx, fmt.Sprintf("k%d", i), i)
		}(i)
	}
	wg.Wait()

	reloaded := Open(ctx, storage.NewFileStorage(path), zap.NewNop())
	assert.Equal(t, 20, reloaded.TotalQueries())
	assert.Len(t, reloaded.All(), 20)
}
