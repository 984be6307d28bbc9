package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/meghashyamc/vidcat/config"
	"github.com/meghashyamc/vidcat/db/kvdb"
	"github.com/meghashyamc/vidcat/db/searchdb"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, assert *require.Assertions, numOfVideos int) *kvdb.BoltDB {
	t.Setenv("KVDB_PATH", filepath.Join(t.TempDir(), "index.db"))
	cfg, err := config.Load("test")
	assert.NoError(err)

	store, err := kvdb.New(newTestLogger(), cfg)
	assert.NoError(err)
	t.Cleanup(func() { store.Close() })

	for i := 0; i < numOfVideos; i++ {
		video := searchdb.Video{ID: fmt.Sprintf("video-%04d", i), Title: fmt.Sprintf("Video %d", i), Description: "test"}
		data, err := json.Marshal(video)
		assert.NoError(err)
		assert.NoError(store.Set(kvdb.VideosBucket, video.ID, string(data)))
	}
	return store
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// countingIndexer records batch sizes and can be made to fail.
type countingIndexer struct {
	*searchdb.MemoryDB
	mu      sync.Mutex
	batches []int
	fail    bool
}

func (c *countingIndexer) Index(ctx context.Context, videos []searchdb.Video) error {
	c.mu.Lock()
	c.batches = append(c.batches, len(videos))
	fail := c.fail
	c.mu.Unlock()

	if fail {
		return errors.New("index unavailable")
	}
	return c.MemoryDB.Index(ctx, videos)
}

func TestRebuild(t *testing.T) {
	type testCase struct {
		name        string
		numOfVideos int
	}

	testCases := []testCase{
		{name: "Empty", numOfVideos: 0},
		{name: "SingleBatch", numOfVideos: 7},
		{name: "ManyBatches", numOfVideos: 3*searchdb.IndexingBatchSize + 17},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := require.New(t)
			store := newTestStore(t, assert, tc.numOfVideos)
			indexer := &countingIndexer{MemoryDB: searchdb.NewMemoryDB(newTestLogger())}
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			service := New(ctx, newTestLogger(), indexer, store)
			assert.NoError(service.Rebuild(ctx, "rebuild-"+tc.name))

			count, err := indexer.GetDocCount(ctx)
			assert.NoError(err)
			assert.Equal(uint64(tc.numOfVideos), count)
			for _, size := range indexer.batches {
				assert.LessOrEqual(size, searchdb.IndexingBatchSize)
			}

			status, err := service.GetStatus("rebuild-" + tc.name)
			assert.NoError(err)
			assert.Equal(ProgressStatusComplete, status)
		})
	}
}

func TestRebuildFailure(t *testing.T) {
	assert := require.New(t)
	store := newTestStore(t, assert, 5)
	indexer := &countingIndexer{MemoryDB: searchdb.NewMemoryDB(newTestLogger()), fail: true}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	service := New(ctx, newTestLogger(), indexer, store)
	err := service.Rebuild(ctx, "failing")
	assert.Error(err)

	status, err := service.GetStatus("failing")
	assert.NoError(err)
	assert.Equal(ProgressStatusFailed, status)
}

func TestBuildInBackground(t *testing.T) {
	assert := require.New(t)
	store := newTestStore(t, assert, 250)
	indexer := &countingIndexer{MemoryDB: searchdb.NewMemoryDB(newTestLogger())}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	service := New(ctx, newTestLogger(), indexer, store)

	// the build loop may not be receiving yet right after New
	assert.Eventually(func() bool {
		return service.Build("background") == nil
	}, 5*time.Second, 10*time.Millisecond)

	assert.Eventually(func() bool {
		status, err := service.GetStatus("background")
		return err == nil && status == ProgressStatusComplete
	}, 10*time.Second, 20*time.Millisecond)

	count, err := indexer.GetDocCount(ctx)
	assert.NoError(err)
	assert.Equal(uint64(250), count)
}

func TestGetStatusUnknownRequest(t *testing.T) {
	assert := require.New(t)
	store := newTestStore(t, assert, 0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	service := New(ctx, newTestLogger(), searchdb.NewMemoryDB(newTestLogger()), store)
	_, err := service.GetStatus("unknown")
	assert.ErrorIs(err, kvdb.ErrNotFound)
}

func TestGetProgressPercentage(t *testing.T) {
	assert := require.New(t)
	type testCase struct {
		done, total, want int
	}

	testCases := []testCase{
		{done: 0, total: 10, want: 10},
		{done: 5, total: 10, want: 54},
		{done: 10, total: 10, want: 99},
		{done: 3, total: 0, want: 10},
	}

	for _, tc := range testCases {
		assert.Equal(tc.want, getProgressPercentage(tc.done, tc.total, ProgressStatusStep1, ProgressStatusComplete-1))
	}
}
