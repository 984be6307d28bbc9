package kvdb

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/meghashyamc/vidcat/config"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T, assert *require.Assertions) *BoltDB {
	t.Setenv("KVDB_PATH", filepath.Join(t.TempDir(), "kv", "test.db"))
	cfg, err := config.Load("test")
	assert.NoError(err)

	db, err := New(slog.New(slog.NewJSONHandler(os.Stderr, nil)), cfg)
	assert.NoError(err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSetGetDelete(t *testing.T) {
	assert := require.New(t)
	db := newTestDB(t, assert)

	assert.NoError(db.Set(VideosBucket, "a", "1"))
	value, err := db.Get(VideosBucket, "a")
	assert.NoError(err)
	assert.Equal("1", value)

	_, err = db.Get(ViewsBucket, "a")
	assert.True(errors.Is(err, ErrNotFound), "buckets should not share keys")

	assert.NoError(db.Delete(VideosBucket, "a"))
	_, err = db.Get(VideosBucket, "a")
	var notFoundErr *NotFoundError
	assert.True(errors.As(err, &notFoundErr))
	assert.Equal("a", notFoundErr.Key)
}

func TestEmptyKeyIsRejected(t *testing.T) {
	assert := require.New(t)
	db := newTestDB(t, assert)

	assert.True(errors.Is(db.Set(VideosBucket, "", "x"), ErrInvalidKey))
	_, err := db.Get(VideosBucket, "")
	assert.True(errors.Is(err, ErrInvalidKey))
}

func TestUpdateIsReadModifyWrite(t *testing.T) {
	assert := require.New(t)
	db := newTestDB(t, assert)

	increment := func(value string, found bool) (string, error) {
		if !found {
			return "1", nil
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return "", err
		}
		return strconv.Itoa(n + 1), nil
	}

	for i := 0; i < 3; i++ {
		assert.NoError(db.Update(ViewsBucket, "counter", increment))
	}
	value, err := db.Get(ViewsBucket, "counter")
	assert.NoError(err)
	assert.Equal("3", value)

	failure := errors.New("boom")
	err = db.Update(ViewsBucket, "counter", func(string, bool) (string, error) { return "", failure })
	assert.ErrorIs(err, failure)
	value, err = db.Get(ViewsBucket, "counter")
	assert.NoError(err)
	assert.Equal("3", value, "failed update must not change the stored value")
}

func TestGetAllKeys(t *testing.T) {
	assert := require.New(t)
	db := newTestDB(t, assert)

	keys, err := db.GetAllKeys(VideosBucket)
	assert.NoError(err)
	assert.Empty(keys)

	assert.NoError(db.Set(VideosBucket, "b", "2"))
	assert.NoError(db.Set(VideosBucket, "a", "1"))

	keys, err = db.GetAllKeys(VideosBucket)
	assert.NoError(err)
	assert.Equal([]string{"a", "b"}, keys)
}
