package searchdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/meghashyamc/vidcat/config"
	"github.com/meghashyamc/vidcat/logger"
)

const IndexingBatchSize = 100

var ErrInvalidWindow = errors.New("invalid result window")

// DB is the searchable video collection.
type DB interface {
	Index(ctx context.Context, videos []Video) error
	Delete(ctx context.Context, ids []string) error
	// Find returns at most limit documents after skipping skip of them. A limit of 0 means no limit.
	Find(ctx context.Context, filter Predicate, order Sort, skip int, limit int) ([]Video, error)
	Count(ctx context.Context, filter Predicate) (int, error)
	// Distinct returns the distinct values of field among documents matching filter, in no particular order.
	Distinct(ctx context.Context, field Field, filter Predicate) ([]string, error)
	GetDocCount(ctx context.Context) (uint64, error)
	Close() error
}

func New(ctx context.Context, logger logger.Logger, cfg *config.Config) (DB, error) {
	switch engine := cfg.GetEngine(); engine {
	case config.EngineBleve:
		return NewBleveDB(logger, cfg)
	case config.EngineMongo:
		return NewMongoDB(ctx, logger, cfg)
	case config.EngineMemory:
		return NewMemoryDB(logger), nil
	default:
		logger.Error("unknown search database engine", "engine", engine)
		return nil, fmt.Errorf("unknown search database engine: %s", engine)
	}
}

func checkWindow(skip int, limit int) error {
	if skip < 0 || limit < 0 {
		return fmt.Errorf("%w: skip %d, limit %d", ErrInvalidWindow, skip, limit)
	}
	return nil
}
