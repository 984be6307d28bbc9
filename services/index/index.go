package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/meghashyamc/vidcat/db/kvdb"
	"github.com/meghashyamc/vidcat/db/searchdb"
	"github.com/meghashyamc/vidcat/logger"
)

// Indexer represents the search database operations needed to rebuild the collection
type Indexer interface {
	Index(ctx context.Context, videos []searchdb.Video) error
	GetDocCount(ctx context.Context) (uint64, error)
}

const (
	ProgressStatusStep1    = 10
	ProgressStatusComplete = 100
	ProgressStatusFailed   = -1

	maxGoRoutinesForIndexing = 4
	maxIndexBuildingTime     = 30 * time.Minute
)

var ErrIndexingInProgress = errors.New("indexing already in progress")

type Service struct {
	logger      logger.Logger
	indexer     Indexer
	store       RecordStore
	buildIndexC chan string
}

func New(ctx context.Context, logger logger.Logger, indexer Indexer, store RecordStore) *Service {
	indexService := &Service{
		logger:      logger,
		indexer:     indexer,
		store:       store,
		buildIndexC: make(chan string),
	}

	go indexService.build(ctx)
	return indexService
}

// Build starts rebuilding the search collection from the record store in the background.
// Only one rebuild runs at a time.
func (s *Service) Build(requestID string) error {
	s.setRequestStatus(requestID, 0)

	select {
	// This leads to s.Rebuild being called
	case s.buildIndexC <- requestID:
		return nil
	default:
		s.logger.Warn("request to index while indexing is already in progress", "request_id", requestID)
		s.setRequestStatus(requestID, ProgressStatusFailed)
		return ErrIndexingInProgress
	}
}

// GetStatus retrieves the progress of a rebuild request, from 0 to 100, or -1 if it failed
func (s *Service) GetStatus(requestID string) (int, error) {
	value, err := s.store.Get(kvdb.RequestsBucket, requestID)
	if err != nil {
		return 0, fmt.Errorf("request not found: %w", err)
	}

	status, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid status value: %w", err)
	}

	return status, nil
}

func (s *Service) build(ctx context.Context) {
	for {
		select {
		case requestID := <-s.buildIndexC:
			indexTimeoutCtx, cancel := context.WithTimeout(ctx, maxIndexBuildingTime)
			if err := s.Rebuild(indexTimeoutCtx, requestID); err != nil {
				s.logger.Error("failed to rebuild index", "request_id", requestID, "err", err.Error())
			}
			cancel()
		case <-ctx.Done():
			s.logger.Info("index service stopped", "reason", ctx.Err())
			return
		}
	}
}

// Rebuild indexes every stored video into the search collection and blocks until done.
// requestID may be empty when nobody polls for progress.
func (s *Service) Rebuild(ctx context.Context, requestID string) error {
	videos, err := s.loadVideos()
	if err != nil {
		s.setRequestStatus(requestID, ProgressStatusFailed)
		return err
	}

	s.setRequestStatus(requestID, ProgressStatusStep1)
	s.logger.Info("rebuilding search index", "request_id", requestID, "videos", len(videos))

	if len(videos) == 0 {
		s.setRequestStatus(requestID, ProgressStatusComplete)
		return nil
	}

	if err := s.doBuildIndex(ctx, videos, requestID); err != nil {
		s.setRequestStatus(requestID, ProgressStatusFailed)
		return err
	}

	s.setRequestStatus(requestID, ProgressStatusComplete)
	if count, err := s.indexer.GetDocCount(ctx); err == nil {
		s.logger.Info("rebuilt search index", "request_id", requestID, "documents", count)
	}
	return nil
}

func (s *Service) loadVideos() ([]searchdb.Video, error) {
	videos := []searchdb.Video{}
	err := s.store.ForEach(kvdb.VideosBucket, func(key string, value string) error {
		video := searchdb.Video{}
		if err := json.Unmarshal([]byte(value), &video); err != nil {
			s.logger.Error("skipping unreadable video record", "id", key, "err", err.Error())
			return nil
		}
		videos = append(videos, video)
		return nil
	})
	if err != nil {
		s.logger.Error("failed to read video records", "err", err.Error())
		return nil, fmt.Errorf("failed to read video records: %w", err)
	}
	return videos, nil
}

func (s *Service) doBuildIndex(ctx context.Context, videos []searchdb.Video, requestID string) error {
	numGoroutines := min(maxGoRoutinesForIndexing, (len(videos)+searchdb.IndexingBatchSize-1)/searchdb.IndexingBatchSize)
	videosPerGoroutine := (len(videos) + numGoroutines - 1) / numGoroutines

	indexCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		indexed  int
		firstErr error
	)

	s.logger.Info("starting parallel indexing", "goroutines", numGoroutines, "videos_per_goroutine", videosPerGoroutine)

	for i := 0; i < numGoroutines; i++ {
		start := i * videosPerGoroutine
		if start >= len(videos) {
			break
		}
		end := min(start+videosPerGoroutine, len(videos))

		wg.Add(1)
		go func(portion []searchdb.Video, goroutineID int) {
			defer wg.Done()
			for batchStart := 0; batchStart < len(portion); batchStart += searchdb.IndexingBatchSize {
				if indexCtx.Err() != nil {
					return
				}
				batch := portion[batchStart:min(batchStart+searchdb.IndexingBatchSize, len(portion))]

				if err := s.indexer.Index(indexCtx, batch); err != nil {
					s.logger.Error("failed to index batch", "goroutine_id", goroutineID, "err", err.Error())
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					cancel()
					return
				}

				mu.Lock()
				indexed += len(batch)
				s.setRequestStatus(requestID, getProgressPercentage(indexed, len(videos), ProgressStatusStep1, ProgressStatusComplete-1))
				mu.Unlock()
			}
		}(videos[start:end], i)
	}

	wg.Wait()

	if firstErr != nil {
		return fmt.Errorf("failed to index videos: %w", firstErr)
	}
	if err := ctx.Err(); err != nil {
		s.logger.Error("indexing cancelled", "request_id", requestID, "err", err.Error())
		return err
	}
	return nil
}

func (s *Service) setRequestStatus(requestID string, status int) {
	if requestID == "" {
		return
	}
	if err := s.store.Set(kvdb.RequestsBucket, requestID, strconv.Itoa(status)); err != nil {
		s.logger.Error("failed to update request status", "request_id", requestID, "progress", status, "err", err.Error())
	}
}

func getProgressPercentage(done int, total int, initial int, final int) int {
	if done == 0 || total == 0 {
		return initial
	}

	if done >= total {
		return final
	}

	// Calculate the percentage between initial and final
	progress := float64(done) / float64(total)
	result := float64(initial) + progress*float64(final-initial)

	return int(result)
}
