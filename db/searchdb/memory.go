package searchdb

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/meghashyamc/vidcat/logger"
)

// MemoryDB keeps the collection in process and evaluates predicates directly.
// It is rebuilt from the key-value store on every start.
type MemoryDB struct {
	logger logger.Logger
	mu     sync.RWMutex
	videos map[string]Video
}

func NewMemoryDB(logger logger.Logger) *MemoryDB {
	return &MemoryDB{logger: logger, videos: map[string]Video{}}
}

func (m *MemoryDB) Index(ctx context.Context, videos []Video) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, video := range videos {
		if video.ID == "" {
			m.logger.Error("could not index video without id", "title", video.Title)
			return fmt.Errorf("video has no id")
		}
		m.videos[video.ID] = video
	}
	return nil
}

func (m *MemoryDB) Delete(ctx context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		delete(m.videos, id)
	}
	return nil
}

func (m *MemoryDB) Find(ctx context.Context, filter Predicate, order Sort, skip int, limit int) ([]Video, error) {
	if err := checkWindow(skip, limit); err != nil {
		return nil, err
	}

	matches, err := m.match(ctx, filter)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return less(&matches[i], &matches[j], order)
	})

	if skip >= len(matches) {
		return []Video{}, nil
	}
	end := len(matches)
	if limit > 0 && limit < end-skip {
		end = skip + limit
	}

	return matches[skip:end], nil
}

func (m *MemoryDB) Count(ctx context.Context, filter Predicate) (int, error) {
	matches, err := m.match(ctx, filter)
	if err != nil {
		return 0, err
	}
	return len(matches), nil
}

func (m *MemoryDB) Distinct(ctx context.Context, field Field, filter Predicate) ([]string, error) {
	matches, err := m.match(ctx, filter)
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	values := []string{}
	for i := range matches {
		for _, value := range matches[i].values(field) {
			if _, ok := seen[value]; ok {
				continue
			}
			seen[value] = struct{}{}
			values = append(values, value)
		}
	}
	return values, nil
}

func (m *MemoryDB) GetDocCount(ctx context.Context) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return uint64(len(m.videos)), nil
}

func (m *MemoryDB) Close() error {
	return nil
}

func (m *MemoryDB) match(ctx context.Context, filter Predicate) ([]Video, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := make([]Video, 0, len(m.videos))
	for _, video := range m.videos {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if Matches(filter, &video) {
			matches = append(matches, video)
		}
	}
	return matches, nil
}

// Matches evaluates a predicate against a single document.
func Matches(p Predicate, video *Video) bool {
	switch p := p.(type) {
	case nil, MatchAll:
		return true
	case And:
		for _, child := range p {
			if !Matches(child, video) {
				return false
			}
		}
		return true
	case Or:
		for _, child := range p {
			if Matches(child, video) {
				return true
			}
		}
		return false
	case Contains:
		pattern := strings.ToLower(p.Pattern)
		for _, value := range video.values(p.Field) {
			if strings.Contains(strings.ToLower(value), pattern) {
				return true
			}
		}
		return false
	case Equals:
		for _, value := range video.values(p.Field) {
			if value == p.Value {
				return true
			}
		}
		return false
	case ActiveCategory:
		for _, id := range video.activeCategoryIDs() {
			if id == p.ID {
				return true
			}
		}
		return false
	case Since:
		return !video.timeValue(p.Field).Before(p.Time)
	}
	return false
}

func less(a *Video, b *Video, order Sort) bool {
	for _, key := range order {
		if key.Field == FieldID {
			if a.ID == b.ID {
				continue
			}
			if key.Descending {
				return a.ID > b.ID
			}
			return a.ID < b.ID
		}

		av, bv := a.numericValue(key.Field), b.numericValue(key.Field)
		if av == bv {
			continue
		}
		if key.Descending {
			return av > bv
		}
		return av < bv
	}
	return false
}
