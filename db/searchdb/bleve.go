package searchdb

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/meghashyamc/vidcat/config"
	"github.com/meghashyamc/vidcat/logger"
)

const maxFacetTerms = 1000

const (
	indexFieldTitle            = "title"
	indexFieldDescription      = "description"
	indexFieldCategoryName     = "category_name"
	indexFieldCategoryNameText = "category_name_text"
	indexFieldActiveCategoryID = "active_category_id"
	indexFieldPlatformName     = "platform_name"
	indexFieldPlatformQuality  = "platform_quality"
	indexFieldViews            = "views"
	indexFieldLikes            = "likes"
	indexFieldShares           = "shares"
	indexFieldDownloads        = "downloads"
	indexFieldCreatedAt        = "created_at"
	indexFieldUpdatedAt        = "updated_at"
	indexFieldSource           = "source"
)

// textFields hold the lowercased full value as a single keyword term, so an
// unanchored regexp over the term dictionary is a substring match.
var textFields = map[Field]string{
	FieldTitle:        indexFieldTitle,
	FieldDescription:  indexFieldDescription,
	FieldCategoryName: indexFieldCategoryNameText,
}

var keywordFields = map[Field]string{
	FieldCategoryName:    indexFieldCategoryName,
	FieldPlatformName:    indexFieldPlatformName,
	FieldPlatformQuality: indexFieldPlatformQuality,
}

var sortFields = map[Field]string{
	FieldID:        "_id",
	FieldViews:     indexFieldViews,
	FieldLikes:     indexFieldLikes,
	FieldShares:    indexFieldShares,
	FieldDownloads: indexFieldDownloads,
	FieldCreatedAt: indexFieldCreatedAt,
	FieldUpdatedAt: indexFieldUpdatedAt,
}

var dateFields = map[Field]string{
	FieldCreatedAt: indexFieldCreatedAt,
	FieldUpdatedAt: indexFieldUpdatedAt,
}

// Line breaks are swapped for their visible control pictures, which "." matches.
var lineBreaks = strings.NewReplacer("\n", "\u2424", "\r", "\u240d")

// bleveDocument is the indexed projection of a Video. The full video is kept in Source.
type bleveDocument struct {
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	CategoryName     []string  `json:"category_name"`
	CategoryNameText []string  `json:"category_name_text"`
	ActiveCategoryID []string  `json:"active_category_id"`
	PlatformName     []string  `json:"platform_name"`
	PlatformQuality  []string  `json:"platform_quality"`
	Views            float64   `json:"views"`
	Likes            float64   `json:"likes"`
	Shares           float64   `json:"shares"`
	Downloads        float64   `json:"downloads"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	Source           string    `json:"source"`
}

type BleveDB struct {
	indexPath string
	logger    logger.Logger
	index     bleve.Index
}

func NewBleveDB(logger logger.Logger, cfg *config.Config) (*BleveDB, error) {
	mapping := createIndexMapping()
	indexPath := filepath.Join(cfg.GetStoragePath(), cfg.GetIndexPath())
	index, err := bleve.Open(indexPath)
	if err == bleve.ErrorIndexPathDoesNotExist {
		index, err = bleve.New(indexPath, mapping)
	}
	if err != nil {
		logger.Error("could not open index", "path", indexPath, "err", err.Error())
		return nil, err
	}
	return &BleveDB{indexPath: indexPath, logger: logger, index: index}, nil
}

func createIndexMapping() mapping.IndexMapping {

	indexMapping := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	docMapping.Dynamic = false

	for _, field := range []string{indexFieldTitle, indexFieldDescription, indexFieldCategoryNameText} {
		docMapping.AddFieldMappingsAt(field, newKeywordFieldMapping(false))
	}

	// Facet sources need doc values
	for _, field := range []string{indexFieldCategoryName, indexFieldPlatformName, indexFieldPlatformQuality} {
		docMapping.AddFieldMappingsAt(field, newKeywordFieldMapping(true))
	}
	docMapping.AddFieldMappingsAt(indexFieldActiveCategoryID, newKeywordFieldMapping(false))

	for _, field := range []string{indexFieldViews, indexFieldLikes, indexFieldShares, indexFieldDownloads} {
		numericFieldMapping := bleve.NewNumericFieldMapping()
		numericFieldMapping.Store = false
		numericFieldMapping.IncludeInAll = false
		docMapping.AddFieldMappingsAt(field, numericFieldMapping)
	}

	for _, field := range []string{indexFieldCreatedAt, indexFieldUpdatedAt} {
		dateFieldMapping := bleve.NewDateTimeFieldMapping()
		dateFieldMapping.Store = false
		dateFieldMapping.IncludeInAll = false
		docMapping.AddFieldMappingsAt(field, dateFieldMapping)
	}

	// Source is only stored, never searched
	sourceFieldMapping := bleve.NewTextFieldMapping()
	sourceFieldMapping.Index = false
	sourceFieldMapping.Store = true
	sourceFieldMapping.IncludeInAll = false
	sourceFieldMapping.DocValues = false
	docMapping.AddFieldMappingsAt(indexFieldSource, sourceFieldMapping)

	indexMapping.DefaultMapping = docMapping

	return indexMapping
}

func newKeywordFieldMapping(docValues bool) *mapping.FieldMapping {
	fieldMapping := bleve.NewTextFieldMapping()
	fieldMapping.Analyzer = keyword.Name
	fieldMapping.Store = false
	fieldMapping.IncludeInAll = false
	fieldMapping.DocValues = docValues
	return fieldMapping
}

func (b *BleveDB) Index(ctx context.Context, videos []Video) error {

	batch := b.index.NewBatch()

	for i, video := range videos {
		doc, err := toBleveDocument(video)
		if err != nil {
			b.logger.Error("could not prepare video for indexing", "id", video.ID, "err", err.Error())
			return err
		}

		if err := batch.Index(video.ID, doc); err != nil {
			b.logger.Error("could not index video", "id", video.ID, "err", err.Error())
			return err
		}

		// Execute batch when it reaches the batch size
		if (i+1)%IndexingBatchSize == 0 {
			if err := b.index.Batch(batch); err != nil {
				b.logger.Error("could not index batch of videos", "err", err.Error())
				return err
			}
			batch = b.index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := b.index.Batch(batch); err != nil {
			b.logger.Error("could not index batch of videos", "err", err.Error())
			return err
		}
	}

	return nil
}

func toBleveDocument(video Video) (*bleveDocument, error) {
	source, err := json.Marshal(video)
	if err != nil {
		return nil, fmt.Errorf("failed to encode video %s: %w", video.ID, err)
	}

	doc := &bleveDocument{
		Title:            foldText(video.Title),
		Description:      foldText(video.Description),
		CategoryName:     video.values(FieldCategoryName),
		ActiveCategoryID: video.activeCategoryIDs(),
		PlatformName:     video.values(FieldPlatformName),
		PlatformQuality:  video.values(FieldPlatformQuality),
		Views:            float64(video.Views),
		Likes:            float64(video.Statistics.Likes),
		Shares:           float64(video.Statistics.Shares),
		Downloads:        float64(video.Statistics.Downloads),
		CreatedAt:        video.CreatedAt,
		UpdatedAt:        video.UpdatedAt,
		Source:           string(source),
	}
	for _, name := range doc.CategoryName {
		doc.CategoryNameText = append(doc.CategoryNameText, foldText(name))
	}

	return doc, nil
}

// foldText is applied to indexed text and to patterns alike, so substring
// semantics are unchanged.
func foldText(s string) string {
	return lineBreaks.Replace(strings.ToLower(s))
}

func (b *BleveDB) Delete(ctx context.Context, ids []string) error {
	batch := b.index.NewBatch()

	for i, id := range ids {
		batch.Delete(id)

		if (i+1)%IndexingBatchSize == 0 {
			if err := b.index.Batch(batch); err != nil {
				b.logger.Error("could not delete videos", "err", err.Error())
				return err
			}
			batch = b.index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := b.index.Batch(batch); err != nil {
			b.logger.Error("could not delete videos", "err", err.Error())
			return err
		}
	}

	return nil
}

func (b *BleveDB) Find(ctx context.Context, filter Predicate, order Sort, skip int, limit int) ([]Video, error) {
	if err := checkWindow(skip, limit); err != nil {
		return nil, err
	}

	q, err := compileBleveQuery(filter)
	if err != nil {
		return nil, err
	}

	if limit == 0 {
		docCount, err := b.index.DocCount()
		if err != nil {
			return nil, fmt.Errorf("could not count indexed videos: %w", err)
		}
		limit = int(docCount)
	}

	searchRequest := bleve.NewSearchRequestOptions(q, limit, skip, false)
	searchRequest.Fields = []string{indexFieldSource}
	sortOrder, err := compileBleveSort(order)
	if err != nil {
		return nil, err
	}
	searchRequest.SortBy(sortOrder)

	searchResult, err := b.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		b.logger.Error("search failed", "filter", filter.String(), "err", err.Error())
		return nil, fmt.Errorf("search failed: %w", err)
	}

	videos := make([]Video, 0, len(searchResult.Hits))
	for _, hit := range searchResult.Hits {
		source, ok := hit.Fields[indexFieldSource].(string)
		if !ok {
			b.logger.Error("indexed video has no stored source", "id", hit.ID)
			return nil, fmt.Errorf("indexed video %s has no stored source", hit.ID)
		}

		var video Video
		if err := json.Unmarshal([]byte(source), &video); err != nil {
			b.logger.Error("could not decode stored video", "id", hit.ID, "err", err.Error())
			return nil, fmt.Errorf("could not decode stored video %s: %w", hit.ID, err)
		}
		videos = append(videos, video)
	}

	return videos, nil
}

func (b *BleveDB) Count(ctx context.Context, filter Predicate) (int, error) {
	q, err := compileBleveQuery(filter)
	if err != nil {
		return 0, err
	}

	searchResult, err := b.index.SearchInContext(ctx, bleve.NewSearchRequestOptions(q, 0, 0, false))
	if err != nil {
		b.logger.Error("count failed", "filter", filter.String(), "err", err.Error())
		return 0, fmt.Errorf("count failed: %w", err)
	}

	return int(searchResult.Total), nil
}

func (b *BleveDB) Distinct(ctx context.Context, field Field, filter Predicate) ([]string, error) {
	indexField, ok := keywordFields[field]
	if !ok {
		return nil, fmt.Errorf("field %s does not support distinct values", field)
	}

	q, err := compileBleveQuery(filter)
	if err != nil {
		return nil, err
	}

	facet, err := b.facet(ctx, q, indexField, maxFacetTerms)
	if err != nil {
		b.logger.Error("distinct failed", "field", field, "filter", filter.String(), "err", err.Error())
		return nil, fmt.Errorf("distinct failed: %w", err)
	}
	// Total counts every term occurrence, so it bounds the number of distinct terms.
	if facet != nil && facet.Other > 0 {
		b.logger.Warn("facet truncated, requesting all terms", "field", field, "size", maxFacetTerms, "total", facet.Total)
		facet, err = b.facet(ctx, q, indexField, facet.Total)
		if err != nil {
			b.logger.Error("distinct failed", "field", field, "filter", filter.String(), "err", err.Error())
			return nil, fmt.Errorf("distinct failed: %w", err)
		}
	}

	values := []string{}
	if facet == nil || facet.Terms == nil {
		return values, nil
	}
	for _, term := range facet.Terms.Terms() {
		values = append(values, term.Term)
	}

	return values, nil
}

func (b *BleveDB) facet(ctx context.Context, q query.Query, indexField string, size int) (*search.FacetResult, error) {
	searchRequest := bleve.NewSearchRequestOptions(q, 0, 0, false)
	searchRequest.AddFacet(indexField, bleve.NewFacetRequest(indexField, size))

	searchResult, err := b.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, err
	}
	return searchResult.Facets[indexField], nil
}

func (b *BleveDB) GetDocCount(ctx context.Context) (uint64, error) {
	return b.index.DocCount()
}

func (b *BleveDB) Close() error {

	if b.index != nil {
		if err := b.index.Close(); err != nil {
			b.logger.Error("could not close search index", "err", err.Error())
			return err
		}
	}
	return nil
}

func compileBleveQuery(p Predicate) (query.Query, error) {
	switch p := p.(type) {
	case nil, MatchAll:
		return bleve.NewMatchAllQuery(), nil

	case And:
		if len(p) == 0 {
			return bleve.NewMatchAllQuery(), nil
		}
		children, err := compileBleveQueries(p)
		if err != nil {
			return nil, err
		}
		return bleve.NewConjunctionQuery(children...), nil

	case Or:
		if len(p) == 0 {
			return bleve.NewMatchNoneQuery(), nil
		}
		children, err := compileBleveQueries(p)
		if err != nil {
			return nil, err
		}
		return bleve.NewDisjunctionQuery(children...), nil

	case Contains:
		indexField, ok := textFields[p.Field]
		if !ok {
			return nil, fmt.Errorf("field %s does not support substring matching", p.Field)
		}
		regexpQuery := bleve.NewRegexpQuery(".*" + regexp.QuoteMeta(foldText(p.Pattern)) + ".*")
		regexpQuery.SetField(indexField)
		return regexpQuery, nil

	case Equals:
		indexField, ok := keywordFields[p.Field]
		if !ok {
			return nil, fmt.Errorf("field %s does not support exact matching", p.Field)
		}
		termQuery := bleve.NewTermQuery(p.Value)
		termQuery.SetField(indexField)
		return termQuery, nil

	case ActiveCategory:
		termQuery := bleve.NewTermQuery(p.ID)
		termQuery.SetField(indexFieldActiveCategoryID)
		return termQuery, nil

	case Since:
		indexField, ok := dateFields[p.Field]
		if !ok {
			return nil, fmt.Errorf("field %s does not support date ranges", p.Field)
		}
		inclusive := true
		dateQuery := bleve.NewDateRangeInclusiveQuery(p.Time, time.Time{}, &inclusive, nil)
		dateQuery.SetField(indexField)
		return dateQuery, nil
	}

	return nil, fmt.Errorf("unsupported predicate %T", p)
}

func compileBleveQueries(predicates []Predicate) ([]query.Query, error) {
	queries := make([]query.Query, 0, len(predicates))
	for _, child := range predicates {
		q, err := compileBleveQuery(child)
		if err != nil {
			return nil, err
		}
		queries = append(queries, q)
	}
	return queries, nil
}

func compileBleveSort(order Sort) ([]string, error) {
	sortOrder := make([]string, 0, len(order))
	for _, key := range order {
		indexField, ok := sortFields[key.Field]
		if !ok {
			return nil, fmt.Errorf("field %s does not support sorting", key.Field)
		}
		if key.Descending {
			indexField = "-" + indexField
		}
		sortOrder = append(sortOrder, indexField)
	}
	return sortOrder, nil
}
