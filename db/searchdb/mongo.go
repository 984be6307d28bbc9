package searchdb

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/meghashyamc/vidcat/config"
	"github.com/meghashyamc/vidcat/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	mongoCollection     = "videos"
	mongoConnectTimeout = 10 * time.Second
)

// matchNothing is used for empty disjunctions; every stored video has an _id.
var matchNothing = bson.M{string(FieldID): bson.M{"$exists": false}}

type MongoDB struct {
	logger     logger.Logger
	client     *mongo.Client
	collection *mongo.Collection
}

func NewMongoDB(ctx context.Context, logger logger.Logger, cfg *config.Config) (*MongoDB, error) {
	uri := cfg.GetMongoURI()
	if uri == "" {
		logger.Error("mongo engine selected without a connection uri")
		return nil, fmt.Errorf("mongo uri is not configured")
	}

	connectCtx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		logger.Error("could not connect to mongo", "err", err.Error())
		return nil, fmt.Errorf("could not connect to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		logger.Error("could not reach mongo", "err", err.Error())
		if disconnectErr := client.Disconnect(ctx); disconnectErr != nil {
			logger.Error("could not disconnect from mongo", "err", disconnectErr.Error())
		}
		return nil, fmt.Errorf("could not reach mongo: %w", err)
	}

	collection := client.Database(cfg.GetMongoDatabase()).Collection(mongoCollection)
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: string(FieldViews), Value: -1}}},
		{Keys: bson.D{{Key: string(FieldCreatedAt), Value: -1}}},
		{Keys: bson.D{{Key: "category.id", Value: 1}}},
	}
	if _, err := collection.Indexes().CreateMany(connectCtx, indexes); err != nil {
		logger.Warn("could not create mongo indexes", "err", err.Error())
	}

	return &MongoDB{logger: logger, client: client, collection: collection}, nil
}

func (m *MongoDB) Index(ctx context.Context, videos []Video) error {
	if len(videos) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(videos))
	for _, video := range videos {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{string(FieldID): video.ID}).
			SetReplacement(video).
			SetUpsert(true))
	}

	if _, err := m.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		m.logger.Error("could not index videos", "count", len(videos), "err", err.Error())
		return fmt.Errorf("could not index videos: %w", err)
	}
	return nil
}

func (m *MongoDB) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	if _, err := m.collection.DeleteMany(ctx, bson.M{string(FieldID): bson.M{"$in": ids}}); err != nil {
		m.logger.Error("could not delete videos", "err", err.Error())
		return fmt.Errorf("could not delete videos: %w", err)
	}
	return nil
}

func (m *MongoDB) Find(ctx context.Context, filter Predicate, order Sort, skip int, limit int) ([]Video, error) {
	if err := checkWindow(skip, limit); err != nil {
		return nil, err
	}

	findOptions := options.Find().
		SetSort(compileMongoSort(order)).
		SetSkip(int64(skip))
	if limit > 0 {
		findOptions.SetLimit(int64(limit))
	}

	cursor, err := m.collection.Find(ctx, compileMongoFilter(filter), findOptions)
	if err != nil {
		m.logger.Error("search failed", "filter", filter.String(), "err", err.Error())
		return nil, fmt.Errorf("search failed: %w", err)
	}

	videos := []Video{}
	if err := cursor.All(ctx, &videos); err != nil {
		m.logger.Error("could not decode videos", "err", err.Error())
		return nil, fmt.Errorf("could not decode videos: %w", err)
	}
	return videos, nil
}

func (m *MongoDB) Count(ctx context.Context, filter Predicate) (int, error) {
	count, err := m.collection.CountDocuments(ctx, compileMongoFilter(filter))
	if err != nil {
		m.logger.Error("count failed", "filter", filter.String(), "err", err.Error())
		return 0, fmt.Errorf("count failed: %w", err)
	}
	return int(count), nil
}

func (m *MongoDB) Distinct(ctx context.Context, field Field, filter Predicate) ([]string, error) {
	raw, err := m.collection.Distinct(ctx, string(field), compileMongoFilter(filter))
	if err != nil {
		m.logger.Error("distinct failed", "field", field, "err", err.Error())
		return nil, fmt.Errorf("distinct failed: %w", err)
	}

	values := make([]string, 0, len(raw))
	for _, value := range raw {
		if s, ok := value.(string); ok {
			values = append(values, s)
		}
	}
	return values, nil
}

func (m *MongoDB) GetDocCount(ctx context.Context) (uint64, error) {
	count, err := m.collection.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, err
	}
	return uint64(count), nil
}

func (m *MongoDB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoConnectTimeout)
	defer cancel()

	if err := m.client.Disconnect(ctx); err != nil {
		m.logger.Error("could not disconnect from mongo", "err", err.Error())
		return err
	}
	return nil
}

func compileMongoFilter(p Predicate) bson.M {
	switch p := p.(type) {
	case nil, MatchAll:
		return bson.M{}

	case And:
		if len(p) == 0 {
			return bson.M{}
		}
		return bson.M{"$and": compileMongoFilters(p)}

	case Or:
		if len(p) == 0 {
			return matchNothing
		}
		return bson.M{"$or": compileMongoFilters(p)}

	case Contains:
		return bson.M{string(p.Field): primitive.Regex{Pattern: regexp.QuoteMeta(p.Pattern), Options: "i"}}

	case Equals:
		return bson.M{string(p.Field): p.Value}

	case ActiveCategory:
		return bson.M{"category": bson.M{"$elemMatch": bson.M{"id": p.ID, "active": true}}}

	case Since:
		return bson.M{string(p.Field): bson.M{"$gte": p.Time}}
	}

	return matchNothing
}

func compileMongoFilters(predicates []Predicate) []bson.M {
	filters := make([]bson.M, 0, len(predicates))
	for _, child := range predicates {
		filters = append(filters, compileMongoFilter(child))
	}
	return filters
}

func compileMongoSort(order Sort) bson.D {
	sortDoc := bson.D{}
	for _, key := range order {
		direction := 1
		if key.Descending {
			direction = -1
		}
		sortDoc = append(sortDoc, bson.E{Key: string(key.Field), Value: direction})
	}
	return sortDoc
}
