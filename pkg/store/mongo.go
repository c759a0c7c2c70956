package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/popdyn/pkg/buildinfo"
	"github.com/matzehuels/popdyn/pkg/filter"
	"github.com/matzehuels/popdyn/pkg/panels"
	"github.com/matzehuels/popdyn/pkg/treemap"
)

// Collection names.
const (
	mongoItems   = "items"
	mongoMetrics = "metrics"
)

// metricsDocID is the _id of the single metrics document.
const metricsDocID = "current"

// Mongo is a [Repository] backed by MongoDB.
type Mongo struct {
	client  *mongo.Client
	items   *mongo.Collection
	metrics *mongo.Collection
}

// itemDoc is an item as stored: the item fields plus its insertion position.
type itemDoc struct {
	treemap.Item `bson:",inline"`
	Position     int64 `bson:"position"`
}

// itemFields are the replaceable fields of an item (everything but _id and
// position).
type itemFields struct {
	Name   string         `bson:"name"`
	Value  float64        `bson:"value"`
	Target float64        `bson:"target"`
	Weight float64        `bson:"weight"`
	Sector string         `bson:"sector"`
	Type   string         `bson:"type"`
	Meta   map[string]any `bson:"meta,omitempty"`
}

type metricsDoc struct {
	ID             string `bson:"_id"`
	panels.Metrics `bson:",inline"`
}

// OpenMongo connects to uri and uses the named database.
func OpenMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri).SetAppName(buildinfo.UserAgent()))
	if err != nil {
		return nil, storageError(err, "connect mongo")
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, storageError(err, "ping mongo")
	}

	db := client.Database(database)
	m := &Mongo{
		client:  client,
		items:   db.Collection(mongoItems),
		metrics: db.Collection(mongoMetrics),
	}
	_, err = m.items.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "position", Value: 1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, storageError(err, "create position index")
	}
	return m, nil
}

// ListItems implements [Repository].
func (m *Mongo) ListItems(ctx context.Context, c filter.Criteria) ([]treemap.Item, error) {
	cur, err := m.items.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "position", Value: 1}}))
	if err != nil {
		return nil, storageError(err, "list items")
	}
	var docs []itemDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storageError(err, "decode items")
	}
	items := make([]treemap.Item, len(docs))
	for i, d := range docs {
		items[i] = d.Item
	}
	return filter.Apply(items, c), nil
}

// GetItem implements [Repository].
func (m *Mongo) GetItem(ctx context.Context, id string) (treemap.Item, error) {
	var doc itemDoc
	err := m.items.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return treemap.Item{}, notFound(id)
	}
	if err != nil {
		return treemap.Item{}, storageError(err, "get item %q", id)
	}
	return doc.Item, nil
}

// PutItems implements [Repository]. Items are upserted in one unordered
// bulk write; positions are only assigned on insert.
func (m *Mongo) PutItems(ctx context.Context, items []treemap.Item) error {
	if err := validateItems(items); err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	next, err := m.nextPosition(ctx)
	if err != nil {
		return err
	}

	models := make([]mongo.WriteModel, len(items))
	for i, it := range items {
		fields := itemFields{
			Name:   it.Name,
			Value:  it.Value,
			Target: it.Target,
			Weight: it.Weight,
			Sector: it.Sector,
			Type:   it.Type,
			Meta:   it.Meta,
		}
		models[i] = mongo.NewUpdateOneModel().
			SetFilter(bson.D{{Key: "_id", Value: it.ID}}).
			SetUpdate(bson.D{
				{Key: "$set", Value: fields},
				{Key: "$setOnInsert", Value: bson.D{{Key: "position", Value: next + int64(i)}}},
			}).
			SetUpsert(true)
	}
	if _, err := m.items.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return storageError(err, "put items")
	}
	return nil
}

func (m *Mongo) nextPosition(ctx context.Context) (int64, error) {
	var last itemDoc
	err := m.items.FindOne(ctx, bson.D{},
		options.FindOne().SetSort(bson.D{{Key: "position", Value: -1}})).Decode(&last)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, storageError(err, "read last position")
	}
	return last.Position + 1, nil
}

// Metrics implements [Repository].
func (m *Mongo) Metrics(ctx context.Context) (panels.Metrics, error) {
	var doc metricsDoc
	err := m.metrics.FindOne(ctx, bson.D{{Key: "_id", Value: metricsDocID}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return panels.Metrics{}, nil
	}
	if err != nil {
		return panels.Metrics{}, storageError(err, "load metrics")
	}
	return doc.Metrics, nil
}

// PutMetrics implements [Repository].
func (m *Mongo) PutMetrics(ctx context.Context, pm panels.Metrics) error {
	_, err := m.metrics.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: metricsDocID}},
		metricsDoc{ID: metricsDocID, Metrics: pm},
		options.Replace().SetUpsert(true))
	if err != nil {
		return storageError(err, "put metrics")
	}
	return nil
}

// Close disconnects the client.
func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

var _ Repository = (*Mongo)(nil)
