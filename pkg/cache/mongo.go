package cache

import (
	"context"
	stderrors "errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/gdpmap/pkg/errors"
)

// Mongo defaults.
const (
	DefaultMongoDatabase   = "gdpmap"
	DefaultMongoCollection = "cache"
)

// mongoEntry is the stored document. ExpiresAt is nil for entries that
// never expire, which the TTL index skips.
type mongoEntry struct {
	Key       string     `bson:"_id"`
	Data      []byte     `bson:"data"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty"`
}

func newMongoEntry(key string, data []byte, ttl time.Duration, now time.Time) mongoEntry {
	e := mongoEntry{Key: key, Data: data}
	if ttl > 0 {
		at := now.Add(ttl).UTC()
		e.ExpiresAt = &at
	}
	return e
}

// expired reports whether the entry is past its expiry. MongoDB removes
// expired documents only about once a minute, so reads check too.
func (e mongoEntry) expired(now time.Time) bool {
	return e.ExpiresAt != nil && now.After(*e.ExpiresAt)
}

// MongoCache stores entries as documents keyed by _id with a TTL index on
// expires_at. The namespace is the key prefix the owning deployment writes
// with; Clear only removes documents under it.
type MongoCache struct {
	client    *mongo.Client
	coll      *mongo.Collection
	namespace string
	owned     bool
}

// NewMongoCache connects to uri, ensures the TTL index and returns a cache
// over database.collection. Empty names take the defaults.
func NewMongoCache(ctx context.Context, uri, database, collection, namespace string) (*MongoCache, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfiguration, err, "configure mongo client")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongo")
	}
	c, err := NewMongoCacheFromClient(ctx, client, database, collection, namespace)
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	c.owned = true
	return c, nil
}

// NewMongoCacheFromClient wraps an existing client. Close does not
// disconnect it.
func NewMongoCacheFromClient(ctx context.Context, client *mongo.Client, database, collection, namespace string) (*MongoCache, error) {
	if database == "" {
		database = DefaultMongoDatabase
	}
	if collection == "" {
		collection = DefaultMongoCollection
	}
	coll := client.Database(database).Collection(collection)
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return nil, backendError("mongo", "create index on", collection, err)
	}
	return &MongoCache{client: client, coll: coll, namespace: namespace}, nil
}

// Get reads an entry. Expired documents still awaiting the TTL monitor
// read as misses.
func (c *MongoCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var e mongoEntry
	err := c.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&e)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, backendError("mongo", "find", key, err)
	}
	if e.expired(time.Now()) {
		return nil, false, nil
	}
	return e.Data, true, nil
}

// Set upserts an entry.
func (c *MongoCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	e := newMongoEntry(key, data, ttl, time.Now())
	_, err := c.coll.ReplaceOne(ctx, bson.M{"_id": key}, e, options.Replace().SetUpsert(true))
	if err != nil {
		return backendError("mongo", "replace", key, err)
	}
	return nil
}

// Delete removes an entry.
func (c *MongoCache) Delete(ctx context.Context, key string) error {
	if _, err := c.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return backendError("mongo", "delete", key, err)
	}
	return nil
}

// Clear removes the documents under the cache's namespace. Without a
// namespace it empties the collection.
func (c *MongoCache) Clear(ctx context.Context) (int, error) {
	res, err := c.coll.DeleteMany(ctx, namespaceFilter(c.namespace))
	if err != nil {
		return 0, backendError("mongo", "clear", c.coll.Name(), err)
	}
	return int(res.DeletedCount), nil
}

// namespaceFilter matches the _id values starting with namespace.
func namespaceFilter(namespace string) bson.M {
	if namespace == "" {
		return bson.M{}
	}
	return bson.M{"_id": bson.M{"$regex": "^" + regexp.QuoteMeta(namespace)}}
}

// Close disconnects the client if the cache created it.
func (c *MongoCache) Close() error {
	if !c.owned {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.client.Disconnect(ctx)
}

var (
	_ Cache   = (*MongoCache)(nil)
	_ Clearer = (*MongoCache)(nil)
)
