package store

import (
	"context"
	stderrors "errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo defaults.
const (
	DefaultMongoDatabase   = "shelfspace"
	DefaultMongoCollection = "libraries"
	DefaultLibraryID       = "default"
)

// libraryDocument is the stored form of a Library.
type libraryDocument struct {
	ID      string `bson:"_id"`
	Library `bson:",inline"`
}

// MongoStore keeps each library as one document keyed by library id.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	id         string
}

// NewMongoStore connects to MongoDB and pings the primary. Ping failures
// are retryable.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, unavailable(err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, Retryable(unavailable(err, "ping mongo"))
	}

	db, coll, id := cfg.Database, cfg.Collection, cfg.LibraryID
	if db == "" {
		db = DefaultMongoDatabase
	}
	if coll == "" {
		coll = DefaultMongoCollection
	}
	if id == "" {
		id = DefaultLibraryID
	}
	return &MongoStore{
		client:     client,
		collection: client.Database(db).Collection(coll),
		id:         id,
	}, nil
}

func (s *MongoStore) Load(ctx context.Context) (*Library, error) {
	var doc libraryDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": s.id}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return Default(), nil
	}
	if err != nil {
		return nil, unavailable(err, "find library %s", s.id)
	}
	lib := doc.Library
	return normalize(&lib), nil
}

func (s *MongoStore) Save(ctx context.Context, lib *Library) error {
	doc := libraryDocument{ID: s.id, Library: *normalize(lib)}
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": s.id}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return unavailable(err, "save library %s", s.id)
	}
	return nil
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ Store = (*MongoStore)(nil)
