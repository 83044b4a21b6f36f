// Package mongo implements the document store on MongoDB (online mode).
// Each logical collection maps to a MongoDB collection; documents keep
// their JSON shape via relaxed extended JSON round-tripping.
package mongo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tillbook/internal/core/apperror"
	"tillbook/internal/infrastructure/store"
)

// Store is the MongoDB-backed document store.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ store.Store = (*Store)(nil)

// New connects to MongoDB.
func New(ctx context.Context, uri, database string) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &Store{
		client: client,
		db:     client.Database(database),
	}, nil
}

func (s *Store) GetAll(ctx context.Context, collection string) ([]json.RawMessage, error) {
	cursor, err := s.db.Collection(collection).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, apperror.NewPersistence("list "+collection, err)
	}
	defer cursor.Close(ctx)

	var docs []json.RawMessage
	for cursor.Next(ctx) {
		raw, err := decodeDocument(cursor.Current)
		if err != nil {
			return nil, apperror.NewPersistence("decode "+collection, err)
		}
		docs = append(docs, raw)
	}
	if err := cursor.Err(); err != nil {
		return nil, apperror.NewPersistence("list "+collection, err)
	}
	if docs == nil {
		docs = []json.RawMessage{}
	}
	return docs, nil
}

func (s *Store) GetByID(ctx context.Context, collection, id string) (json.RawMessage, error) {
	var doc bson.Raw
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, apperror.NewNotFound(collection, id)
	}
	if err != nil {
		return nil, apperror.NewPersistence("get "+collection, err)
	}

	raw, err := decodeDocument(doc)
	if err != nil {
		return nil, apperror.NewPersistence("decode "+collection, err)
	}
	return raw, nil
}

func (s *Store) Put(ctx context.Context, collection, id string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return apperror.NewPersistence("encode "+collection, err)
	}

	var body bson.M
	if err := bson.UnmarshalExtJSON(raw, false, &body); err != nil {
		return apperror.NewPersistence("encode "+collection, err)
	}
	body["_id"] = id

	_, err = s.db.Collection(collection).ReplaceOne(ctx,
		bson.M{"_id": id}, body, options.Replace().SetUpsert(true))
	if err != nil {
		return apperror.NewPersistence("put "+collection, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperror.NewPersistence("delete "+collection, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// decodeDocument converts a stored BSON document back to its JSON shape,
// stripping the duplicated _id key.
func decodeDocument(doc bson.Raw) (json.RawMessage, error) {
	var body bson.M
	if err := bson.Unmarshal(doc, &body); err != nil {
		return nil, err
	}
	delete(body, "_id")

	raw, err := bson.MarshalExtJSON(body, false, false)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(raw), nil
}
