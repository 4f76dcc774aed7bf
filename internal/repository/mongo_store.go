package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var ErrStreamClosed = errors.New("change stream closed")

// MongoStore is the Store backed by MongoDB. Watches are change streams, so
// the deployment must be a replica set.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

type mongoWatch struct {
	mu       sync.Mutex
	active   bool
	onChange ChangeHandler
}

func (w *mongoWatch) deliver(docs []Doc) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.active {
		w.onChange(docs)
	}
}

// deactivate reports whether the watch was still active.
func (w *mongoWatch) deactivate() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	was := w.active
	w.active = false
	return was
}

func (s *MongoStore) Watch(ctx context.Context, collection string, onChange ChangeHandler, onError ErrorHandler) (Unsubscribe, error) {
	// The stream outlives the caller's request context.
	streamCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	// Open the stream before reading so no change between the read and the
	// stream start is missed.
	stream, err := s.db.Collection(collection).Watch(streamCtx, mongo.Pipeline{})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("watch %s: %w", collection, err)
	}

	docs, err := s.GetAll(ctx, collection)
	if err != nil {
		_ = stream.Close(context.Background())
		cancel()
		return nil, err
	}

	w := &mongoWatch{active: true, onChange: onChange}
	w.deliver(docs)

	go func() {
		defer func() {
			closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer closeCancel()
			_ = stream.Close(closeCtx)
		}()

		for stream.Next(streamCtx) {
			docs, err := s.GetAll(streamCtx, collection)
			if err != nil {
				s.terminate(streamCtx, w, collection, err, onError)
				return
			}
			w.deliver(docs)
		}

		err := stream.Err()
		if err == nil {
			err = ErrStreamClosed
		}
		s.terminate(streamCtx, w, collection, err, onError)
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			w.deactivate()
			cancel()
		})
	}, nil
}

func (s *MongoStore) terminate(streamCtx context.Context, w *mongoWatch, collection string, err error, onError ErrorHandler) {
	// A released watch ends with a canceled context; that is not a failure.
	if streamCtx.Err() != nil {
		return
	}
	if !w.deactivate() {
		return
	}
	log.Error().Err(err).Msgf("[Store] watch on %s terminated", collection)
	if onError != nil {
		onError(err)
	}
}

func (s *MongoStore) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	id := uuid.NewString()
	doc := bson.M{"_id": id}
	for k, v := range data {
		doc[k] = v
	}
	if _, err := s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("insert into %s: %w", collection, err)
	}
	return id, nil
}

func (s *MongoStore) Set(ctx context.Context, collection, id string, data map[string]any) error {
	doc := bson.M{}
	for k, v := range data {
		doc[k] = v
	}
	delete(doc, "_id")

	_, err := s.db.Collection(collection).ReplaceOne(ctx,
		bson.M{"_id": id},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *MongoStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	set := bson.M{}
	for k, v := range fields {
		if k == "_id" {
			continue
		}
		set[k] = v
	}

	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) GetAll(ctx context.Context, collection string) ([]Doc, error) {
	cur, err := s.db.Collection(collection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	defer cur.Close(ctx)

	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}

	docs := make([]Doc, 0, len(raw))
	for _, m := range raw {
		docs = append(docs, fromBSON(m))
	}
	return docs, nil
}

func fromBSON(m bson.M) Doc {
	id := ""
	if v, ok := m["_id"]; ok {
		id = fmt.Sprint(normalize(v))
	}
	data := make(map[string]any, len(m))
	for k, v := range m {
		if k == "_id" {
			continue
		}
		data[k] = normalize(v)
	}
	return Doc{ID: id, Data: data}
}

// normalize turns driver values into the plain maps, slices and scalars the
// JSON-based decoders understand.
func normalize(v any) any {
	switch t := v.(type) {
	case bson.M:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalize(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalize(e)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = normalize(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	case bson.ObjectID:
		return t.Hex()
	case bson.DateTime:
		return t.Time().UTC().Format(time.RFC3339)
	default:
		return v
	}
}
