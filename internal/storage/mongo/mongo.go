// Package mongo stores snapshots in a MongoDB collection.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mgo "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/steveyegge/projctl/internal/snapshot"
)

// CollectionName is the collection holding snapshot documents
const CollectionName = "snapshots"

const opTimeout = 10 * time.Second

// record is the stored form of a snapshot. The document itself is kept as
// its JSON encoding so it passes through the same schema validation as every
// other backend on load. Seq increases with every insert and orders records;
// saved_at only has millisecond precision.
type record struct {
	ID      string    `bson:"_id"`
	Seq     int64     `bson:"seq"`
	Version int       `bson:"version"`
	SavedAt time.Time `bson:"saved_at"`
	Data    string    `bson:"data"`
}

// Store keeps the most recent snapshots in MongoDB
type Store struct {
	cli        *mgo.Client
	collection *mgo.Collection
	database   string
	history    int
}

// New connects to uri and verifies the connection
func New(ctx context.Context, uri, database string, history int) (*Store, error) {
	if history < 1 {
		return nil, fmt.Errorf("history must be at least 1 (got %d)", history)
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	client, err := mgo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	collection := client.Database(database).Collection(CollectionName)
	_, err = collection.Indexes().CreateOne(ctx, mgo.IndexModel{
		Keys: bson.D{{Key: "seq", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &Store{
		cli:        client,
		collection: collection,
		database:   database,
		history:    history,
	}, nil
}

func (s *Store) Describe() string {
	return fmt.Sprintf("mongo:%s.%s (keeps %d)", s.database, CollectionName, s.history)
}

func newestFirst() bson.D {
	return bson.D{{Key: "seq", Value: -1}, {Key: "saved_at", Value: -1}}
}

// nextSeq returns one past the highest sequence stored so far
func (s *Store) nextSeq(ctx context.Context) (int64, error) {
	var last record
	opts := options.FindOne().
		SetSort(newestFirst()).
		SetProjection(bson.M{"seq": 1})
	err := s.collection.FindOne(ctx, bson.M{}, opts).Decode(&last)
	if errors.Is(err, mgo.ErrNoDocuments) {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read snapshot sequence: %w", err)
	}
	return last.Seq + 1, nil
}

// Load returns the most recently saved snapshot
func (s *Store) Load(ctx context.Context) (*snapshot.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var rec record
	err := s.collection.FindOne(ctx, bson.M{}, options.FindOne().SetSort(newestFirst())).Decode(&rec)
	if errors.Is(err, mgo.ErrNoDocuments) {
		return nil, snapshot.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find latest snapshot: %w", err)
	}
	doc, err := snapshot.Decode([]byte(rec.Data))
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", rec.ID, err)
	}
	return doc, nil
}

// Save inserts doc and removes snapshots beyond the retention limit
func (s *Store) Save(ctx context.Context, doc *snapshot.Document) error {
	data, err := doc.Encode()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	seq, err := s.nextSeq(ctx)
	if err != nil {
		return err
	}
	rec := record{ID: doc.ID, Seq: seq, Version: doc.Version, SavedAt: doc.SavedAt.UTC(), Data: string(data)}
	if _, err := s.collection.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return s.prune(ctx)
}

func (s *Store) prune(ctx context.Context) error {
	opts := options.Find().
		SetSort(newestFirst()).
		SetSkip(int64(s.history)).
		SetProjection(bson.M{"_id": 1})
	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return fmt.Errorf("failed to find old snapshots: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var ids []string
	for cursor.Next(ctx) {
		var rec record
		if err := cursor.Decode(&rec); err != nil {
			return fmt.Errorf("failed to decode snapshot id: %w", err)
		}
		ids = append(ids, rec.ID)
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("failed to iterate snapshots: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	if _, err := s.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return fmt.Errorf("failed to prune snapshots: %w", err)
	}
	return nil
}

// History lists retained snapshots, newest first
func (s *Store) History(ctx context.Context) ([]snapshot.Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(newestFirst()).
		SetProjection(bson.M{"data": 0})
	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find snapshots: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var entries []snapshot.Entry
	for cursor.Next(ctx) {
		var rec record
		if err := cursor.Decode(&rec); err != nil {
			return nil, fmt.Errorf("failed to decode snapshot: %w", err)
		}
		entries = append(entries, snapshot.Entry{ID: rec.ID, Version: rec.Version, SavedAt: rec.SavedAt})
	}
	return entries, cursor.Err()
}

// Drop removes the snapshot collection. Used by tests to clean up.
func (s *Store) Drop(ctx context.Context) error {
	return s.collection.Drop(ctx)
}

// Close disconnects from MongoDB
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := s.cli.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	return nil
}
