package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	logx "gazettebot/pkg/logx"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultMongoDatabase   = "gazettebot"
	defaultMongoCollection = "seen"
	mongoSeenDocID         = "seen"
)

// mongoStore keeps the whole ordered list in one document so a save is a
// single atomic replace.
type mongoStore struct {
	client  *mongo.Client
	coll    *mongo.Collection
	log     logx.Logger
	timeout time.Duration
}

type seenDoc struct {
	ID        string    `bson:"_id"`
	IDs       []string  `bson:"ids"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func openMongo(ctx context.Context, cfg Config, log logx.Logger) (Store, error) {
	uri := strings.TrimSpace(cfg.URI)
	if uri == "" {
		return nil, errors.New("storage.uri is required for mongo driver")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	dbName := strings.TrimSpace(cfg.Database)
	if dbName == "" {
		dbName = defaultMongoDatabase
	}
	collName := strings.TrimSpace(cfg.Collection)
	if collName == "" {
		collName = defaultMongoCollection
	}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(cctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(cctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return &mongoStore{
		client:  client,
		coll:    client.Database(dbName).Collection(collName),
		log:     log.With(logx.String("db", dbName), logx.String("collection", collName)),
		timeout: timeout,
	}, nil
}

func (s *mongoStore) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *mongoStore) LoadSeen(ctx context.Context) ([]string, error) {
	if s == nil || s.coll == nil {
		return nil, ErrNotOpen
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var doc seenDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": mongoSeenDocID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return cleanIDs(doc.IDs), nil
}

func (s *mongoStore) SaveSeen(ctx context.Context, ids []string) error {
	if s == nil || s.coll == nil {
		return ErrNotOpen
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	doc := seenDoc{ID: mongoSeenDocID, IDs: cleanIDs(ids), UpdatedAt: time.Now().UTC()}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": mongoSeenDocID}, doc, opts); err != nil {
		return err
	}
	s.log.Debug("seen document replaced", logx.Int("count", len(doc.IDs)))
	return nil
}
