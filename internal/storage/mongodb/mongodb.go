package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jobtrack/internal/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Storage is the session store: a revocation ledger for refresh tokens.
// A token is live exactly as long as its document exists. Rotation and
// logout delete the document; expiry is enforced by a TTL index.
type Storage struct {
	client   *mongo.Client
	sessions *mongo.Collection
	timeout  time.Duration
}

type sessionDoc struct {
	Key       string    `bson:"_id"`
	Token     string    `bson:"token"`
	CreatedAt time.Time `bson:"created_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}

// New connects to MongoDB and ensures the TTL index on the sessions
// collection. Every operation is bounded by timeout.
func New(ctx context.Context, uri, database string, timeout time.Duration) (*Storage, error) {
	const op = "storage.mongodb.New"

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%s: connect: %w", op, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("%s: ping: %w", op, storage.ErrUnavailable)
	}

	s := &Storage{
		client:   client,
		sessions: client.Database(database).Collection("sessions"),
		timeout:  timeout,
	}

	if err := s.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("%s: indexes: %w", op, err)
	}

	return s, nil
}

// EnsureIndexes creates the TTL index that evicts expired sessions.
func (s *Storage) EnsureIndexes(ctx context.Context) error {
	_, err := s.sessions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return fmt.Errorf("sessions.expires_at TTL index: %w", err)
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *Storage) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// PutSession upserts a revocation entry under key with the given TTL.
func (s *Storage) PutSession(ctx context.Context, key, token string, ttl time.Duration) error {
	const op = "storage.mongodb.PutSession"

	opCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	now := time.Now()
	doc := sessionDoc{
		Key:       key,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	_, err := s.sessions.ReplaceOne(opCtx,
		bson.D{{Key: "_id", Value: key}},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, classify(err))
	}
	return nil
}

// GetSession returns the token stored under key.
func (s *Storage) GetSession(ctx context.Context, key string) (string, error) {
	const op = "storage.mongodb.GetSession"

	opCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var doc sessionDoc
	err := s.sessions.FindOne(opCtx, bson.D{{Key: "_id", Value: key}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", fmt.Errorf("%s: %w", op, storage.ErrSessionNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, classify(err))
	}
	return doc.Token, nil
}

// DeleteSession removes the entry under key and reports how many documents
// were removed (0 or 1). The delete is atomic: of two concurrent calls for
// the same key, exactly one observes a count of 1.
func (s *Storage) DeleteSession(ctx context.Context, key string) (int64, error) {
	const op = "storage.mongodb.DeleteSession"

	opCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.sessions.DeleteOne(opCtx, bson.D{{Key: "_id", Value: key}})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, classify(err))
	}
	return res.DeletedCount, nil
}

// classify folds timeouts and connectivity failures into ErrUnavailable so
// the request layer can answer 503 without inspecting driver internals.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return storage.ErrUnavailable
	}
	return err
}
