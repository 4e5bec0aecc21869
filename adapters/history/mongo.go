// Package history stores completed turns: a bounded in-memory ring that
// always runs, and an optional MongoDB repository for durable history.
package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/srreparos7z-rgb/lewisia/domain/entities"
)

// Mongo persists turns in a MongoDB collection.
type Mongo struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewMongo connects to MongoDB and returns a turn repository backed by the
// "turns" collection.
func NewMongo(ctx context.Context, uri, database string, logger *zap.Logger) (*Mongo, error) {
	clientOptions := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(10).
		SetMinPoolSize(1).
		SetMaxConnIdleTime(30 * time.Minute).
		SetServerSelectionTimeout(5 * time.Second).
		SetConnectTimeout(10 * time.Second)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Info("connected to MongoDB",
		zap.String("database", database))

	return &Mongo{
		client:     client,
		collection: client.Database(database).Collection("turns"),
		logger:     logger,
	}, nil
}

// Save implements repositories.TurnRepository.
func (m *Mongo) Save(ctx context.Context, turn *entities.Turn) error {
	if turn == nil {
		return errors.New("turn cannot be nil")
	}
	if err := turn.Validate(); err != nil {
		return err
	}

	if _, err := m.collection.InsertOne(ctx, turn); err != nil {
		return fmt.Errorf("failed to save turn: %w", err)
	}
	return nil
}

// Recent implements repositories.TurnRepository.
func (m *Mongo) Recent(ctx context.Context, limit int) ([]*entities.Turn, error) {
	if limit <= 0 {
		return nil, nil
	}

	findOptions := options.Find().
		SetSort(bson.M{"started_at": -1}).
		SetLimit(int64(limit))

	cursor, err := m.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer cursor.Close(ctx)

	var turns []*entities.Turn
	if err := cursor.All(ctx, &turns); err != nil {
		return nil, fmt.Errorf("failed to decode turns: %w", err)
	}
	return turns, nil
}

// Close disconnects from MongoDB.
func (m *Mongo) Close(ctx context.Context) error {
	if err := m.client.Disconnect(ctx); err != nil {
		m.logger.Error("failed to disconnect from MongoDB", zap.Error(err))
		return err
	}
	return nil
}
