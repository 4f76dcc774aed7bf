// internal/db/mongo.go
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/flowchartsman/retry"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoDB(uri, name string) (*MongoDB, error) {
	client, err := mongo.Connect(options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(10 * time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	retrier := retry.NewRetrier(5, 200*time.Millisecond, 2*time.Second)
	err = retrier.Run(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return client.Ping(ctx, readpref.Primary())
	})
	if err != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Info().Str("database", name).Msg("[DB] ✅ Connected to MongoDB")
	return &MongoDB{Client: client, Database: client.Database(name)}, nil
}

func (m *MongoDB) Close() {
	if m.Client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := m.Client.Disconnect(ctx); err != nil {
		log.Error().Err(err).Msg("[DB] MongoDB disconnect failed")
		return
	}
	log.Info().Msg("[DB] MongoDB connection closed")
}
