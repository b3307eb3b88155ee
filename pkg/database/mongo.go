// Package database owns the MongoDB connection for the API.
//
// Connect is called once at boot; repositories obtain their collections via
// Collection(name). All documents are addressed by ObjectID; ParseID is the
// single place raw path/query ids are converted (malformed ids map to 400).
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/bloomkart/bloomkart/config"
)

var (
	client *mongo.Client
	db     *mongo.Database
)

// ErrInvalidID is returned by ParseID for malformed hex ids.
var ErrInvalidID = errors.New("database: invalid id")

// Connect opens the MongoDB client and verifies the connection with a ping.
func Connect(ctx context.Context) error {
	opts := options.Client().
		ApplyURI(config.MongoURI()).
		SetServerSelectionTimeout(10 * time.Second)

	c, err := mongo.Connect(ctx, opts)
	if err != nil {
		return fmt.Errorf("database: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx, readpref.Primary()); err != nil {
		return fmt.Errorf("database: ping: %w", err)
	}

	client = c
	db = c.Database(config.MongoDB())
	return nil
}

// Disconnect closes the client. Called during graceful shutdown.
func Disconnect(ctx context.Context) error {
	if client == nil {
		return nil
	}
	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("database: disconnect: %w", err)
	}
	client, db = nil, nil
	return nil
}

// DB returns the connected database handle. Panics when called before
// Connect — a programming error, not a runtime condition.
func DB() *mongo.Database {
	if db == nil {
		panic("database: DB() called before Connect")
	}
	return db
}

// Collection returns a handle to the named collection.
func Collection(name string) *mongo.Collection {
	return DB().Collection(name)
}

// Ping verifies the connection is alive. Used by the health endpoint.
func Ping(ctx context.Context) error {
	if client == nil {
		return errors.New("database: not connected")
	}
	return client.Ping(ctx, readpref.Primary())
}

// ParseID converts a hex string into an ObjectID.
func ParseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return id, nil
}

// IsDuplicateKey reports whether err is a unique-index violation.
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

// IsNoDocuments reports whether err means the query matched nothing.
func IsNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
