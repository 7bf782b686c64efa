// Package storage provides key-addressed blob storage for job artifacts.
package storage

import (
	"context"
	"time"
)

// Store is the durable blob storage contract. Keys are opaque strings; every
// artifact is written exactly once and never mutated afterwards.
type Store interface {
	// Put stores data under key with the given content type.
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// Get retrieves the bytes stored under key.
	Get(ctx context.Context, key string) ([]byte, error)

	// URLFor returns a time-limited retrieval URL for key.
	URLFor(ctx context.Context, key string, ttl time.Duration) (string, error)

	// Remove deletes the blob stored under key. The pipeline never calls this;
	// artifact retention is an operator concern.
	Remove(ctx context.Context, key string) error
}
