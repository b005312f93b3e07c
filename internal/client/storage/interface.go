// Package storage is the client's durable key→value store, backed by a local
// sqlite database. It survives process restarts and holds the persisted
// session (auth_token/auth_user, see common).
package storage

import "context"

type Repository interface {
	// Get returns the value for key, or nil when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
