// Package kv is the persistent key-value adapter behind the session,
// favorites and cart stores: string keys to string values that survive
// process restarts.
//
// Get reports absence with ok=false rather than an error. Every other
// failure is an opaque I/O error; callers that find a value they cannot
// parse treat it as absent and delete the key.
package kv

import "context"

type Repository interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
	RemoveMany(ctx context.Context, keys []string) error
	Clear(ctx context.Context) error
}
