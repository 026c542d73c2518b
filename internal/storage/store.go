// Package storage provides the string key-value substrate the engines
// persist to. Entity tables are serialized as JSON objects keyed by entity
// id and written whole under one key per table.
package storage

import "context"

// Store keys. One key per entity table plus the current-session pointer.
const (
	KeyTasks       = "taskify_tasks"
	KeyUsers       = "taskify_users"
	KeyCurrentUser = "taskify_current_user"
)

// Store is a string-keyed key-value store. Get returns found=false when the
// key is absent.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
