package store

import (
	"context"
	"errors"
)

var (
	// ErrConditionFailed 条件写入的前置条件不成立
	ErrConditionFailed = errors.New("store: condition failed")
	ErrNotFound        = errors.New("store: item not found")
)

// Store is the key-value backend the comment service writes through.
// Every call is a single-row atomic operation; the backend is the only
// synchronization point between concurrent requests.
type Store interface {
	// PutItem writes a full row. With ifNotExists a row already present
	// under the same key yields ErrConditionFailed.
	PutItem(ctx context.Context, item Item, ifNotExists bool) error
	GetItem(ctx context.Context, key Key) (Item, error)
	// UpdateItem applies set to an existing row only if cond holds against
	// the stored row, atomically. Otherwise ErrConditionFailed.
	UpdateItem(ctx context.Context, key Key, set Item, cond Condition) error
	// Query returns every row of a partition ordered by sort key.
	Query(ctx context.Context, partition string) ([]Item, error)
	Ping(ctx context.Context) error
	Close() error
}
