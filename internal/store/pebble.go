package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	json "github.com/goccy/go-json"
)

const lockStripes = 64

// PebbleStore keeps rows in an embedded pebble database. Keys are
// "<PK>\x00<SK>" so a partition is one contiguous key range.
type PebbleStore struct {
	db     *pebble.DB
	life   sync.RWMutex // 读锁覆盖每次调用，Close 持写锁
	closed bool
	locks  [lockStripes]sync.Mutex
}

// ErrStoreClosed is returned by every call made after Close.
var ErrStoreClosed = errors.New("store: closed")

// enter holds the store open for the duration of one call.
func (s *PebbleStore) enter(ctx context.Context) (func(), error) {
	s.life.RLock()
	if s.closed {
		s.life.RUnlock()
		return nil, ErrStoreClosed
	}
	if err := ctx.Err(); err != nil {
		s.life.RUnlock()
		return nil, err
	}
	return s.life.RUnlock, nil
}

// OpenPebble opens (or creates) a pebble database at path.
func OpenPebble(path string) (*PebbleStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open pebble at %s: %w", path, err)
	}
	return &PebbleStore{db: db}, nil
}

// OpenPebbleInMemory opens a pebble database on an in-memory filesystem.
func OpenPebbleInMemory() (*PebbleStore, error) {
	db, err := pebble.Open("", &pebble.Options{FS: vfs.NewMem()})
	if err != nil {
		return nil, fmt.Errorf("open in-memory pebble: %w", err)
	}
	return &PebbleStore{db: db}, nil
}

// 按分区加锁，只在读-判断-写期间持有
func (s *PebbleStore) partitionLock(pk string) *sync.Mutex {
	return &s.locks[xxhash.Sum64String(pk)%lockStripes]
}

func rowKey(k Key) []byte {
	b := make([]byte, 0, len(k.PK)+1+len(k.SK))
	b = append(b, k.PK...)
	b = append(b, 0)
	return append(b, k.SK...)
}

func (s *PebbleStore) get(k Key) (Item, error) {
	raw, closer, err := s.db.Get(rowKey(k))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	var it Item
	if err := json.Unmarshal(raw, &it); err != nil {
		return nil, fmt.Errorf("decode row %s/%s: %w", k.PK, k.SK, err)
	}
	return it, nil
}

func (s *PebbleStore) set(k Key, it Item) error {
	raw, err := json.Marshal(it)
	if err != nil {
		return fmt.Errorf("encode row %s/%s: %w", k.PK, k.SK, err)
	}
	return s.db.Set(rowKey(k), raw, pebble.Sync)
}

func (s *PebbleStore) PutItem(ctx context.Context, item Item, ifNotExists bool) error {
	leave, err := s.enter(ctx)
	if err != nil {
		return err
	}
	defer leave()

	k := item.Key()
	if k.PK == "" || k.SK == "" {
		return fmt.Errorf("put item: missing primary key")
	}

	mu := s.partitionLock(k.PK)
	mu.Lock()
	defer mu.Unlock()

	if ifNotExists {
		_, err := s.get(k)
		if err == nil {
			return ErrConditionFailed
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	return s.set(k, item)
}

func (s *PebbleStore) GetItem(ctx context.Context, key Key) (Item, error) {
	leave, err := s.enter(ctx)
	if err != nil {
		return nil, err
	}
	defer leave()
	return s.get(key)
}

func (s *PebbleStore) UpdateItem(ctx context.Context, key Key, set Item, cond Condition) error {
	leave, err := s.enter(ctx)
	if err != nil {
		return err
	}
	defer leave()

	mu := s.partitionLock(key.PK)
	mu.Lock()
	defer mu.Unlock()

	current, err := s.get(key)
	if errors.Is(err, ErrNotFound) {
		return ErrConditionFailed
	}
	if err != nil {
		return err
	}
	if !cond.Evaluate(current) {
		return ErrConditionFailed
	}

	next := current.Merge(set)
	// key attributes are immutable
	next[AttrPK] = current[AttrPK]
	next[AttrSK] = current[AttrSK]
	return s.set(key, next)
}

func (s *PebbleStore) Query(ctx context.Context, partition string) ([]Item, error) {
	leave, err := s.enter(ctx)
	if err != nil {
		return nil, err
	}
	defer leave()

	lower := append([]byte(partition), 0)
	upper := append([]byte(partition), 1)
	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var items []Item
	for iter.First(); iter.Valid(); iter.Next() {
		var it Item
		if err := json.Unmarshal(iter.Value(), &it); err != nil {
			return nil, fmt.Errorf("decode row %q: %w", iter.Key(), err)
		}
		items = append(items, it)
	}
	return items, iter.Error()
}

func (s *PebbleStore) Ping(ctx context.Context) error {
	leave, err := s.enter(ctx)
	if err != nil {
		return err
	}
	leave()
	return nil
}

// Close is safe to call more than once; only the first call closes pebble.
func (s *PebbleStore) Close() error {
	s.life.Lock()
	defer s.life.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
