package store

import (
	"context"
	"time"
)

// Observer receives the latency and outcome of every store call.
type Observer interface {
	ObserveStore(op string, d time.Duration, err error)
}

type instrumented struct {
	next Store
	obs  Observer
}

// Instrument wraps s so every call is reported to obs.
func Instrument(s Store, obs Observer) Store {
	if obs == nil {
		return s
	}
	return &instrumented{next: s, obs: obs}
}

func (i *instrumented) observe(op string, start time.Time, err error) {
	i.obs.ObserveStore(op, time.Since(start), err)
}

func (i *instrumented) PutItem(ctx context.Context, item Item, ifNotExists bool) (err error) {
	defer func(start time.Time) { i.observe("put", start, err) }(time.Now())
	return i.next.PutItem(ctx, item, ifNotExists)
}

func (i *instrumented) GetItem(ctx context.Context, key Key) (it Item, err error) {
	defer func(start time.Time) { i.observe("get", start, err) }(time.Now())
	return i.next.GetItem(ctx, key)
}

func (i *instrumented) UpdateItem(ctx context.Context, key Key, set Item, cond Condition) (err error) {
	defer func(start time.Time) { i.observe("update", start, err) }(time.Now())
	return i.next.UpdateItem(ctx, key, set, cond)
}

func (i *instrumented) Query(ctx context.Context, partition string) (items []Item, err error) {
	defer func(start time.Time) { i.observe("query", start, err) }(time.Now())
	return i.next.Query(ctx, partition)
}

func (i *instrumented) Ping(ctx context.Context) error {
	return i.next.Ping(ctx)
}

func (i *instrumented) Close() error {
	return i.next.Close()
}
