package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flamewars/internal/store"
)

type recordingObserver struct {
	ops  []string
	errs []error
}

func (r *recordingObserver) ObserveStore(op string, _ time.Duration, err error) {
	r.ops = append(r.ops, op)
	r.errs = append(r.errs, err)
}

func TestInstrument(t *testing.T) {
	base, err := store.OpenPebbleInMemory()
	require.NoError(t, err)
	defer base.Close()

	obs := &recordingObserver{}
	s := store.Instrument(base, obs)
	ctx := context.Background()

	require.NoError(t, s.PutItem(ctx, commentRow("a.com", "c1", "u1"), true))
	_, err = s.GetItem(ctx, store.CommentKey("a.com", "missing"))
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.Query(ctx, store.PartitionKey("a.com"))
	require.NoError(t, err)

	assert.Equal(t, []string{"put", "get", "query"}, obs.ops)
	assert.NoError(t, obs.errs[0])
	assert.ErrorIs(t, obs.errs[1], store.ErrNotFound)
}

func TestInstrumentNilObserver(t *testing.T) {
	base, err := store.OpenPebbleInMemory()
	require.NoError(t, err)
	defer base.Close()

	assert.Same(t, base, store.Instrument(base, nil))
}
