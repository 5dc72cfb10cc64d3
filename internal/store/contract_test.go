package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flamewars/internal/models"
	"flamewars/internal/store"
)

func commentRow(page, id, user string) store.Item {
	return store.EncodeComment(&models.CommentRecord{
		ID:        id,
		PageURL:   page,
		Text:      "text " + id,
		Author:    models.Author{ID: user, Name: user},
		Timestamp: "2024-01-01T00:00:00.000Z",
	})
}

// runStoreContract exercises the behaviour every backend must share.
func runStoreContract(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("put if not exists rejects duplicates", func(t *testing.T) {
		it := commentRow("a.com/dup", "c1", "u1")
		require.NoError(t, s.PutItem(ctx, it, true))
		assert.ErrorIs(t, s.PutItem(ctx, it, true), store.ErrConditionFailed)
		// unconditional put overwrites
		require.NoError(t, s.PutItem(ctx, it, false))
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := s.GetItem(ctx, store.CommentKey("a.com/none", "x"))
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("conditional update", func(t *testing.T) {
		key := store.CommentKey("a.com/update", "c1")
		require.NoError(t, s.PutItem(ctx, commentRow("a.com/update", "c1", "u1"), true))

		owner := store.Condition{
			store.Equals(store.AttrUserID, store.S("u1")),
			store.NotExists(store.AttrDeletedAt),
		}
		err := s.UpdateItem(ctx, key, store.Item{store.AttrDeletedAt: store.S("now")},
			store.Condition{store.Equals(store.AttrUserID, store.S("u2"))})
		assert.ErrorIs(t, err, store.ErrConditionFailed)

		require.NoError(t, s.UpdateItem(ctx, key, store.Item{
			store.AttrDeletedAt: store.S("now"),
			store.AttrIsDeleted: store.Bool(true),
		}, owner))
		assert.ErrorIs(t, s.UpdateItem(ctx, key, store.Item{store.AttrDeletedAt: store.S("later")}, owner), store.ErrConditionFailed)

		it, err := s.GetItem(ctx, key)
		require.NoError(t, err)
		rec, err := store.DecodeComment(it)
		require.NoError(t, err)
		assert.Equal(t, "now", rec.DeletedAt)
		assert.True(t, rec.IsDeleted)
		assert.Equal(t, "text c1", rec.Text)
	})

	t.Run("update of a missing row fails its condition", func(t *testing.T) {
		err := s.UpdateItem(ctx, store.CommentKey("a.com/update", "ghost"),
			store.Item{store.AttrText: store.S("x")}, nil)
		assert.ErrorIs(t, err, store.ErrConditionFailed)
	})

	t.Run("query is scoped to one partition", func(t *testing.T) {
		require.NoError(t, s.PutItem(ctx, store.EncodePage(&models.Page{URL: "a.com/q", CreatedAt: "t"}), true))
		require.NoError(t, s.PutItem(ctx, commentRow("a.com/q", "c2", "u1"), true))
		require.NoError(t, s.PutItem(ctx, commentRow("a.com/q", "c1", "u1"), true))
		require.NoError(t, s.PutItem(ctx, commentRow("a.com/q2", "c3", "u1"), true))

		items, err := s.Query(ctx, store.PartitionKey("a.com/q"))
		require.NoError(t, err)
		require.Len(t, items, 3)

		var comments []string
		pages := 0
		for _, it := range items {
			kind, err := store.DecodeKind(it)
			require.NoError(t, err)
			if kind == store.KindPage {
				pages++
				continue
			}
			rec, err := store.DecodeComment(it)
			require.NoError(t, err)
			comments = append(comments, rec.ID)
		}
		assert.Equal(t, 1, pages)
		assert.ElementsMatch(t, []string{"c1", "c2"}, comments)
	})

	t.Run("concurrent conditional updates have one winner", func(t *testing.T) {
		key := store.CommentKey("a.com/race", "c1")
		require.NoError(t, s.PutItem(ctx, commentRow("a.com/race", "c1", "u1"), true))

		cond := store.Condition{store.NotExists(store.AttrDeletedAt)}
		var wg sync.WaitGroup
		results := make(chan error, 8)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results <- s.UpdateItem(ctx, key, store.Item{store.AttrDeletedAt: store.S("now")}, cond)
			}()
		}
		wg.Wait()
		close(results)

		wins := 0
		for err := range results {
			if err == nil {
				wins++
				continue
			}
			assert.ErrorIs(t, err, store.ErrConditionFailed)
		}
		assert.Equal(t, 1, wins)
	})
}
