package services_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flamewars/internal/models"
	"flamewars/internal/services"
)

func rec(id, parent, ts string) *models.CommentRecord {
	return &models.CommentRecord{
		ID:        id,
		PageURL:   "example.com/post",
		ParentID:  parent,
		Text:      "text " + id,
		Author:    models.Author{ID: "u-" + id, Name: "user " + id},
		Timestamp: ts,
	}
}

func deleted(r *models.CommentRecord) *models.CommentRecord {
	r.IsDeleted = true
	r.DeletedAt = "2024-02-01T00:00:00.000Z"
	return r
}

func ids(forest []*models.Comment) []string {
	out := make([]string, 0, len(forest))
	for _, c := range forest {
		out = append(out, c.ID)
	}
	return out
}

func TestBuildThreadEmpty(t *testing.T) {
	forest := services.BuildThread(nil)
	require.NotNil(t, forest)
	assert.Empty(t, forest)
}

func TestBuildThreadNesting(t *testing.T) {
	forest := services.BuildThread([]*models.CommentRecord{
		rec("c", "b", "2024-01-01T00:00:03.000Z"),
		rec("a", "", "2024-01-01T00:00:01.000Z"),
		rec("b", "a", "2024-01-01T00:00:02.000Z"),
		rec("d", "", "2024-01-01T00:00:04.000Z"),
	})

	require.Equal(t, []string{"a", "d"}, ids(forest))
	require.Equal(t, []string{"b"}, ids(forest[0].Replies))
	require.Equal(t, []string{"c"}, ids(forest[0].Replies[0].Replies))
	assert.NotNil(t, forest[1].Replies)
	assert.Empty(t, forest[1].Replies)
}

func TestBuildThreadSiblingOrder(t *testing.T) {
	forest := services.BuildThread([]*models.CommentRecord{
		rec("r3", "", "2024-01-01T00:00:03.000Z"),
		rec("r1", "", "2024-01-01T00:00:01.000Z"),
		rec("r2", "", "2024-01-01T00:00:02.000Z"),
		// same timestamp falls back to id
		rec("r0b", "", "2024-01-01T00:00:00.000Z"),
		rec("r0a", "", "2024-01-01T00:00:00.000Z"),
	})
	assert.Equal(t, []string{"r0a", "r0b", "r1", "r2", "r3"}, ids(forest))
}

func TestBuildThreadOrphansAreTopLevel(t *testing.T) {
	forest := services.BuildThread([]*models.CommentRecord{
		rec("a", "missing", "2024-01-01T00:00:01.000Z"),
		rec("self", "self", "2024-01-01T00:00:02.000Z"),
	})
	assert.Equal(t, []string{"a", "self"}, ids(forest))
}

func TestBuildThreadCycleTerminates(t *testing.T) {
	forest := services.BuildThread([]*models.CommentRecord{
		rec("x", "y", "2024-01-01T00:00:01.000Z"),
		rec("y", "x", "2024-01-01T00:00:02.000Z"),
		rec("z", "", "2024-01-01T00:00:03.000Z"),
	})
	// rows that never reach a root are not emitted
	assert.Equal(t, []string{"z"}, ids(forest))
}

func TestBuildThreadDuplicateIDsEmittedOnce(t *testing.T) {
	forest := services.BuildThread([]*models.CommentRecord{
		rec("a", "", "2024-01-01T00:00:01.000Z"),
		rec("a", "", "2024-01-01T00:00:01.000Z"),
	})
	assert.Equal(t, 1, services.CountNodes(forest))
}

func TestBuildThreadTombstones(t *testing.T) {
	// A <- B(deleted) <- C keeps B as a placeholder
	forest := services.BuildThread([]*models.CommentRecord{
		rec("A", "", "2024-01-01T00:00:01.000Z"),
		deleted(rec("B", "A", "2024-01-01T00:00:02.000Z")),
		rec("C", "B", "2024-01-01T00:00:03.000Z"),
	})

	require.Equal(t, []string{"A"}, ids(forest))
	require.Len(t, forest[0].Replies, 1)

	b := forest[0].Replies[0]
	assert.Equal(t, "B", b.ID)
	assert.Equal(t, services.DeletedText, b.Text)
	assert.Equal(t, services.AnonymousAuthor, b.Author)
	assert.Equal(t, "", b.Author.ID)
	assert.False(t, b.IsEdited)
	assert.True(t, b.IsTombstone())
	assert.Equal(t, []string{"C"}, ids(b.Replies))
}

func TestBuildThreadPrunesLeafTombstones(t *testing.T) {
	records := []*models.CommentRecord{
		rec("A", "", "2024-01-01T00:00:01.000Z"),
		deleted(rec("B", "A", "2024-01-01T00:00:02.000Z")),
		rec("C", "B", "2024-01-01T00:00:03.000Z"),
		// D only has a deleted child, so both vanish
		deleted(rec("D", "", "2024-01-01T00:00:04.000Z")),
		deleted(rec("E", "D", "2024-01-01T00:00:05.000Z")),
		deleted(rec("F", "", "2024-01-01T00:00:06.000Z")),
		rec("G", "F", "2024-01-01T00:00:07.000Z"),
	}

	forest := services.BuildThread(records)
	assert.Equal(t, []string{"A", "F"}, ids(forest))
	assert.Equal(t, 5, services.CountNodes(forest))
}

func TestBuildThreadEditedFlag(t *testing.T) {
	r := rec("a", "", "2024-01-01T00:00:01.000Z")
	r.EditedAt = "2024-01-01T00:00:09.000Z"

	forest := services.BuildThread([]*models.CommentRecord{r})
	require.Len(t, forest, 1)
	assert.True(t, forest[0].IsEdited)
}

func TestBuildThreadIsIdempotent(t *testing.T) {
	records := []*models.CommentRecord{
		rec("a", "", "2024-01-01T00:00:01.000Z"),
		rec("b", "a", "2024-01-01T00:00:02.000Z"),
		deleted(rec("c", "", "2024-01-01T00:00:03.000Z")),
		rec("d", "c", "2024-01-01T00:00:04.000Z"),
	}
	assert.Equal(t, services.BuildThread(records), services.BuildThread(records))
}

func TestBuildThreadOrderIgnoresInputOrder(t *testing.T) {
	rows := func() []*models.CommentRecord {
		return []*models.CommentRecord{
			rec("b", "", "2024-01-01T00:00:01.000Z"),
			rec("a", "", "2024-01-01T00:00:01.000Z"),
			rec("c", "", "2024-01-01T00:00:00.000Z"),
			rec("b2", "b", "2024-01-01T00:00:05.000Z"),
			rec("b1", "b", "2024-01-01T00:00:05.000Z"),
		}
	}
	forward := rows()
	reversed := rows()
	slices.Reverse(reversed)

	for _, in := range [][]*models.CommentRecord{forward, reversed} {
		forest := services.BuildThread(in)
		require.Equal(t, []string{"c", "a", "b"}, ids(forest))
		assert.Equal(t, []string{"b1", "b2"}, ids(forest[2].Replies))
	}
}
