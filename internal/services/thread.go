package services

import (
	"cmp"
	"slices"

	"flamewars/internal/models"
)

// BuildThread reconstructs the reply forest of one page from its unordered
// comment rows. Rows are bucketed by parent in a single pass; a row whose
// parent is not in the partition is promoted to the top level. Siblings are
// ordered by timestamp, then id.
func BuildThread(records []*models.CommentRecord) []*models.Comment {
	present := make(map[string]bool, len(records))
	for _, r := range records {
		present[r.ID] = true
	}

	byParent := make(map[string][]*models.CommentRecord)
	for _, r := range records {
		parent := r.ParentID
		if parent == r.ID || !present[parent] {
			parent = ""
		}
		byParent[parent] = append(byParent[parent], r)
	}
	for _, siblings := range byParent {
		slices.SortStableFunc(siblings, func(a, b *models.CommentRecord) int {
			return cmp.Or(
				cmp.Compare(a.Timestamp, b.Timestamp),
				cmp.Compare(a.ID, b.ID),
			)
		})
	}

	visited := make(map[string]bool, len(records))
	var build func(parent string) []*models.Comment
	build = func(parent string) []*models.Comment {
		out := []*models.Comment{}
		for _, r := range byParent[parent] {
			// duplicate ids and cycles must not emit a row twice
			if visited[r.ID] {
				continue
			}
			visited[r.ID] = true

			children := build(r.ID)
			if node, ok := ApplyTombstone(r, children); ok {
				out = append(out, node)
			}
		}
		return out
	}
	return build("")
}

// CountNodes returns the number of nodes in a forest.
func CountNodes(forest []*models.Comment) int {
	n := 0
	for _, c := range forest {
		n += 1 + CountNodes(c.Replies)
	}
	return n
}
