package services

import "flamewars/internal/models"

const (
	DeletedText       = "This comment was deleted"
	DeletedAuthorName = "[deleted]"
)

// AnonymousAuthor replaces the author of a tombstoned comment.
var AnonymousAuthor = models.Author{ID: "", Name: DeletedAuthorName}

// ApplyTombstone decides how one comment is materialized once its surviving
// children are known. A deleted comment without children is dropped; with
// children it is kept as an anonymous placeholder so the replies stay in
// context. ok is false when the node must not appear.
func ApplyTombstone(r *models.CommentRecord, children []*models.Comment) (node *models.Comment, ok bool) {
	if children == nil {
		children = []*models.Comment{}
	}

	if r.Tombstoned() {
		if len(children) == 0 {
			return nil, false
		}
		node = &models.Comment{
			ID:        r.ID,
			Author:    AnonymousAuthor,
			Text:      DeletedText,
			Timestamp: r.Timestamp,
			IsEdited:  false,
			Replies:   children,
		}
		node.MarkDeleted()
		return node, true
	}

	return &models.Comment{
		ID:        r.ID,
		Author:    r.Author,
		Text:      r.Text,
		Timestamp: r.Timestamp,
		IsEdited:  r.Edited(),
		Replies:   children,
	}, true
}
