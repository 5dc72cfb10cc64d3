package models

// Author 评论作者，创建时从已认证的调用方捕获，之后不可变
type Author struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CommentRecord is a comment row as stored in a page partition.
type CommentRecord struct {
	ID        string
	PageURL   string
	ParentID  string // empty for top-level comments
	Text      string
	Author    Author
	Timestamp string
	EditedAt  string
	DeletedAt string
	IsEdited  bool
	IsDeleted bool
	Revision  int64
}

// Tombstoned reports whether the comment has been soft-deleted.
func (r *CommentRecord) Tombstoned() bool {
	return r.IsDeleted || r.DeletedAt != ""
}

// Edited reports whether the comment carries edit provenance.
func (r *CommentRecord) Edited() bool {
	return r.IsEdited || r.EditedAt != ""
}

// Comment 返回给读者的评论节点，Replies 只在读取时物化
type Comment struct {
	ID        string     `json:"id"`
	Author    Author     `json:"author"`
	Text      string     `json:"text"`
	Timestamp string     `json:"timestamp"`
	IsEdited  bool       `json:"isEdited"`
	Replies   []*Comment `json:"replies"`
	HTML      string     `json:"html,omitempty"`

	deleted bool
}

// MarkDeleted flags the node as a tombstone placeholder.
func (c *Comment) MarkDeleted() {
	c.deleted = true
}

// IsTombstone reports whether the node stands in for a deleted comment.
func (c *Comment) IsTombstone() bool {
	return c.deleted
}
