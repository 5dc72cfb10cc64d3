package store

import "strings"

const (
	PagePrefix    = "PAGE#"
	CommentPrefix = "COMMENT#"
)

// 属性名，与嵌入端历史数据保持一致
const (
	AttrPK        = "PK"
	AttrSK        = "SK"
	AttrKind      = "kind"
	AttrPageURL   = "pageUrl"
	AttrText      = "commentText"
	AttrParent    = "parent"
	AttrTimestamp = "timestamp"
	AttrAuthor    = "author"
	AttrUserID    = "userId"
	AttrIsDeleted = "isDeleted"
	AttrIsEdited  = "isEdited"
	AttrEditedAt  = "editedAt"
	AttrDeletedAt = "deletedAt"
	AttrRevision  = "revision"
	AttrCreatedAt = "createdAt"
)

// Kind discriminates the row variants sharing a partition.
type Kind string

const (
	KindPage    Kind = "page"
	KindComment Kind = "comment"
)

// PartitionKey expects an already normalized page URL.
func PartitionKey(pageURL string) string {
	return PagePrefix + pageURL
}

func CommentKey(pageURL, commentID string) Key {
	return Key{PK: PartitionKey(pageURL), SK: CommentSortKey(commentID)}
}

func PageKey(pageURL string) Key {
	pk := PartitionKey(pageURL)
	return Key{PK: pk, SK: pk}
}

func CommentSortKey(commentID string) string {
	return CommentPrefix + commentID
}

// ParentRef encodes a parent link; top-level comments get "".
func ParentRef(parentID string) string {
	if parentID == "" {
		return ""
	}
	return CommentPrefix + parentID
}

// ParseCommentKey strips the comment prefix. ok is false for anything that
// is not a comment reference, including the empty top-level marker.
func ParseCommentKey(ref string) (id string, ok bool) {
	if !strings.HasPrefix(ref, CommentPrefix) {
		return "", false
	}
	id = strings.TrimPrefix(ref, CommentPrefix)
	return id, id != ""
}
