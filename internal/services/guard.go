package services

import (
	"flamewars/internal/models"
	"flamewars/internal/store"
)

// CanMutate 只有作者本人可以编辑或删除评论，没有管理员越权
func CanMutate(callerID string, r *models.CommentRecord) bool {
	return callerID != "" && callerID == r.Author.ID
}

// OwnerCondition is the store precondition enforcing CanMutate and
// liveness atomically with the write itself.
func OwnerCondition(callerID string) store.Condition {
	return store.Condition{
		store.Equals(store.AttrUserID, store.S(callerID)),
		store.NotExists(store.AttrDeletedAt),
	}
}
