package models

// ListCommentsResponse GET /comments/:url 的响应体
type ListCommentsResponse struct {
	Comments []*Comment `json:"comments"`
}

// AddCommentRequest POST /comments/:url 的请求体
type AddCommentRequest struct {
	Comment       string `json:"comment"`
	InReplyTo     string `json:"inReplyTo,omitempty"`
	Authorization string `json:"authorization,omitempty"`
}

type AddCommentResponse struct {
	Success bool     `json:"success"`
	Comment *Comment `json:"comment,omitempty"`
}

// EditCommentRequest PUT /comments/:url/:comment 的请求体
// Revision is optional; when set the edit only applies if the stored
// revision still matches.
type EditCommentRequest struct {
	Comment       string `json:"comment"`
	Revision      *int64 `json:"revision,omitempty"`
	Authorization string `json:"authorization,omitempty"`
}

type DeleteCommentRequest struct {
	Authorization string `json:"authorization,omitempty"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// URLCount 单个页面的评论数
type URLCount struct {
	URL   string `json:"url"`
	Count int    `json:"count"`
}

type CommentCountResponse struct {
	Counts []URLCount `json:"counts"`
}
