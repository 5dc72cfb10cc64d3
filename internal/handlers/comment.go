package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"flamewars/internal/middleware"
	"flamewars/internal/models"
	"flamewars/internal/services"
)

type CommentHandler struct {
	comments *services.CommentService
	auth     middleware.Authenticator
}

func NewCommentHandler(comments *services.CommentService, auth middleware.Authenticator) *CommentHandler {
	return &CommentHandler{comments: comments, auth: auth}
}

// List GET /comments/:url
func (h *CommentHandler) List(c *gin.Context) {
	render := c.Query("render") == "html"
	comments, err := h.comments.List(c.Request.Context(), c.Param("url"), render)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ListCommentsResponse{Comments: comments})
}

// Add POST /comments/:url
// 输入校验先于身份校验，无效请求一律 400
func (h *CommentHandler) Add(c *gin.Context) {
	var req models.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RenderFailure(c, services.NewValidationError("malformed body"))
		return
	}

	in := services.AddInput{PageURL: c.Param("url"), Text: req.Comment, InReplyTo: req.InReplyTo}
	if _, err := h.comments.ValidateAdd(in); err != nil {
		RenderFailure(c, err)
		return
	}

	caller, err := middleware.ResolveCaller(c, h.auth, req.Authorization)
	if errors.Is(err, middleware.ErrMissingCredential) {
		RenderFailure(c, services.NewValidationError("authorization required"))
		return
	}
	if err != nil {
		RenderFailure(c, services.NewAuthenticationError(err))
		return
	}

	comment, location, err := h.comments.Add(c.Request.Context(), caller, in)
	if err != nil {
		RenderFailure(c, err)
		return
	}
	c.Header("Location", location)
	c.JSON(http.StatusCreated, models.AddCommentResponse{Success: true, Comment: comment})
}

// Edit PUT /comments/:url/:comment
func (h *CommentHandler) Edit(c *gin.Context) {
	var req models.EditCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RenderError(c, services.NewValidationError("malformed body"))
		return
	}

	caller, err := middleware.ResolveCaller(c, h.auth, req.Authorization)
	if err != nil {
		RenderError(c, services.NewAuthenticationError(err))
		return
	}

	err = h.comments.Edit(c.Request.Context(), caller, c.Param("url"), c.Param("comment"), req.Comment, req.Revision)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

// Delete DELETE /comments/:url/:comment
func (h *CommentHandler) Delete(c *gin.Context) {
	var req models.DeleteCommentRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			RenderError(c, services.NewValidationError("malformed body"))
			return
		}
	}

	caller, err := middleware.ResolveCaller(c, h.auth, req.Authorization)
	if err != nil {
		RenderError(c, services.NewAuthenticationError(err))
		return
	}

	if err := h.comments.Delete(c.Request.Context(), caller, c.Param("url"), c.Param("comment")); err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

// Count GET /comment-count?urls=a,b
func (h *CommentHandler) Count(c *gin.Context) {
	var urls []string
	for _, u := range strings.Split(c.Query("urls"), ",") {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}

	counts, err := h.comments.Count(c.Request.Context(), urls)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.CommentCountResponse{Counts: counts})
}
