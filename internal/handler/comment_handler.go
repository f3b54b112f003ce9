package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blog-comment-api/internal/dto"
	"blog-comment-api/internal/middleware"
	"blog-comment-api/internal/response"
	"blog-comment-api/internal/service"
)

// CommentHandler handles comment-related HTTP requests
type CommentHandler struct {
	commentService service.CommentService
	logger         *zap.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentService service.CommentService, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		logger:         logger,
	}
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid "+name)
		return 0, false
	}
	return id, true
}

func requireUser(c *gin.Context) (int64, bool) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Authentication required")
		return 0, false
	}
	return userID, true
}

// ListComments godoc
// @Summary      List comments for an article
// @Description  Returns one flat page of comments; threading is carried by parent_id.
// @Description  When the request carries a valid token, is_liked reflects the viewer.
// @Tags         comments
// @Produce      json
// @Param        articleId path int true "Article ID"
// @Param        page query int false "Page number (default 1)"
// @Param        limit query int false "Page size (default 20, max 100)"
// @Param        sort query string false "Sort key: created_at or likes"
// @Param        order query string false "Sort order: asc or desc"
// @Success      200 {object} dto.ListCommentsResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Router       /articles/{articleId}/comments [get]
func (h *CommentHandler) ListComments(c *gin.Context) {
	articleID, ok := parseIDParam(c, "articleId")
	if !ok {
		return
	}

	var q dto.ListCommentsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid query parameters")
		return
	}

	var viewerID *int64
	if id, authed := middleware.UserIDFromContext(c); authed {
		viewerID = &id
	}

	page, err := h.commentService.ListComments(c.Request.Context(), articleID, &q, viewerID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// CreateComment godoc
// @Summary      Create a root-level comment
// @Tags         comments
// @Accept       json
// @Produce      json
// @Param        articleId path int true "Article ID"
// @Param        request body dto.CreateCommentRequest true "Comment body"
// @Success      201 {object} dto.CommentResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /articles/{articleId}/comments [post]
func (h *CommentHandler) CreateComment(c *gin.Context) {
	articleID, ok := parseIDParam(c, "articleId")
	if !ok {
		return
	}
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	comment, err := h.commentService.CreateComment(c.Request.Context(), articleID, userID, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// CreateReply godoc
// @Summary      Reply to a comment
// @Description  Creates a nested reply under the given comment. The reply lands
// @Description  on the same article as its parent.
// @Tags         comments
// @Accept       json
// @Produce      json
// @Param        commentId path int true "Parent comment ID"
// @Param        request body dto.CreateReplyRequest true "Reply body"
// @Success      201 {object} dto.CommentResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /comments/{commentId}/replies [post]
func (h *CommentHandler) CreateReply(c *gin.Context) {
	commentID, ok := parseIDParam(c, "commentId")
	if !ok {
		return
	}
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req dto.CreateReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	reply, err := h.commentService.CreateReply(c.Request.Context(), commentID, userID, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, reply)
}

// ToggleLike godoc
// @Summary      Toggle a like on a comment
// @Description  Likes the comment if the viewer has not liked it, removes the
// @Description  like otherwise. Returns the authoritative state.
// @Tags         comments
// @Produce      json
// @Param        commentId path int true "Comment ID"
// @Success      200 {object} dto.ToggleLikeResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /comments/{commentId}/like [post]
func (h *CommentHandler) ToggleLike(c *gin.Context) {
	commentID, ok := parseIDParam(c, "commentId")
	if !ok {
		return
	}
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	result, err := h.commentService.ToggleLike(c.Request.Context(), commentID, userID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpdateComment godoc
// @Summary      Edit a comment
// @Tags         comments
// @Accept       json
// @Produce      json
// @Param        commentId path int true "Comment ID"
// @Param        request body dto.UpdateCommentRequest true "New content"
// @Success      200 {object} dto.CommentResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /comments/{commentId} [put]
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	commentID, ok := parseIDParam(c, "commentId")
	if !ok {
		return
	}
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req dto.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	comment, err := h.commentService.UpdateComment(c.Request.Context(), commentID, userID, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

// DeleteComment godoc
// @Summary      Delete a comment
// @Description  A comment with replies is soft-deleted so the thread keeps its
// @Description  structure; a leaf is removed outright. The response reports
// @Description  which mode applied.
// @Tags         comments
// @Produce      json
// @Param        commentId path int true "Comment ID"
// @Success      200 {object} dto.DeleteCommentResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /comments/{commentId} [delete]
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	commentID, ok := parseIDParam(c, "commentId")
	if !ok {
		return
	}
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	result, err := h.commentService.DeleteComment(c.Request.Context(), commentID, userID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
