package dto

import "time"

// ListCommentsQuery selects a page of an article's comments.
// sort is one of created_at|likes, order is asc|desc.
type ListCommentsQuery struct {
	Page  int    `form:"page,default=1" binding:"omitempty,min=1"`
	Limit int    `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
	Sort  string `form:"sort,default=created_at" binding:"omitempty,oneof=created_at likes"`
	Order string `form:"order,default=asc" binding:"omitempty,oneof=asc desc"`
}

// CreateCommentRequest is the body for a new root-level comment.
type CreateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// CreateReplyRequest is the body for a reply to an existing comment.
type CreateReplyRequest struct {
	Content string `json:"content" binding:"required"`
}

// UpdateCommentRequest is the body for editing a comment.
type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// UserSummary is the author snapshot embedded in a comment.
type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
	Role     string `json:"role,omitempty"`
}

// CommentResponse is the flat wire representation of a comment. Threading is
// carried by parent_id only; nesting happens on the consuming side.
type CommentResponse struct {
	ID        int64       `json:"id"`
	Content   string      `json:"content"`
	UserID    int64       `json:"user_id"`
	ArticleID int64       `json:"article_id"`
	ParentID  *int64      `json:"parent_id,omitempty"`
	Likes     int         `json:"likes"`
	IsLiked   bool        `json:"is_liked"`
	Deleted   bool        `json:"deleted"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	User      UserSummary `json:"user"`
}

// PaginationResponse is the page metadata for a comment listing.
type PaginationResponse struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasMore    bool `json:"has_more"`
}

// ListCommentsResponse is one flat page plus pagination metadata.
type ListCommentsResponse struct {
	Comments   []*CommentResponse `json:"comments"`
	Pagination PaginationResponse `json:"pagination"`
}

// ToggleLikeResponse is the authoritative like state after a toggle.
type ToggleLikeResponse struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}

// Delete modes reported by DeleteCommentResponse.
const (
	DeleteModeSoft = "soft"
	DeleteModeHard = "hard"
)

// DeleteCommentResponse reports which delete policy was applied.
type DeleteCommentResponse struct {
	Deleted string `json:"deleted"`
}
