package reconciler

import (
	"context"

	"blog-comment-api/internal/tree"
)

// Pagination is the server's page metadata for a comment listing.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasMore    bool `json:"has_more"`
}

// ListResult is one flat page of comments plus its pagination metadata.
type ListResult struct {
	Comments   []*tree.Comment
	Pagination Pagination
}

// LikeResult is the authoritative like state after a toggle.
type LikeResult struct {
	Liked bool
	Likes int
}

// DeleteResult reports which delete policy the server applied: soft-delete
// (structure kept, content suppressed) or hard excision of a leaf.
type DeleteResult struct {
	Soft bool
}

// CommentAPI is the set of collaborator operations the reconciler consumes.
// The HTTP implementation lives in internal/client; tests substitute a mock.
//
// Implementations must return *Error values: KindNetwork for transport
// failures, KindServerRejection for non-success responses.
type CommentAPI interface {
	ListComments(ctx context.Context, articleID int64, page, limit int, sortBy, order string) (*ListResult, error)
	CreateComment(ctx context.Context, articleID int64, content string) (*tree.Comment, error)
	CreateReply(ctx context.Context, parentCommentID int64, content string) (*tree.Comment, error)
	ToggleLike(ctx context.Context, commentID int64) (*LikeResult, error)
	DeleteComment(ctx context.Context, commentID int64) (*DeleteResult, error)
	EditComment(ctx context.Context, commentID int64, content string) (*tree.Comment, error)
}
