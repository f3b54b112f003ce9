package domain

// Comment represents one comment on an article. Threading is flat in
// storage: ParentID points at another comment of the same article, nil for
// root-level. The nested representation is built on the client side.
//
// Deleting is two-tier: a comment that still has replies is soft-deleted
// (IsDeleted set, content suppressed at render time) so the thread below it
// keeps its structure; a leaf is removed outright.
type Comment struct {
	BaseModel
	ArticleID int64  `gorm:"not null;index:idx_comments_article_id" json:"article_id"`
	UserID    int64  `gorm:"not null;index:idx_comments_user_id" json:"user_id"`
	ParentID  *int64 `gorm:"index:idx_comments_parent_id" json:"parent_id,omitempty"`
	Content   string `gorm:"type:text;not null" json:"content"`
	Likes     int    `gorm:"not null;default:0" json:"likes"`
	IsDeleted bool   `gorm:"not null;default:false;index:idx_comments_is_deleted" json:"deleted"`
	User      User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName specifies the table name for Comment
func (Comment) TableName() string {
	return "comments"
}

// CommentLike records one user's like on one comment. The unique index
// makes the like idempotent per user; toggling deletes the row.
type CommentLike struct {
	BaseModel
	UserID    int64 `gorm:"not null;uniqueIndex:uq_comment_likes_user_comment" json:"user_id"`
	CommentID int64 `gorm:"not null;uniqueIndex:uq_comment_likes_user_comment;index:idx_comment_likes_comment_id" json:"comment_id"`
}

// TableName specifies the table name for CommentLike
func (CommentLike) TableName() string {
	return "comment_likes"
}
