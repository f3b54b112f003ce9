package repository

import (
	"context"

	"gorm.io/gorm"

	"blog-comment-api/internal/domain"
)

// LikeRepository defines the interface for comment-like data access
type LikeRepository interface {
	FindByUserAndComment(ctx context.Context, userID, commentID int64) (*domain.CommentLike, error)
	Create(ctx context.Context, like *domain.CommentLike) error
	Delete(ctx context.Context, id int64) error
	DeleteByComment(ctx context.Context, commentID int64) error
	CountByComment(ctx context.Context, commentID int64) (int64, error)
	FindLikedCommentIDs(ctx context.Context, userID int64, commentIDs []int64) ([]int64, error)
}

// likeRepositoryImpl is the GORM implementation of LikeRepository
type likeRepositoryImpl struct {
	db *gorm.DB
}

// NewLikeRepository creates a new instance of LikeRepository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepositoryImpl{db: db}
}

// FindByUserAndComment finds one user's like on one comment
func (r *likeRepositoryImpl) FindByUserAndComment(ctx context.Context, userID, commentID int64) (*domain.CommentLike, error) {
	var like domain.CommentLike
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND comment_id = ?", userID, commentID).
		First(&like).Error; err != nil {
		return nil, err
	}
	return &like, nil
}

// Create records a like
func (r *likeRepositoryImpl) Create(ctx context.Context, like *domain.CommentLike) error {
	return r.db.WithContext(ctx).Create(like).Error
}

// Delete removes a like row
func (r *likeRepositoryImpl) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&domain.CommentLike{}, id).Error
}

// DeleteByComment removes every like on a comment, used when the comment
// itself goes away
func (r *likeRepositoryImpl) DeleteByComment(ctx context.Context, commentID int64) error {
	return r.db.WithContext(ctx).
		Where("comment_id = ?", commentID).
		Delete(&domain.CommentLike{}).Error
}

// CountByComment counts likes on a comment
func (r *likeRepositoryImpl) CountByComment(ctx context.Context, commentID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.CommentLike{}).
		Where("comment_id = ?", commentID).
		Count(&count).Error
	return count, err
}

// FindLikedCommentIDs returns which of the given comments the user has
// liked, in one query, for overlaying is_liked on a listing
func (r *likeRepositoryImpl) FindLikedCommentIDs(ctx context.Context, userID int64, commentIDs []int64) ([]int64, error) {
	if len(commentIDs) == 0 {
		return nil, nil
	}
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&domain.CommentLike{}).
		Where("user_id = ? AND comment_id IN ?", userID, commentIDs).
		Pluck("comment_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
