package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"blog-comment-api/internal/domain"
)

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	FindByID(ctx context.Context, id int64) (*domain.Comment, error)
	FindPageByArticle(ctx context.Context, articleID int64, page, limit int, sortBy, order string) ([]*domain.Comment, int64, error)
	Update(ctx context.Context, comment *domain.Comment) error
	MarkDeleted(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	CountReplies(ctx context.Context, parentID int64) (int64, error)
	CountByArticle(ctx context.Context, articleID int64) (int64, error)
	FindPurgeableBefore(ctx context.Context, cutoff time.Time) ([]*domain.Comment, error)
	AdjustLikes(ctx context.Context, id int64, delta int) error
}

// commentRepositoryImpl is the GORM implementation of CommentRepository
type commentRepositoryImpl struct {
	db *gorm.DB
}

// NewCommentRepository creates a new instance of CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepositoryImpl{db: db}
}

// Create creates a new comment
func (r *commentRepositoryImpl) Create(ctx context.Context, comment *domain.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// FindByID finds a comment by ID with its author preloaded
func (r *commentRepositoryImpl) FindByID(ctx context.Context, id int64) (*domain.Comment, error) {
	var comment domain.Comment
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("id = ?", id).
		First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// FindPageByArticle returns one page of an article's comments in flat form
// plus the article's total comment count. sortBy must be a whitelisted
// column; the service layer validates it before calling.
func (r *commentRepositoryImpl) FindPageByArticle(ctx context.Context, articleID int64, page, limit int, sortBy, order string) ([]*domain.Comment, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&domain.Comment{}).
		Where("article_id = ?", articleID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []*domain.Comment
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("article_id = ?", articleID).
		Order(sortBy + " " + order).
		Offset(offset).
		Limit(limit).
		Find(&comments).Error; err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// Update persists content changes on a comment
func (r *commentRepositoryImpl) Update(ctx context.Context, comment *domain.Comment) error {
	return r.db.WithContext(ctx).Save(comment).Error
}

// MarkDeleted soft-deletes a comment, keeping the row so replies below it
// stay attached
func (r *commentRepositoryImpl) MarkDeleted(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&domain.Comment{}).
		Where("id = ?", id).
		Update("is_deleted", true).Error
}

// Delete removes a comment row outright
func (r *commentRepositoryImpl) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&domain.Comment{}, id).Error
}

// CountReplies counts direct replies of a comment
func (r *commentRepositoryImpl) CountReplies(ctx context.Context, parentID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Comment{}).
		Where("parent_id = ?", parentID).
		Count(&count).Error
	return count, err
}

// CountByArticle counts all comments of an article
func (r *commentRepositoryImpl) CountByArticle(ctx context.Context, articleID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Comment{}).
		Where("article_id = ?", articleID).
		Count(&count).Error
	return count, err
}

// FindPurgeableBefore finds soft-deleted comments older than cutoff that no
// longer have any replies, so keeping them preserves no structure
func (r *commentRepositoryImpl) FindPurgeableBefore(ctx context.Context, cutoff time.Time) ([]*domain.Comment, error) {
	var comments []*domain.Comment
	err := r.db.WithContext(ctx).
		Where("is_deleted = ? AND updated_at < ?", true, cutoff).
		Where("id NOT IN (?)", r.db.Model(&domain.Comment{}).
			Select("parent_id").
			Where("parent_id IS NOT NULL")).
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// AdjustLikes changes the denormalized like counter by delta, clamped at zero
func (r *commentRepositoryImpl) AdjustLikes(ctx context.Context, id int64, delta int) error {
	return r.db.WithContext(ctx).
		Model(&domain.Comment{}).
		Where("id = ?", id).
		Update("likes", gorm.Expr("CASE WHEN likes + ? < 0 THEN 0 ELSE likes + ? END", delta, delta)).Error
}
