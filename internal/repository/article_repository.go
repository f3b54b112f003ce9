package repository

import (
	"context"

	"gorm.io/gorm"

	"blog-comment-api/internal/domain"
)

// ArticleRepository defines the read-only article access the comment API
// needs: existence and publication checks. Article authoring is another
// service's concern.
type ArticleRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Article, error)
}

type articleRepositoryImpl struct {
	db *gorm.DB
}

// NewArticleRepository creates a new instance of ArticleRepository
func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepositoryImpl{db: db}
}

// FindByID finds an article by ID
func (r *articleRepositoryImpl) FindByID(ctx context.Context, id int64) (*domain.Article, error) {
	var article domain.Article
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&article).Error; err != nil {
		return nil, err
	}
	return &article, nil
}
