package domain

import "gorm.io/datatypes"

// ArticleStatus is the publication state of an article.
type ArticleStatus string

const (
	ArticleDraft     ArticleStatus = "draft"
	ArticlePublished ArticleStatus = "published"
)

// Article is the entity comments hang off. Article authoring lives outside
// this service; the comment API only verifies existence and publication
// state before accepting comments.
type Article struct {
	BaseModel
	AuthorID int64         `gorm:"not null;index:idx_articles_author_id" json:"author_id"`
	Title    string        `gorm:"type:varchar(255);not null" json:"title"`
	Slug     string        `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Status   ArticleStatus `gorm:"type:varchar(20);not null;default:'draft';index:idx_articles_status" json:"status"`
	SEOMeta  datatypes.JSON `gorm:"type:json" json:"seo_meta,omitempty"`
	Comments []Comment     `gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
}

// TableName specifies the table name for Article
func (Article) TableName() string {
	return "articles"
}
