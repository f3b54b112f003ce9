package service

import (
	"context"
	"errors"
	"math"

	"github.com/thoas/go-funk"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"blog-comment-api/internal/domain"
	"blog-comment-api/internal/dto"
	"blog-comment-api/internal/metrics"
	"blog-comment-api/internal/repository"
	"blog-comment-api/internal/response"
	"blog-comment-api/internal/validation"
)

// Comment event types published to the event stream.
const (
	EventCommentCreated = "comment.created"
	EventCommentUpdated = "comment.updated"
	EventCommentLiked   = "comment.liked"
	EventCommentDeleted = "comment.deleted"
)

// CommentEvent describes one change to an article's comments. Consumers use
// it to refresh or patch their local thread state without a full refetch.
type CommentEvent struct {
	Type       string               `json:"type"`
	ArticleID  int64                `json:"article_id"`
	CommentID  int64                `json:"comment_id"`
	Comment    *dto.CommentResponse `json:"comment,omitempty"`
	Likes      int                  `json:"likes,omitempty"`
	DeleteMode string               `json:"delete_mode,omitempty"`
}

// EventPublisher fans comment events out to live subscribers.
type EventPublisher interface {
	PublishCommentEvent(ctx context.Context, event CommentEvent)
}

// PageCache caches viewer-independent comment pages per article.
// Implementations must serialize on Set so later overlay mutations on the
// returned structs cannot leak into the cache.
type PageCache interface {
	GetPage(ctx context.Context, articleID int64, q *dto.ListCommentsQuery) (*dto.ListCommentsResponse, bool)
	SetPage(ctx context.Context, articleID int64, q *dto.ListCommentsQuery, page *dto.ListCommentsResponse)
	InvalidateArticle(ctx context.Context, articleID int64)
}

// CommentService defines the interface for comment business logic
type CommentService interface {
	ListComments(ctx context.Context, articleID int64, q *dto.ListCommentsQuery, viewerID *int64) (*dto.ListCommentsResponse, error)
	CreateComment(ctx context.Context, articleID, userID int64, req *dto.CreateCommentRequest) (*dto.CommentResponse, error)
	CreateReply(ctx context.Context, parentCommentID, userID int64, req *dto.CreateReplyRequest) (*dto.CommentResponse, error)
	ToggleLike(ctx context.Context, commentID, userID int64) (*dto.ToggleLikeResponse, error)
	UpdateComment(ctx context.Context, commentID, userID int64, req *dto.UpdateCommentRequest) (*dto.CommentResponse, error)
	DeleteComment(ctx context.Context, commentID, userID int64) (*dto.DeleteCommentResponse, error)
}

// commentServiceImpl is the implementation of CommentService
type commentServiceImpl struct {
	commentRepo repository.CommentRepository
	likeRepo    repository.LikeRepository
	articleRepo repository.ArticleRepository
	userRepo    repository.UserRepository
	cache       PageCache
	events      EventPublisher
	checker     *validation.ContentChecker
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewCommentService creates a new instance of CommentService. cache and
// events may be nil when the deployment runs without redis.
func NewCommentService(
	commentRepo repository.CommentRepository,
	likeRepo repository.LikeRepository,
	articleRepo repository.ArticleRepository,
	userRepo repository.UserRepository,
	cache PageCache,
	events EventPublisher,
	checker *validation.ContentChecker,
	m *metrics.Metrics,
	logger *zap.Logger,
) CommentService {
	return &commentServiceImpl{
		commentRepo: commentRepo,
		likeRepo:    likeRepo,
		articleRepo: articleRepo,
		userRepo:    userRepo,
		cache:       cache,
		events:      events,
		checker:     checker,
		metrics:     m,
		logger:      logger,
	}
}

// ListComments returns one flat page of an article's comments. The
// viewer-independent page is cached; is_liked is overlaid per request.
func (s *commentServiceImpl) ListComments(ctx context.Context, articleID int64, q *dto.ListCommentsQuery, viewerID *int64) (*dto.ListCommentsResponse, error) {
	applyListDefaults(q)

	if _, err := s.articleRepo.FindByID(ctx, articleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewAppError(response.ErrCodeNotFound, "Article not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to verify article", err.Error())
	}

	page, ok := s.cachedPage(ctx, articleID, q)
	if !ok {
		comments, total, err := s.commentRepo.FindPageByArticle(ctx, articleID, q.Page, q.Limit, q.Sort, q.Order)
		if err != nil {
			return nil, response.NewAppError(response.ErrCodeInternal, "Failed to list comments", err.Error())
		}

		items := make([]*dto.CommentResponse, 0, len(comments))
		for _, c := range comments {
			items = append(items, toCommentResponse(c))
		}
		totalPages := int(math.Ceil(float64(total) / float64(q.Limit)))
		page = &dto.ListCommentsResponse{
			Comments: items,
			Pagination: dto.PaginationResponse{
				Page:       q.Page,
				Limit:      q.Limit,
				Total:      int(total),
				TotalPages: totalPages,
				HasMore:    q.Page < totalPages,
			},
		}
		if s.cache != nil {
			s.cache.SetPage(ctx, articleID, q, page)
		}
	}

	if viewerID != nil {
		if err := s.overlayViewerLikes(ctx, *viewerID, page.Comments); err != nil {
			// A failed overlay degrades to is_liked=false rather than
			// failing the listing.
			s.logger.Warn("Failed to overlay viewer likes",
				zap.Int64("article_id", articleID),
				zap.Error(err),
			)
		}
	}
	return page, nil
}

func (s *commentServiceImpl) cachedPage(ctx context.Context, articleID int64, q *dto.ListCommentsQuery) (*dto.ListCommentsResponse, bool) {
	if s.cache == nil {
		return nil, false
	}
	page, ok := s.cache.GetPage(ctx, articleID, q)
	if s.metrics != nil {
		if ok {
			s.metrics.IncrementCacheHit()
		} else {
			s.metrics.IncrementCacheMiss()
		}
	}
	return page, ok
}

func (s *commentServiceImpl) overlayViewerLikes(ctx context.Context, viewerID int64, comments []*dto.CommentResponse) error {
	if len(comments) == 0 {
		return nil
	}
	ids := funk.Map(comments, func(c *dto.CommentResponse) int64 { return c.ID }).([]int64)
	likedIDs, err := s.likeRepo.FindLikedCommentIDs(ctx, viewerID, ids)
	if err != nil {
		return err
	}
	for _, c := range comments {
		c.IsLiked = funk.ContainsInt64(likedIDs, c.ID)
	}
	return nil
}

// CreateComment creates a root-level comment on an article
func (s *commentServiceImpl) CreateComment(ctx context.Context, articleID, userID int64, req *dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	if err := s.checker.Check(req.Content); err != nil {
		return nil, response.NewAppError(response.ErrCodeValidation, err.Error(), "")
	}

	article, err := s.articleRepo.FindByID(ctx, articleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewAppError(response.ErrCodeNotFound, "Article not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to verify article", err.Error())
	}
	if article.Status != domain.ArticlePublished {
		return nil, response.NewAppError(response.ErrCodeValidation, "Article does not accept comments", "")
	}

	return s.insertComment(ctx, &domain.Comment{
		ArticleID: articleID,
		UserID:    userID,
		Content:   req.Content,
	})
}

// CreateReply creates a reply under an existing comment. The parent fixes
// the article; a soft-deleted parent no longer accepts replies.
func (s *commentServiceImpl) CreateReply(ctx context.Context, parentCommentID, userID int64, req *dto.CreateReplyRequest) (*dto.CommentResponse, error) {
	if err := s.checker.Check(req.Content); err != nil {
		return nil, response.NewAppError(response.ErrCodeValidation, err.Error(), "")
	}

	parent, err := s.commentRepo.FindByID(ctx, parentCommentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewAppError(response.ErrCodeNotFound, "Parent comment not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load parent comment", err.Error())
	}
	if parent.IsDeleted {
		return nil, response.NewAppError(response.ErrCodeValidation, "Cannot reply to a deleted comment", "")
	}

	parentID := parent.ID
	return s.insertComment(ctx, &domain.Comment{
		ArticleID: parent.ArticleID,
		UserID:    userID,
		ParentID:  &parentID,
		Content:   req.Content,
	})
}

func (s *commentServiceImpl) insertComment(ctx context.Context, comment *domain.Comment) (*dto.CommentResponse, error) {
	if _, err := s.userRepo.FindByID(ctx, comment.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewAppError(response.ErrCodeUnauthorized, "Unknown user", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to verify user", err.Error())
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create comment", err.Error())
	}

	created, err := s.commentRepo.FindByID(ctx, comment.ID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load created comment", err.Error())
	}

	if s.metrics != nil {
		s.metrics.IncrementCommentCreated()
	}
	s.invalidate(ctx, created.ArticleID)
	resp := toCommentResponse(created)
	s.publish(ctx, CommentEvent{
		Type:      EventCommentCreated,
		ArticleID: created.ArticleID,
		CommentID: created.ID,
		Comment:   resp,
	})
	return resp, nil
}

// ToggleLike flips the user's like on a comment and returns the
// authoritative state
func (s *commentServiceImpl) ToggleLike(ctx context.Context, commentID, userID int64) (*dto.ToggleLikeResponse, error) {
	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewAppError(response.ErrCodeNotFound, "Comment not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load comment", err.Error())
	}

	liked := false
	existing, err := s.likeRepo.FindByUserAndComment(ctx, userID, commentID)
	switch {
	case err == nil:
		if err := s.likeRepo.Delete(ctx, existing.ID); err != nil {
			return nil, response.NewAppError(response.ErrCodeInternal, "Failed to remove like", err.Error())
		}
		if err := s.commentRepo.AdjustLikes(ctx, commentID, -1); err != nil {
			return nil, response.NewAppError(response.ErrCodeInternal, "Failed to update like count", err.Error())
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		liked = true
		if err := s.likeRepo.Create(ctx, &domain.CommentLike{UserID: userID, CommentID: commentID}); err != nil {
			return nil, response.NewAppError(response.ErrCodeInternal, "Failed to record like", err.Error())
		}
		if err := s.commentRepo.AdjustLikes(ctx, commentID, 1); err != nil {
			return nil, response.NewAppError(response.ErrCodeInternal, "Failed to update like count", err.Error())
		}
	default:
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to check like state", err.Error())
	}

	count, err := s.likeRepo.CountByComment(ctx, commentID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to count likes", err.Error())
	}

	if s.metrics != nil {
		s.metrics.IncrementLikeToggled()
	}
	s.invalidate(ctx, comment.ArticleID)
	s.publish(ctx, CommentEvent{
		Type:      EventCommentLiked,
		ArticleID: comment.ArticleID,
		CommentID: commentID,
		Likes:     int(count),
	})
	return &dto.ToggleLikeResponse{Liked: liked, Likes: int(count)}, nil
}

// UpdateComment edits a comment's content, owner only
func (s *commentServiceImpl) UpdateComment(ctx context.Context, commentID, userID int64, req *dto.UpdateCommentRequest) (*dto.CommentResponse, error) {
	if err := s.checker.Check(req.Content); err != nil {
		return nil, response.NewAppError(response.ErrCodeValidation, err.Error(), "")
	}

	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewAppError(response.ErrCodeNotFound, "Comment not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load comment", err.Error())
	}
	if comment.IsDeleted {
		return nil, response.NewAppError(response.ErrCodeValidation, "Cannot edit a deleted comment", "")
	}
	if comment.UserID != userID {
		return nil, response.NewAppError(response.ErrCodeForbidden, "You can only edit your own comments", "")
	}

	comment.Content = req.Content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to update comment", err.Error())
	}

	s.invalidate(ctx, comment.ArticleID)
	resp := toCommentResponse(comment)
	s.publish(ctx, CommentEvent{
		Type:      EventCommentUpdated,
		ArticleID: comment.ArticleID,
		CommentID: comment.ID,
		Comment:   resp,
	})
	return resp, nil
}

// DeleteComment removes a comment, owner or admin only. A comment that
// still has replies is soft-deleted so the thread below it keeps its
// structure; a leaf is excised outright together with its likes.
func (s *commentServiceImpl) DeleteComment(ctx context.Context, commentID, userID int64) (*dto.DeleteCommentResponse, error) {
	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewAppError(response.ErrCodeNotFound, "Comment not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load comment", err.Error())
	}

	if comment.UserID != userID {
		user, err := s.userRepo.FindByID(ctx, userID)
		if err != nil || !user.IsAdmin() {
			return nil, response.NewAppError(response.ErrCodeForbidden, "You can only delete your own comments", "")
		}
	}

	replies, err := s.commentRepo.CountReplies(ctx, commentID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to count replies", err.Error())
	}

	mode := dto.DeleteModeHard
	if replies > 0 {
		mode = dto.DeleteModeSoft
		if err := s.commentRepo.MarkDeleted(ctx, commentID); err != nil {
			return nil, response.NewAppError(response.ErrCodeInternal, "Failed to delete comment", err.Error())
		}
	} else {
		if err := s.likeRepo.DeleteByComment(ctx, commentID); err != nil {
			return nil, response.NewAppError(response.ErrCodeInternal, "Failed to remove likes", err.Error())
		}
		if err := s.commentRepo.Delete(ctx, commentID); err != nil {
			return nil, response.NewAppError(response.ErrCodeInternal, "Failed to delete comment", err.Error())
		}
	}

	if s.metrics != nil {
		s.metrics.IncrementCommentDeleted(mode)
	}
	s.invalidate(ctx, comment.ArticleID)
	s.publish(ctx, CommentEvent{
		Type:       EventCommentDeleted,
		ArticleID:  comment.ArticleID,
		CommentID:  commentID,
		DeleteMode: mode,
	})
	return &dto.DeleteCommentResponse{Deleted: mode}, nil
}

func (s *commentServiceImpl) invalidate(ctx context.Context, articleID int64) {
	if s.cache != nil {
		s.cache.InvalidateArticle(ctx, articleID)
	}
}

func (s *commentServiceImpl) publish(ctx context.Context, event CommentEvent) {
	if s.events != nil {
		s.events.PublishCommentEvent(ctx, event)
	}
}

// applyListDefaults fills empty query fields and forces sort and order onto
// the whitelisted values. Sort and order end up in an ORDER BY clause, so
// callers that bypass the gin binding must not be able to smuggle arbitrary
// SQL through them.
func applyListDefaults(q *dto.ListCommentsQuery) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = 20
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	if q.Sort != "created_at" && q.Sort != "likes" {
		q.Sort = "created_at"
	}
	if q.Order != "asc" && q.Order != "desc" {
		q.Order = "asc"
	}
}

// toCommentResponse converts a domain comment to its wire shape. Content of
// a soft-deleted comment is suppressed so removed text never leaves the
// server.
func toCommentResponse(c *domain.Comment) *dto.CommentResponse {
	content := c.Content
	if c.IsDeleted {
		content = ""
	}
	return &dto.CommentResponse{
		ID:        c.ID,
		Content:   content,
		UserID:    c.UserID,
		ArticleID: c.ArticleID,
		ParentID:  c.ParentID,
		Likes:     c.Likes,
		Deleted:   c.IsDeleted,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		User: dto.UserSummary{
			ID:       c.User.ID,
			Username: c.User.Username,
			Avatar:   c.User.Avatar,
			Role:     string(c.User.Role),
		},
	}
}
