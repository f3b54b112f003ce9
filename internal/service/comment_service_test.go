package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"blog-comment-api/internal/domain"
	"blog-comment-api/internal/dto"
	"blog-comment-api/internal/response"
	"blog-comment-api/internal/validation"
)

// MockCommentRepository is a mock implementation of repository.CommentRepository
type MockCommentRepository struct {
	CreateFunc              func(ctx context.Context, comment *domain.Comment) error
	FindByIDFunc            func(ctx context.Context, id int64) (*domain.Comment, error)
	FindPageByArticleFunc   func(ctx context.Context, articleID int64, page, limit int, sortBy, order string) ([]*domain.Comment, int64, error)
	UpdateFunc              func(ctx context.Context, comment *domain.Comment) error
	MarkDeletedFunc         func(ctx context.Context, id int64) error
	DeleteFunc              func(ctx context.Context, id int64) error
	CountRepliesFunc        func(ctx context.Context, parentID int64) (int64, error)
	CountByArticleFunc      func(ctx context.Context, articleID int64) (int64, error)
	FindPurgeableBeforeFunc func(ctx context.Context, cutoff time.Time) ([]*domain.Comment, error)
	AdjustLikesFunc         func(ctx context.Context, id int64, delta int) error
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	return m.CreateFunc(ctx, comment)
}

func (m *MockCommentRepository) FindByID(ctx context.Context, id int64) (*domain.Comment, error) {
	return m.FindByIDFunc(ctx, id)
}

func (m *MockCommentRepository) FindPageByArticle(ctx context.Context, articleID int64, page, limit int, sortBy, order string) ([]*domain.Comment, int64, error) {
	return m.FindPageByArticleFunc(ctx, articleID, page, limit, sortBy, order)
}

func (m *MockCommentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	return m.UpdateFunc(ctx, comment)
}

func (m *MockCommentRepository) MarkDeleted(ctx context.Context, id int64) error {
	return m.MarkDeletedFunc(ctx, id)
}

func (m *MockCommentRepository) Delete(ctx context.Context, id int64) error {
	return m.DeleteFunc(ctx, id)
}

func (m *MockCommentRepository) CountReplies(ctx context.Context, parentID int64) (int64, error) {
	return m.CountRepliesFunc(ctx, parentID)
}

func (m *MockCommentRepository) CountByArticle(ctx context.Context, articleID int64) (int64, error) {
	return m.CountByArticleFunc(ctx, articleID)
}

func (m *MockCommentRepository) FindPurgeableBefore(ctx context.Context, cutoff time.Time) ([]*domain.Comment, error) {
	return m.FindPurgeableBeforeFunc(ctx, cutoff)
}

func (m *MockCommentRepository) AdjustLikes(ctx context.Context, id int64, delta int) error {
	return m.AdjustLikesFunc(ctx, id, delta)
}

// MockLikeRepository is a mock implementation of repository.LikeRepository
type MockLikeRepository struct {
	FindByUserAndCommentFunc func(ctx context.Context, userID, commentID int64) (*domain.CommentLike, error)
	CreateFunc               func(ctx context.Context, like *domain.CommentLike) error
	DeleteFunc               func(ctx context.Context, id int64) error
	DeleteByCommentFunc      func(ctx context.Context, commentID int64) error
	CountByCommentFunc       func(ctx context.Context, commentID int64) (int64, error)
	FindLikedCommentIDsFunc  func(ctx context.Context, userID int64, commentIDs []int64) ([]int64, error)
}

func (m *MockLikeRepository) FindByUserAndComment(ctx context.Context, userID, commentID int64) (*domain.CommentLike, error) {
	return m.FindByUserAndCommentFunc(ctx, userID, commentID)
}

func (m *MockLikeRepository) Create(ctx context.Context, like *domain.CommentLike) error {
	return m.CreateFunc(ctx, like)
}

func (m *MockLikeRepository) Delete(ctx context.Context, id int64) error {
	return m.DeleteFunc(ctx, id)
}

func (m *MockLikeRepository) DeleteByComment(ctx context.Context, commentID int64) error {
	return m.DeleteByCommentFunc(ctx, commentID)
}

func (m *MockLikeRepository) CountByComment(ctx context.Context, commentID int64) (int64, error) {
	return m.CountByCommentFunc(ctx, commentID)
}

func (m *MockLikeRepository) FindLikedCommentIDs(ctx context.Context, userID int64, commentIDs []int64) ([]int64, error) {
	return m.FindLikedCommentIDsFunc(ctx, userID, commentIDs)
}

// MockArticleRepository is a mock implementation of repository.ArticleRepository
type MockArticleRepository struct {
	FindByIDFunc func(ctx context.Context, id int64) (*domain.Article, error)
}

func (m *MockArticleRepository) FindByID(ctx context.Context, id int64) (*domain.Article, error) {
	return m.FindByIDFunc(ctx, id)
}

// MockUserRepository is a mock implementation of repository.UserRepository
type MockUserRepository struct {
	FindByIDFunc func(ctx context.Context, id int64) (*domain.User, error)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return m.FindByIDFunc(ctx, id)
}

type mockPageCache struct {
	GetPageFunc           func(ctx context.Context, articleID int64, q *dto.ListCommentsQuery) (*dto.ListCommentsResponse, bool)
	SetPageFunc           func(ctx context.Context, articleID int64, q *dto.ListCommentsQuery, page *dto.ListCommentsResponse)
	InvalidateArticleFunc func(ctx context.Context, articleID int64)
}

func (m *mockPageCache) GetPage(ctx context.Context, articleID int64, q *dto.ListCommentsQuery) (*dto.ListCommentsResponse, bool) {
	return m.GetPageFunc(ctx, articleID, q)
}

func (m *mockPageCache) SetPage(ctx context.Context, articleID int64, q *dto.ListCommentsQuery, page *dto.ListCommentsResponse) {
	if m.SetPageFunc != nil {
		m.SetPageFunc(ctx, articleID, q, page)
	}
}

func (m *mockPageCache) InvalidateArticle(ctx context.Context, articleID int64) {
	if m.InvalidateArticleFunc != nil {
		m.InvalidateArticleFunc(ctx, articleID)
	}
}

type mockPublisher struct {
	events []CommentEvent
}

func (m *mockPublisher) PublishCommentEvent(_ context.Context, event CommentEvent) {
	m.events = append(m.events, event)
}

func publishedArticle(id int64) *domain.Article {
	return &domain.Article{
		BaseModel: domain.BaseModel{ID: id},
		AuthorID:  1,
		Title:     "Test article",
		Slug:      "test-article",
		Status:    domain.ArticlePublished,
	}
}

func storedComment(id, articleID, userID int64, parentID *int64) *domain.Comment {
	return &domain.Comment{
		BaseModel: domain.BaseModel{ID: id},
		ArticleID: articleID,
		UserID:    userID,
		ParentID:  parentID,
		Content:   "stored content",
		User: domain.User{
			BaseModel: domain.BaseModel{ID: userID},
			Username:  "alice",
			Role:      domain.RoleUser,
		},
	}
}

func newTestService(
	commentRepo *MockCommentRepository,
	likeRepo *MockLikeRepository,
	articleRepo *MockArticleRepository,
	userRepo *MockUserRepository,
	cache PageCache,
	events EventPublisher,
) CommentService {
	checker := validation.NewContentChecker([]string{"forbidden"})
	return NewCommentService(commentRepo, likeRepo, articleRepo, userRepo, cache, events, checker, nil, zap.NewNop())
}

func appErrCode(t *testing.T, err error) string {
	t.Helper()
	var appErr *response.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.Code
}

func TestListComments_RejectsUnknownSortColumns(t *testing.T) {
	tests := []struct {
		name      string
		query     dto.ListCommentsQuery
		wantSort  string
		wantOrder string
		wantLimit int
	}{
		{
			name:      "sql fragment in sort falls back to created_at",
			query:     dto.ListCommentsQuery{Sort: "created_at; DROP TABLE comments--", Order: "asc", Limit: 20},
			wantSort:  "created_at",
			wantOrder: "asc",
			wantLimit: 20,
		},
		{
			name:      "sql fragment in order falls back to asc",
			query:     dto.ListCommentsQuery{Sort: "likes", Order: "desc, (SELECT 1)", Limit: 20},
			wantSort:  "likes",
			wantOrder: "asc",
			wantLimit: 20,
		},
		{
			name:      "oversized limit clamped",
			query:     dto.ListCommentsQuery{Sort: "likes", Order: "desc", Limit: 5000},
			wantSort:  "likes",
			wantOrder: "desc",
			wantLimit: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			commentRepo := &MockCommentRepository{
				FindPageByArticleFunc: func(_ context.Context, _ int64, _, limit int, sortBy, order string) ([]*domain.Comment, int64, error) {
					assert.Equal(t, tt.wantSort, sortBy)
					assert.Equal(t, tt.wantOrder, order)
					assert.Equal(t, tt.wantLimit, limit)
					return nil, 0, nil
				},
			}
			articleRepo := &MockArticleRepository{
				FindByIDFunc: func(_ context.Context, id int64) (*domain.Article, error) {
					return publishedArticle(id), nil
				},
			}
			svc := newTestService(commentRepo, &MockLikeRepository{}, articleRepo, &MockUserRepository{}, nil, nil)

			_, err := svc.ListComments(context.Background(), 10, &tt.query, nil)
			require.NoError(t, err)
		})
	}
}

func TestListComments_BuildsPageWithPagination(t *testing.T) {
	commentRepo := &MockCommentRepository{
		FindPageByArticleFunc: func(_ context.Context, articleID int64, page, limit int, sortBy, order string) ([]*domain.Comment, int64, error) {
			assert.Equal(t, int64(10), articleID)
			assert.Equal(t, 1, page)
			assert.Equal(t, 20, limit)
			assert.Equal(t, "created_at", sortBy)
			assert.Equal(t, "asc", order)
			pid := int64(1)
			return []*domain.Comment{
				storedComment(1, 10, 2, nil),
				storedComment(2, 10, 3, &pid),
			}, 45, nil
		},
	}
	articleRepo := &MockArticleRepository{
		FindByIDFunc: func(_ context.Context, id int64) (*domain.Article, error) {
			return publishedArticle(id), nil
		},
	}
	svc := newTestService(commentRepo, &MockLikeRepository{}, articleRepo, &MockUserRepository{}, nil, nil)

	page, err := svc.ListComments(context.Background(), 10, &dto.ListCommentsQuery{}, nil)
	require.NoError(t, err)

	assert.Len(t, page.Comments, 2)
	assert.Equal(t, int64(1), page.Comments[0].ID)
	require.NotNil(t, page.Comments[1].ParentID)
	assert.Equal(t, int64(1), *page.Comments[1].ParentID)
	assert.Equal(t, 45, page.Pagination.Total)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.True(t, page.Pagination.HasMore)
}

func TestListComments_OverlaysViewerLikes(t *testing.T) {
	commentRepo := &MockCommentRepository{
		FindPageByArticleFunc: func(_ context.Context, _ int64, _, _ int, _, _ string) ([]*domain.Comment, int64, error) {
			return []*domain.Comment{
				storedComment(1, 10, 2, nil),
				storedComment(2, 10, 3, nil),
				storedComment(3, 10, 4, nil),
			}, 3, nil
		},
	}
	likeRepo := &MockLikeRepository{
		FindLikedCommentIDsFunc: func(_ context.Context, userID int64, commentIDs []int64) ([]int64, error) {
			assert.Equal(t, int64(7), userID)
			assert.Equal(t, []int64{1, 2, 3}, commentIDs)
			return []int64{2}, nil
		},
	}
	articleRepo := &MockArticleRepository{
		FindByIDFunc: func(_ context.Context, id int64) (*domain.Article, error) {
			return publishedArticle(id), nil
		},
	}
	svc := newTestService(commentRepo, likeRepo, articleRepo, &MockUserRepository{}, nil, nil)

	viewer := int64(7)
	page, err := svc.ListComments(context.Background(), 10, &dto.ListCommentsQuery{}, &viewer)
	require.NoError(t, err)

	assert.False(t, page.Comments[0].IsLiked)
	assert.True(t, page.Comments[1].IsLiked)
	assert.False(t, page.Comments[2].IsLiked)
}

func TestListComments_CacheHitSkipsRepository(t *testing.T) {
	cached := &dto.ListCommentsResponse{
		Comments:   []*dto.CommentResponse{{ID: 1, Content: "cached"}},
		Pagination: dto.PaginationResponse{Page: 1, Limit: 20, Total: 1, TotalPages: 1},
	}
	cache := &mockPageCache{
		GetPageFunc: func(_ context.Context, _ int64, _ *dto.ListCommentsQuery) (*dto.ListCommentsResponse, bool) {
			return cached, true
		},
	}
	commentRepo := &MockCommentRepository{
		FindPageByArticleFunc: func(_ context.Context, _ int64, _, _ int, _, _ string) ([]*domain.Comment, int64, error) {
			t.Error("repository should not be queried on a cache hit")
			return nil, 0, nil
		},
	}
	articleRepo := &MockArticleRepository{
		FindByIDFunc: func(_ context.Context, id int64) (*domain.Article, error) {
			return publishedArticle(id), nil
		},
	}
	svc := newTestService(commentRepo, &MockLikeRepository{}, articleRepo, &MockUserRepository{}, cache, nil)

	page, err := svc.ListComments(context.Background(), 10, &dto.ListCommentsQuery{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "cached", page.Comments[0].Content)
}

func TestListComments_ArticleNotFound(t *testing.T) {
	articleRepo := &MockArticleRepository{
		FindByIDFunc: func(_ context.Context, _ int64) (*domain.Article, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := newTestService(&MockCommentRepository{}, &MockLikeRepository{}, articleRepo, &MockUserRepository{}, nil, nil)

	_, err := svc.ListComments(context.Background(), 99, &dto.ListCommentsQuery{}, nil)
	assert.Equal(t, response.ErrCodeNotFound, appErrCode(t, err))
}

func TestCreateComment_Success(t *testing.T) {
	var created *domain.Comment
	commentRepo := &MockCommentRepository{
		CreateFunc: func(_ context.Context, comment *domain.Comment) error {
			comment.ID = 42
			created = comment
			return nil
		},
		FindByIDFunc: func(_ context.Context, id int64) (*domain.Comment, error) {
			c := storedComment(id, 10, 2, nil)
			c.Content = created.Content
			return c, nil
		},
	}
	articleRepo := &MockArticleRepository{
		FindByIDFunc: func(_ context.Context, id int64) (*domain.Article, error) {
			return publishedArticle(id), nil
		},
	}
	userRepo := &MockUserRepository{
		FindByIDFunc: func(_ context.Context, id int64) (*domain.User, error) {
			return &domain.User{BaseModel: domain.BaseModel{ID: id}, Username: "alice"}, nil
		},
	}
	events := &mockPublisher{}
	invalidated := []int64{}
	cache := &mockPageCache{
		GetPageFunc: func(_ context.Context, _ int64, _ *dto.ListCommentsQuery) (*dto.ListCommentsResponse, bool) {
			return nil, false
		},
		InvalidateArticleFunc: func(_ context.Context, articleID int64) {
			invalidated = append(invalidated, articleID)
		},
	}
	svc := newTestService(commentRepo, &MockLikeRepository{}, articleRepo, userRepo, cache, events)

	resp, err := svc.CreateComment(context.Background(), 10, 2, &dto.CreateCommentRequest{Content: "hello world"})
	require.NoError(t, err)

	assert.Equal(t, int64(42), resp.ID)
	assert.Equal(t, "hello world", resp.Content)
	assert.Nil(t, created.ParentID)
	assert.Equal(t, []int64{10}, invalidated)
	require.Len(t, events.events, 1)
	assert.Equal(t, EventCommentCreated, events.events[0].Type)
	assert.Equal(t, int64(10), events.events[0].ArticleID)
}

func TestCreateComment_RejectsInvalidContent(t *testing.T) {
	svc := newTestService(&MockCommentRepository{}, &MockLikeRepository{}, &MockArticleRepository{}, &MockUserRepository{}, nil, nil)

	for _, content := range []string{"", "x", "this is forbidden content"} {
		_, err := svc.CreateComment(context.Background(), 10, 2, &dto.CreateCommentRequest{Content: content})
		assert.Equal(t, response.ErrCodeValidation, appErrCode(t, err), "content %q", content)
	}
}

func TestCreateComment_RejectsUnpublishedArticle(t *testing.T) {
	articleRepo := &MockArticleRepository{
		FindByIDFunc: func(_ context.Context, id int64) (*domain.Article, error) {
			a := publishedArticle(id)
			a.Status = domain.ArticleDraft
			return a, nil
		},
	}
	svc := newTestService(&MockCommentRepository{}, &MockLikeRepository{}, articleRepo, &MockUserRepository{}, nil, nil)

	_, err := svc.CreateComment(context.Background(), 10, 2, &dto.CreateCommentRequest{Content: "hello world"})
	assert.Equal(t, response.ErrCodeValidation, appErrCode(t, err))
}

func TestCreateReply_InheritsArticleAndParent(t *testing.T) {
	var created *domain.Comment
	commentRepo := &MockCommentRepository{
		FindByIDFunc: func(_ context.Context, id int64) (*domain.Comment, error) {
			if created != nil && id == created.ID {
				return created, nil
			}
			return storedComment(5, 10, 3, nil), nil
		},
		CreateFunc: func(_ context.Context, comment *domain.Comment) error {
			comment.ID = 43
			created = comment
			return nil
		},
	}
	userRepo := &MockUserRepository{
		FindByIDFunc: func(_ context.Context, id int64) (*domain.User, error) {
			return &domain.User{BaseModel: domain.BaseModel{ID: id}}, nil
		},
	}
	svc := newTestService(commentRepo, &MockLikeRepository{}, &MockArticleRepository{}, userRepo, nil, nil)

	resp, err := svc.CreateReply(context.Background(), 5, 2, &dto.CreateReplyRequest{Content: "a reply"})
	require.NoError(t, err)

	assert.Equal(t, int64(10), created.ArticleID)
	require.NotNil(t, created.ParentID)
	assert.Equal(t, int64(5), *created.ParentID)
	assert.Equal(t, int64(43), resp.ID)
}

func TestCreateReply_RejectsDeletedParent(t *testing.T) {
	commentRepo := &MockCommentRepository{
		FindByIDFunc: func(_ context.Context, _ int64) (*domain.Comment, error) {
			c := storedComment(5, 10, 3, nil)
			c.IsDeleted = true
			return c, nil
		},
	}
	svc := newTestService(commentRepo, &MockLikeRepository{}, &MockArticleRepository{}, &MockUserRepository{}, nil, nil)

	_, err := svc.CreateReply(context.Background(), 5, 2, &dto.CreateReplyRequest{Content: "a reply"})
	assert.Equal(t, response.ErrCodeValidation, appErrCode(t, err))
}

func TestCreateReply_ParentNotFound(t *testing.T) {
	commentRepo := &MockCommentRepository{
		FindByIDFunc: func(_ context.Context, _ int64) (*domain.Comment, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := newTestService(commentRepo, &MockLikeRepository{}, &MockArticleRepository{}, &MockUserRepository{}, nil, nil)

	_, err := svc.CreateReply(context.Background(), 99, 2, &dto.CreateReplyRequest{Content: "a reply"})
	assert.Equal(t, response.ErrCodeNotFound, appErrCode(t, err))
}

func TestToggleLike_AddsThenRemoves(t *testing.T) {
	likes := map[int64]bool{}
	adjustments := []int{}
	commentRepo := &MockCommentRepository{
		FindByIDFunc: func(_ context.Context, id int64) (*domain.Comment, error) {
			return storedComment(id, 10, 3, nil), nil
		},
		AdjustLikesFunc: func(_ context.Context, _ int64, delta int) error {
			adjustments = append(adjustments, delta)
			return nil
		},
	}
	likeRepo := &MockLikeRepository{
		FindByUserAndCommentFunc: func(_ context.Context, userID, commentID int64) (*domain.CommentLike, error) {
			if likes[commentID] {
				return &domain.CommentLike{BaseModel: domain.BaseModel{ID: 1}, UserID: userID, CommentID: commentID}, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
		CreateFunc: func(_ context.Context, like *domain.CommentLike) error {
			likes[like.CommentID] = true
			return nil
		},
		DeleteFunc: func(_ context.Context, _ int64) error {
			likes[5] = false
			return nil
		},
		CountByCommentFunc: func(_ context.Context, commentID int64) (int64, error) {
			if likes[commentID] {
				return 6, nil
			}
			return 5, nil
		},
	}
	events := &mockPublisher{}
	svc := newTestService(commentRepo, likeRepo, &MockArticleRepository{}, &MockUserRepository{}, nil, events)

	first, err := svc.ToggleLike(context.Background(), 5, 7)
	require.NoError(t, err)
	assert.True(t, first.Liked)
	assert.Equal(t, 6, first.Likes)

	second, err := svc.ToggleLike(context.Background(), 5, 7)
	require.NoError(t, err)
	assert.False(t, second.Liked)
	assert.Equal(t, 5, second.Likes)

	assert.Equal(t, []int{1, -1}, adjustments)
	require.Len(t, events.events, 2)
	assert.Equal(t, EventCommentLiked, events.events[0].Type)
	assert.Equal(t, 6, events.events[0].Likes)
	assert.Equal(t, 5, events.events[1].Likes)
}

func TestUpdateComment_OwnerOnly(t *testing.T) {
	commentRepo := &MockCommentRepository{
		FindByIDFunc: func(_ context.Context, id int64) (*domain.Comment, error) {
			return storedComment(id, 10, 3, nil), nil
		},
	}
	svc := newTestService(commentRepo, &MockLikeRepository{}, &MockArticleRepository{}, &MockUserRepository{}, nil, nil)

	_, err := svc.UpdateComment(context.Background(), 5, 99, &dto.UpdateCommentRequest{Content: "edited text"})
	assert.Equal(t, response.ErrCodeForbidden, appErrCode(t, err))
}

func TestUpdateComment_Success(t *testing.T) {
	var updated *domain.Comment
	commentRepo := &MockCommentRepository{
		FindByIDFunc: func(_ context.Context, id int64) (*domain.Comment, error) {
			return storedComment(id, 10, 3, nil), nil
		},
		UpdateFunc: func(_ context.Context, comment *domain.Comment) error {
			updated = comment
			return nil
		},
	}
	events := &mockPublisher{}
	svc := newTestService(commentRepo, &MockLikeRepository{}, &MockArticleRepository{}, &MockUserRepository{}, nil, events)

	resp, err := svc.UpdateComment(context.Background(), 5, 3, &dto.UpdateCommentRequest{Content: "edited text"})
	require.NoError(t, err)

	assert.Equal(t, "edited text", updated.Content)
	assert.Equal(t, "edited text", resp.Content)
	require.Len(t, events.events, 1)
	assert.Equal(t, EventCommentUpdated, events.events[0].Type)
}

func TestUpdateComment_RejectsDeleted(t *testing.T) {
	commentRepo := &MockCommentRepository{
		FindByIDFunc: func(_ context.Context, id int64) (*domain.Comment, error) {
			c := storedComment(id, 10, 3, nil)
			c.IsDeleted = true
			return c, nil
		},
	}
	svc := newTestService(commentRepo, &MockLikeRepository{}, &MockArticleRepository{}, &MockUserRepository{}, nil, nil)

	_, err := svc.UpdateComment(context.Background(), 5, 3, &dto.UpdateCommentRequest{Content: "edited text"})
	assert.Equal(t, response.ErrCodeValidation, appErrCode(t, err))
}

func TestDeleteComment_SoftWhenReplies(t *testing.T) {
	marked := false
	commentRepo := &MockCommentRepository{
		FindByIDFunc: func(_ context.Context, id int64) (*domain.Comment, error) {
			return storedComment(id, 10, 3, nil), nil
		},
		CountRepliesFunc: func(_ context.Context, _ int64) (int64, error) {
			return 2, nil
		},
		MarkDeletedFunc: func(_ context.Context, _ int64) error {
			marked = true
			return nil
		},
		DeleteFunc: func(_ context.Context, _ int64) error {
			t.Error("hard delete must not run when replies exist")
			return nil
		},
	}
	events := &mockPublisher{}
	svc := newTestService(commentRepo, &MockLikeRepository{}, &MockArticleRepository{}, &MockUserRepository{}, nil, events)

	resp, err := svc.DeleteComment(context.Background(), 5, 3)
	require.NoError(t, err)

	assert.True(t, marked)
	assert.Equal(t, dto.DeleteModeSoft, resp.Deleted)
	require.Len(t, events.events, 1)
	assert.Equal(t, dto.DeleteModeSoft, events.events[0].DeleteMode)
}

func TestDeleteComment_HardWhenLeaf(t *testing.T) {
	deleted := false
	likesDeleted := false
	commentRepo := &MockCommentRepository{
		FindByIDFunc: func(_ context.Context, id int64) (*domain.Comment, error) {
			return storedComment(id, 10, 3, nil), nil
		},
		CountRepliesFunc: func(_ context.Context, _ int64) (int64, error) {
			return 0, nil
		},
		DeleteFunc: func(_ context.Context, _ int64) error {
			deleted = true
			return nil
		},
	}
	likeRepo := &MockLikeRepository{
		DeleteByCommentFunc: func(_ context.Context, _ int64) error {
			likesDeleted = true
			return nil
		},
	}
	svc := newTestService(commentRepo, likeRepo, &MockArticleRepository{}, &MockUserRepository{}, nil, nil)

	resp, err := svc.DeleteComment(context.Background(), 5, 3)
	require.NoError(t, err)

	assert.True(t, deleted)
	assert.True(t, likesDeleted)
	assert.Equal(t, dto.DeleteModeHard, resp.Deleted)
}

func TestDeleteComment_AdminCanDeleteOthers(t *testing.T) {
	commentRepo := &MockCommentRepository{
		FindByIDFunc: func(_ context.Context, id int64) (*domain.Comment, error) {
			return storedComment(id, 10, 3, nil), nil
		},
		CountRepliesFunc: func(_ context.Context, _ int64) (int64, error) {
			return 0, nil
		},
		DeleteFunc: func(_ context.Context, _ int64) error {
			return nil
		},
	}
	likeRepo := &MockLikeRepository{
		DeleteByCommentFunc: func(_ context.Context, _ int64) error { return nil },
	}
	userRepo := &MockUserRepository{
		FindByIDFunc: func(_ context.Context, id int64) (*domain.User, error) {
			return &domain.User{BaseModel: domain.BaseModel{ID: id}, Role: domain.RoleAdmin}, nil
		},
	}
	svc := newTestService(commentRepo, likeRepo, &MockArticleRepository{}, userRepo, nil, nil)

	resp, err := svc.DeleteComment(context.Background(), 5, 99)
	require.NoError(t, err)
	assert.Equal(t, dto.DeleteModeHard, resp.Deleted)
}

func TestDeleteComment_NonOwnerForbidden(t *testing.T) {
	commentRepo := &MockCommentRepository{
		FindByIDFunc: func(_ context.Context, id int64) (*domain.Comment, error) {
			return storedComment(id, 10, 3, nil), nil
		},
	}
	userRepo := &MockUserRepository{
		FindByIDFunc: func(_ context.Context, id int64) (*domain.User, error) {
			return &domain.User{BaseModel: domain.BaseModel{ID: id}, Role: domain.RoleUser}, nil
		},
	}
	svc := newTestService(commentRepo, &MockLikeRepository{}, &MockArticleRepository{}, userRepo, nil, nil)

	_, err := svc.DeleteComment(context.Background(), 5, 99)
	assert.Equal(t, response.ErrCodeForbidden, appErrCode(t, err))
}

func TestSoftDeletedContentIsSuppressed(t *testing.T) {
	c := storedComment(5, 10, 3, nil)
	c.IsDeleted = true
	resp := toCommentResponse(c)
	assert.Empty(t, resp.Content)
	assert.True(t, resp.Deleted)
}

func TestToggleLike_NotFound(t *testing.T) {
	commentRepo := &MockCommentRepository{
		FindByIDFunc: func(_ context.Context, _ int64) (*domain.Comment, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := newTestService(commentRepo, &MockLikeRepository{}, &MockArticleRepository{}, &MockUserRepository{}, nil, nil)

	_, err := svc.ToggleLike(context.Background(), 99, 7)
	assert.Equal(t, response.ErrCodeNotFound, appErrCode(t, err))
}

func TestToggleLike_LikeStateCheckFailure(t *testing.T) {
	commentRepo := &MockCommentRepository{
		FindByIDFunc: func(_ context.Context, id int64) (*domain.Comment, error) {
			return storedComment(id, 10, 3, nil), nil
		},
	}
	likeRepo := &MockLikeRepository{
		FindByUserAndCommentFunc: func(_ context.Context, _, _ int64) (*domain.CommentLike, error) {
			return nil, errors.New("connection reset")
		},
	}
	svc := newTestService(commentRepo, likeRepo, &MockArticleRepository{}, &MockUserRepository{}, nil, nil)

	_, err := svc.ToggleLike(context.Background(), 5, 7)
	assert.Equal(t, response.ErrCodeInternal, appErrCode(t, err))
}
