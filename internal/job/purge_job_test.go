package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"blog-comment-api/internal/domain"
)

type mockCommentRepo struct {
	FindPurgeableBeforeFunc func(ctx context.Context, cutoff time.Time) ([]*domain.Comment, error)
	DeleteFunc              func(ctx context.Context, id int64) error
}

func (m *mockCommentRepo) Create(ctx context.Context, comment *domain.Comment) error { return nil }
func (m *mockCommentRepo) FindByID(ctx context.Context, id int64) (*domain.Comment, error) {
	return nil, nil
}
func (m *mockCommentRepo) FindPageByArticle(ctx context.Context, articleID int64, page, limit int, sortBy, order string) ([]*domain.Comment, int64, error) {
	return nil, 0, nil
}
func (m *mockCommentRepo) Update(ctx context.Context, comment *domain.Comment) error { return nil }
func (m *mockCommentRepo) MarkDeleted(ctx context.Context, id int64) error           { return nil }
func (m *mockCommentRepo) Delete(ctx context.Context, id int64) error {
	return m.DeleteFunc(ctx, id)
}
func (m *mockCommentRepo) CountReplies(ctx context.Context, parentID int64) (int64, error) {
	return 0, nil
}
func (m *mockCommentRepo) CountByArticle(ctx context.Context, articleID int64) (int64, error) {
	return 0, nil
}
func (m *mockCommentRepo) FindPurgeableBefore(ctx context.Context, cutoff time.Time) ([]*domain.Comment, error) {
	return m.FindPurgeableBeforeFunc(ctx, cutoff)
}
func (m *mockCommentRepo) AdjustLikes(ctx context.Context, id int64, delta int) error { return nil }

type mockLikeRepo struct {
	DeleteByCommentFunc func(ctx context.Context, commentID int64) error
}

func (m *mockLikeRepo) FindByUserAndComment(ctx context.Context, userID, commentID int64) (*domain.CommentLike, error) {
	return nil, nil
}
func (m *mockLikeRepo) Create(ctx context.Context, like *domain.CommentLike) error { return nil }
func (m *mockLikeRepo) Delete(ctx context.Context, id int64) error                 { return nil }
func (m *mockLikeRepo) DeleteByComment(ctx context.Context, commentID int64) error {
	return m.DeleteByCommentFunc(ctx, commentID)
}
func (m *mockLikeRepo) CountByComment(ctx context.Context, commentID int64) (int64, error) {
	return 0, nil
}
func (m *mockLikeRepo) FindLikedCommentIDs(ctx context.Context, userID int64, commentIDs []int64) ([]int64, error) {
	return nil, nil
}

func tombstone(id int64) *domain.Comment {
	return &domain.Comment{
		BaseModel: domain.BaseModel{ID: id},
		ArticleID: 1,
		IsDeleted: true,
	}
}

func TestPurgeJob_PurgesCommentsAndLikes(t *testing.T) {
	var deletedComments []int64
	var deletedLikes []int64

	commentRepo := &mockCommentRepo{
		FindPurgeableBeforeFunc: func(ctx context.Context, cutoff time.Time) ([]*domain.Comment, error) {
			assert.True(t, cutoff.Before(time.Now()))
			return []*domain.Comment{tombstone(10), tombstone(11)}, nil
		},
		DeleteFunc: func(ctx context.Context, id int64) error {
			deletedComments = append(deletedComments, id)
			return nil
		},
	}
	likeRepo := &mockLikeRepo{
		DeleteByCommentFunc: func(ctx context.Context, commentID int64) error {
			deletedLikes = append(deletedLikes, commentID)
			return nil
		},
	}

	purgeJob := NewPurgeJob(commentRepo, likeRepo, 24*time.Hour, zap.NewNop())
	purgeJob.Run()

	assert.Equal(t, []int64{10, 11}, deletedComments)
	assert.Equal(t, []int64{10, 11}, deletedLikes)
}

func TestPurgeJob_NothingToPurge(t *testing.T) {
	commentRepo := &mockCommentRepo{
		FindPurgeableBeforeFunc: func(ctx context.Context, cutoff time.Time) ([]*domain.Comment, error) {
			return nil, nil
		},
		DeleteFunc: func(ctx context.Context, id int64) error {
			t.Error("Delete should not be called")
			return nil
		},
	}
	likeRepo := &mockLikeRepo{
		DeleteByCommentFunc: func(ctx context.Context, commentID int64) error {
			t.Error("DeleteByComment should not be called")
			return nil
		},
	}

	NewPurgeJob(commentRepo, likeRepo, 24*time.Hour, zap.NewNop()).Run()
}

func TestPurgeJob_KeepsCommentWhenLikeDeletionFails(t *testing.T) {
	var deletedComments []int64

	commentRepo := &mockCommentRepo{
		FindPurgeableBeforeFunc: func(ctx context.Context, cutoff time.Time) ([]*domain.Comment, error) {
			return []*domain.Comment{tombstone(10), tombstone(11)}, nil
		},
		DeleteFunc: func(ctx context.Context, id int64) error {
			deletedComments = append(deletedComments, id)
			return nil
		},
	}
	likeRepo := &mockLikeRepo{
		DeleteByCommentFunc: func(ctx context.Context, commentID int64) error {
			if commentID == 10 {
				return errors.New("db connection lost")
			}
			return nil
		},
	}

	NewPurgeJob(commentRepo, likeRepo, 24*time.Hour, zap.NewNop()).Run()

	// Comment 10 stays behind for the next pass; comment 11 is purged.
	assert.Equal(t, []int64{11}, deletedComments)
}

func TestPurgeJob_FindErrorAborts(t *testing.T) {
	commentRepo := &mockCommentRepo{
		FindPurgeableBeforeFunc: func(ctx context.Context, cutoff time.Time) ([]*domain.Comment, error) {
			return nil, errors.New("query failed")
		},
		DeleteFunc: func(ctx context.Context, id int64) error {
			t.Error("Delete should not be called")
			return nil
		},
	}
	likeRepo := &mockLikeRepo{
		DeleteByCommentFunc: func(ctx context.Context, commentID int64) error {
			t.Error("DeleteByComment should not be called")
			return nil
		},
	}

	NewPurgeJob(commentRepo, likeRepo, 24*time.Hour, zap.NewNop()).Run()
}

func TestPurgeJob_DefaultRetention(t *testing.T) {
	commentRepo := &mockCommentRepo{
		FindPurgeableBeforeFunc: func(ctx context.Context, cutoff time.Time) ([]*domain.Comment, error) {
			require.True(t, time.Since(cutoff) > 29*24*time.Hour)
			return nil, nil
		},
	}
	likeRepo := &mockLikeRepo{}

	NewPurgeJob(commentRepo, likeRepo, 0, zap.NewNop()).Run()
}
