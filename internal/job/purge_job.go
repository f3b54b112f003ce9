package job

import (
	"context"
	"time"

	"go.uber.org/zap"

	"blog-comment-api/internal/repository"
)

// PurgeJob removes soft-deleted comments once they are old enough and no
// longer anchor any replies. Soft deletion keeps thread structure intact;
// this job reclaims the rows after the retention window passes.
type PurgeJob struct {
	commentRepo repository.CommentRepository
	likeRepo    repository.LikeRepository
	retention   time.Duration
	logger      *zap.Logger
}

// NewPurgeJob creates a new PurgeJob instance
func NewPurgeJob(
	commentRepo repository.CommentRepository,
	likeRepo repository.LikeRepository,
	retention time.Duration,
	logger *zap.Logger,
) *PurgeJob {
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	return &PurgeJob{
		commentRepo: commentRepo,
		likeRepo:    likeRepo,
		retention:   retention,
		logger:      logger,
	}
}

// Run executes one purge pass. It satisfies cron.Job.
func (j *PurgeJob) Run() {
	ctx := context.Background()
	cutoff := time.Now().Add(-j.retention)

	j.logger.Info("Starting purge job for tombstoned comments",
		zap.Time("cutoff", cutoff),
	)

	purgeable, err := j.commentRepo.FindPurgeableBefore(ctx, cutoff)
	if err != nil {
		j.logger.Error("Failed to find purgeable comments", zap.Error(err))
		return
	}

	if len(purgeable) == 0 {
		j.logger.Info("No purgeable comments found")
		return
	}

	successCount := 0
	failCount := 0

	for _, comment := range purgeable {
		if err := j.likeRepo.DeleteByComment(ctx, comment.ID); err != nil {
			j.logger.Error("Failed to delete likes for purged comment",
				zap.Int64("comment_id", comment.ID),
				zap.Error(err),
			)
			failCount++
			continue
		}

		if err := j.commentRepo.Delete(ctx, comment.ID); err != nil {
			j.logger.Error("Failed to purge comment",
				zap.Int64("comment_id", comment.ID),
				zap.Error(err),
			)
			failCount++
			continue
		}

		successCount++
	}

	j.logger.Info("Purge job completed",
		zap.Int("total_purgeable", len(purgeable)),
		zap.Int("success", successCount),
		zap.Int("failed", failCount),
	)
}
