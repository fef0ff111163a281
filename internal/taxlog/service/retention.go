package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/taxbridge/internal/clock"
	obsmetrics "github.com/smallbiznis/taxbridge/internal/observability/metrics"
	"github.com/smallbiznis/taxbridge/internal/taxlog/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const RetentionJobName = "taxjar_log_retention"

type RetentionParams struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	Repo    domain.Repository
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type RetentionService struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	repo    domain.Repository
	metrics *obsmetrics.Metrics
}

func NewRetentionService(p RetentionParams) domain.RetentionService {
	return &RetentionService{
		db:      p.DB,
		log:     p.Log.Named("taxlog.retention"),
		clock:   p.Clock,
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

// Run deletes every entry older than RetentionDays in a single statement.
// Entries exactly RetentionDays old are kept.
func (s *RetentionService) Run(ctx context.Context) (domain.RetentionResult, error) {
	entries, err := s.repo.ListAllByCreatedDesc(ctx, s.db)
	if err != nil {
		return domain.RetentionResult{}, fmt.Errorf("list log entries: %w", err)
	}

	now := s.clock.Now()
	expired := make([]snowflake.ID, 0)
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		if expiredAt(entry.CreatedAt, now) {
			expired = append(expired, entry.ID)
		}
	}

	result := domain.RetentionResult{Scanned: len(entries)}
	if len(expired) == 0 {
		s.log.Debug("no expired log entries", zap.Int("scanned", len(entries)))
		return result, nil
	}

	deleted, err := s.repo.DeleteByIDs(ctx, s.db, expired)
	if err != nil {
		return result, fmt.Errorf("delete expired log entries: %w", err)
	}
	result.Deleted = int(deleted)
	s.metrics.RecordLogsPurged(ctx, result.Deleted)

	s.log.Info("expired log entries deleted",
		zap.Int("scanned", result.Scanned),
		zap.Int("expired", len(expired)),
		zap.Int64("deleted", deleted),
	)
	return result, nil
}

const retentionWindow = domain.RetentionDays * 24 * time.Hour

func expiredAt(createdAt, now time.Time) bool {
	return now.Sub(createdAt) > retentionWindow
}
