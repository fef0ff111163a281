package scheduler

import (
	"context"
	"time"

	obscontext "github.com/smallbiznis/taxbridge/internal/observability/context"
	obslogger "github.com/smallbiznis/taxbridge/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/taxbridge/internal/observability/metrics"
	"go.uber.org/zap"
)

type jobRun struct {
	job       string
	runID     string
	startedAt time.Time
}

type jobRunKey struct{}

func (s *Scheduler) startJobRun(ctx context.Context, job string) (context.Context, *jobRun) {
	run := &jobRun{
		job:       job,
		runID:     s.genID.Generate().String(),
		startedAt: s.clock.Now(),
	}
	ctx = context.WithValue(ctx, jobRunKey{}, run)
	ctx = obscontext.WithActor(ctx, "system", "scheduler")
	return ctx, run
}

// JobRunID returns the id of the scheduler run executing ctx, if any.
func JobRunID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if run, ok := ctx.Value(jobRunKey{}).(*jobRun); ok {
		return run.runID
	}
	return ""
}

func (s *Scheduler) logger(ctx context.Context) *zap.Logger {
	return obslogger.WithContext(ctx, s.log)
}

func (s *Scheduler) logJobStart(ctx context.Context, run *jobRun) {
	if run == nil {
		return
	}
	s.logger(ctx).Info("scheduler.job.start",
		zap.String("job", run.job),
		zap.String("run_id", run.runID),
	)
}

func (s *Scheduler) logJobFinish(ctx context.Context, run *jobRun, err error) {
	if run == nil {
		return
	}
	fields := []zap.Field{
		zap.String("job", run.job),
		zap.String("run_id", run.runID),
		zap.Int64("duration_ms", s.clock.Now().Sub(run.startedAt).Milliseconds()),
		zap.Bool("success", err == nil),
	}
	log := s.logger(ctx)
	if err != nil {
		log.Warn("scheduler.job.finish", fields...)
		return
	}
	log.Info("scheduler.job.finish", fields...)
}

func (s *Scheduler) logSchedulerError(ctx context.Context, run *jobRun, msg string, err error, fields ...zap.Field) {
	if err == nil {
		return
	}
	baseFields := []zap.Field{
		zap.String("error_type", obsmetrics.ClassifySchedulerErrorType(err)),
		zap.String("reason", obsmetrics.ClassifySchedulerJobReason(err)),
		zap.String("error", err.Error()),
	}
	if run != nil {
		baseFields = append(baseFields,
			zap.String("job", run.job),
			zap.String("run_id", run.runID),
		)
	}
	s.logger(ctx).Error(msg, append(baseFields, fields...)...)
}
