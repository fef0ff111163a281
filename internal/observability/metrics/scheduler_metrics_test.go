package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestClassifySchedulerJobReason(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "deadline", err: context.DeadlineExceeded, want: SchedulerJobReasonDeadlineExceeded},
		{name: "db_lock_timeout", err: &pgconn.PgError{Code: "55P03"}, want: SchedulerJobReasonDBLockTimeout},
		{name: "serialization_failure", err: &pgconn.PgError{Code: "40001"}, want: SchedulerJobReasonSerializationFailure},
		{name: "unique_violation", err: gorm.ErrDuplicatedKey, want: SchedulerJobReasonUniqueViolation},
		{name: "wrapped_unique_violation", err: fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), want: SchedulerJobReasonUniqueViolation},
		{name: "unknown", err: errors.New("boom"), want: SchedulerJobReasonUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifySchedulerJobReason(tc.err))
		})
	}
}

func TestClassifySchedulerErrorType(t *testing.T) {
	assert.Equal(t, SchedulerErrorTypeUnknown, ClassifySchedulerErrorType(nil))
	assert.Equal(t, SchedulerErrorTypeDeadlineExceeded, ClassifySchedulerErrorType(context.Canceled))
	assert.Equal(t, SchedulerErrorTypeDB, ClassifySchedulerErrorType(fmt.Errorf("flag orders: %w", &pgconn.PgError{Code: "40001"})))
	assert.Equal(t, SchedulerErrorTypeDB, ClassifySchedulerErrorType(&pgconn.PgError{Code: "42P01"}))
	assert.Equal(t, SchedulerErrorTypeBusinessRule, ClassifySchedulerErrorType(gorm.ErrRecordNotFound))
}

func TestAddBatchProcessed(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := newSchedulerMetrics(registry, Config{
		ServiceName: "taxbridge",
		Environment: "test",
	})

	metrics.AddBatchProcessed("order_taxjar_backfill", "orders", 3)
	metrics.AddBatchProcessed("order_taxjar_backfill", "orders", 0)

	got := testutil.ToFloat64(metrics.batchProcessed.WithLabelValues("order_taxjar_backfill", "orders"))
	assert.Equal(t, float64(3), got)
}

func TestSkippedAndLastSuccess(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := newSchedulerMetrics(registry, Config{})

	metrics.IncJobSkipped("taxjar_log_retention", SchedulerSkipReasonRunning)
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	metrics.SetLastSuccess("taxjar_log_retention", at)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.jobSkipped.WithLabelValues("taxjar_log_retention", SchedulerSkipReasonRunning)))
	assert.Equal(t, float64(at.Unix()), testutil.ToFloat64(metrics.lastSuccess.WithLabelValues("taxjar_log_retention")))
}
