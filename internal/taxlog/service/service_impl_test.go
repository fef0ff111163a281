package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/taxbridge/internal/clock"
	"github.com/smallbiznis/taxbridge/internal/taxjar"
	"github.com/smallbiznis/taxbridge/internal/taxlog/domain"
	"github.com/smallbiznis/taxbridge/internal/taxlog/repository"
	"github.com/smallbiznis/taxbridge/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Exec(`CREATE TABLE taxjar_logs (
		id INTEGER PRIMARY KEY,
		method TEXT NOT NULL,
		path TEXT NOT NULL,
		status_code INTEGER,
		outcome TEXT NOT NULL,
		request TEXT,
		response TEXT,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	)`).Error; err != nil {
		t.Fatalf("create taxjar_logs: %v", err)
	}
	return db
}

func newNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return node
}

func TestRecorderPersistsCalls(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.Provide()
	recorder := NewRecorder(RecorderParams{DB: db, Log: zaptest.NewLogger(t), GenID: newNode(t), Repo: repo})
	started := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	recorder.RecordCall(ctx, taxjar.Call{
		Method:      http.MethodPost,
		Path:        "/taxes",
		RequestBody: []byte(`{"to_zip":"94107"}`),
		Result:      taxjar.Failure(http.StatusUnauthorized, []byte(`{"error":"Unauthorized"}`)),
		StartedAt:   started,
		Duration:    150 * time.Millisecond,
	})
	recorder.RecordCall(context.Background(), taxjar.Call{
		Method:    http.MethodGet,
		Path:      "/nexus/regions",
		Result:    taxjar.Unexpected("dial tcp: connection refused"),
		StartedAt: started.Add(time.Minute),
	})

	svc := New(Params{DB: db, Log: zaptest.NewLogger(t), Repo: repo})
	resp, err := svc.List(context.Background(), domain.ListRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Entries, 2)

	newest := resp.Entries[0]
	assert.Equal(t, "/nexus/regions", newest.Path)
	assert.Equal(t, "unexpected", newest.Outcome)
	assert.Zero(t, newest.StatusCode)
	assert.Equal(t, "dial tcp: connection refused", newest.Response)

	oldest := resp.Entries[1]
	assert.Equal(t, http.MethodPost, oldest.Method)
	assert.Equal(t, http.StatusUnauthorized, oldest.StatusCode)
	assert.Equal(t, "failure", oldest.Outcome)
	assert.JSONEq(t, `{"to_zip":"94107"}`, string(oldest.Request))
	assert.Equal(t, `{"error":"Unauthorized"}`, oldest.Response)
	assert.Equal(t, int64(150), oldest.DurationMS)
	assert.False(t, resp.PageInfo.HasMore)
}

type failingInsertRepo struct {
	domain.Repository
}

func (failingInsertRepo) Insert(context.Context, *gorm.DB, *domain.LogEntry) error {
	return errors.New("insert failed")
}

func TestRecorderSwallowsInsertErrors(t *testing.T) {
	recorder := NewRecorder(RecorderParams{
		Log:   zaptest.NewLogger(t),
		GenID: newNode(t),
		Repo:  failingInsertRepo{},
	})
	assert.NotPanics(t, func() {
		recorder.RecordCall(context.Background(), taxjar.Call{
			Method: http.MethodGet,
			Path:   "/nexus/regions",
			Result: taxjar.Success(http.StatusOK, []byte(`{}`)),
		})
	})
}

func TestListPaginatesNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.Provide()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= 5; i++ {
		require.NoError(t, repo.Insert(context.Background(), db, &domain.LogEntry{
			ID:        snowflake.ID(i),
			Method:    http.MethodGet,
			Path:      fmt.Sprintf("/call/%d", i),
			Outcome:   "success",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	svc := New(Params{DB: db, Log: zaptest.NewLogger(t), Repo: repo})
	ctx := context.Background()

	first, err := svc.List(ctx, domain.ListRequest{Pagination: pagination.Pagination{PageSize: 2}})
	require.NoError(t, err)
	require.Len(t, first.Entries, 2)
	assert.Equal(t, snowflake.ID(5), first.Entries[0].ID)
	assert.Equal(t, snowflake.ID(4), first.Entries[1].ID)
	require.True(t, first.PageInfo.HasMore)
	require.NotEmpty(t, first.PageInfo.NextPageToken)

	second, err := svc.List(ctx, domain.ListRequest{Pagination: pagination.Pagination{PageSize: 2, PageToken: first.PageInfo.NextPageToken}})
	require.NoError(t, err)
	require.Len(t, second.Entries, 2)
	assert.Equal(t, snowflake.ID(3), second.Entries[0].ID)
	assert.Equal(t, snowflake.ID(2), second.Entries[1].ID)

	third, err := svc.List(ctx, domain.ListRequest{Pagination: pagination.Pagination{PageSize: 2, PageToken: second.PageInfo.NextPageToken}})
	require.NoError(t, err)
	require.Len(t, third.Entries, 1)
	assert.Equal(t, snowflake.ID(1), third.Entries[0].ID)
	assert.False(t, third.PageInfo.HasMore)
	assert.Empty(t, third.PageInfo.NextPageToken)
}

func TestListRejectsBadPageToken(t *testing.T) {
	db := setupTestDB(t)
	svc := New(Params{DB: db, Log: zaptest.NewLogger(t), Repo: repository.Provide()})

	_, err := svc.List(context.Background(), domain.ListRequest{Pagination: pagination.Pagination{PageToken: "%%%"}})
	assert.ErrorIs(t, err, domain.ErrInvalidPageToken)
}

func TestRetentionDeletesFromStore(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.Provide()
	now := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	ages := map[int64]time.Duration{
		1: 24 * time.Hour,
		2: 10 * 24 * time.Hour,
		3: 11 * 24 * time.Hour,
		4: 15 * 24 * time.Hour,
		5: 10*24*time.Hour + time.Second,
	}
	for id, age := range ages {
		require.NoError(t, repo.Insert(context.Background(), db, &domain.LogEntry{
			ID:        snowflake.ID(id),
			Method:    http.MethodGet,
			Path:      "/nexus/regions",
			Outcome:   "success",
			CreatedAt: now.Add(-age),
		}))
	}

	svc := NewRetentionService(RetentionParams{
		DB:    db,
		Log:   zaptest.NewLogger(t),
		Clock: clock.NewFakeClock(now),
		Repo:  repo,
	})
	result, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.RetentionResult{Scanned: 5, Deleted: 3}, result)

	var remaining []int64
	require.NoError(t, db.Raw(`SELECT id FROM taxjar_logs ORDER BY id`).Scan(&remaining).Error)
	assert.Equal(t, []int64{1, 2}, remaining)
}
