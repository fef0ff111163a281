package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/taxbridge/internal/clock"
	"github.com/smallbiznis/taxbridge/internal/taxlog/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Insert(ctx context.Context, db *gorm.DB, entry *domain.LogEntry) error {
	args := m.Called(ctx, db, entry)
	return args.Error(0)
}

func (m *mockRepository) ListAllByCreatedDesc(ctx context.Context, db *gorm.DB) ([]*domain.LogEntry, error) {
	args := m.Called(ctx, db)
	entries, _ := args.Get(0).([]*domain.LogEntry)
	return entries, args.Error(1)
}

func (m *mockRepository) DeleteByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) (int64, error) {
	args := m.Called(ctx, db, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRepository) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.LogEntry, error) {
	args := m.Called(ctx, db, filter)
	entries, _ := args.Get(0).([]*domain.LogEntry)
	return entries, args.Error(1)
}

var retentionNow = time.Date(2025, 6, 20, 9, 30, 0, 0, time.UTC)

func newRetention(t *testing.T, repo domain.Repository) domain.RetentionService {
	t.Helper()
	return NewRetentionService(RetentionParams{
		Log:   zaptest.NewLogger(t),
		Clock: clock.NewFakeClock(retentionNow),
		Repo:  repo,
	})
}

func entryAged(id int64, age time.Duration) *domain.LogEntry {
	return &domain.LogEntry{ID: snowflake.ID(id), CreatedAt: retentionNow.Add(-age)}
}

func TestRetentionBoundaries(t *testing.T) {
	const day = 24 * time.Hour

	repo := &mockRepository{}
	repo.On("ListAllByCreatedDesc", mock.Anything, mock.Anything).Return([]*domain.LogEntry{
		entryAged(1, 0),
		entryAged(2, 10*day),
		entryAged(3, 10*day+time.Second),
		entryAged(4, 11*day-time.Second),
		entryAged(5, 11*day),
		entryAged(6, 40*day),
	}, nil)
	repo.On("DeleteByIDs", mock.Anything, mock.Anything, []snowflake.ID{3, 4, 5, 6}).Return(int64(4), nil).Once()

	result, err := newRetention(t, repo).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.RetentionResult{Scanned: 6, Deleted: 4}, result)
	repo.AssertExpectations(t)
	repo.AssertNumberOfCalls(t, "DeleteByIDs", 1)
}

func TestRetentionSkipsDeleteWhenNothingExpired(t *testing.T) {
	repo := &mockRepository{}
	repo.On("ListAllByCreatedDesc", mock.Anything, mock.Anything).Return([]*domain.LogEntry{
		entryAged(1, time.Hour),
		entryAged(2, 10*24*time.Hour),
	}, nil)

	result, err := newRetention(t, repo).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.RetentionResult{Scanned: 2}, result)
	repo.AssertNotCalled(t, "DeleteByIDs", mock.Anything, mock.Anything, mock.Anything)
}

func TestRetentionEmptyTable(t *testing.T) {
	repo := &mockRepository{}
	repo.On("ListAllByCreatedDesc", mock.Anything, mock.Anything).Return(nil, nil)

	result, err := newRetention(t, repo).Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, result.Deleted)
	repo.AssertNotCalled(t, "DeleteByIDs", mock.Anything, mock.Anything, mock.Anything)
}

func TestRetentionPropagatesErrors(t *testing.T) {
	storageDown := errors.New("storage unavailable")

	t.Run("list", func(t *testing.T) {
		repo := &mockRepository{}
		repo.On("ListAllByCreatedDesc", mock.Anything, mock.Anything).Return(nil, storageDown)

		_, err := newRetention(t, repo).Run(context.Background())
		require.ErrorIs(t, err, storageDown)
	})

	t.Run("delete", func(t *testing.T) {
		repo := &mockRepository{}
		repo.On("ListAllByCreatedDesc", mock.Anything, mock.Anything).Return([]*domain.LogEntry{
			entryAged(1, 30*24*time.Hour),
		}, nil)
		repo.On("DeleteByIDs", mock.Anything, mock.Anything, []snowflake.ID{1}).Return(int64(0), storageDown)

		_, err := newRetention(t, repo).Run(context.Background())
		require.ErrorIs(t, err, storageDown)
	})
}

func TestExpiredAt(t *testing.T) {
	cases := []struct {
		name string
		age  time.Duration
		want bool
	}{
		{name: "fresh", age: 0, want: false},
		{name: "nine days", age: 9 * 24 * time.Hour, want: false},
		{name: "exactly ten days", age: 240 * time.Hour, want: false},
		{name: "ten days and a nanosecond", age: 240*time.Hour + time.Nanosecond, want: true},
		{name: "ten days and a second", age: 240*time.Hour + time.Second, want: true},
		{name: "eleven days", age: 264 * time.Hour, want: true},
		{name: "future timestamp", age: -time.Hour, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, expiredAt(retentionNow.Add(-tc.age), retentionNow))
		})
	}
}
