package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/taxbridge/internal/taxlog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.LogEntry) error {
	var statusCode any
	if entry.StatusCode > 0 {
		statusCode = entry.StatusCode
	}
	var request any
	if len(entry.Request) > 0 {
		request = entry.Request
	}
	return db.WithContext(ctx).Exec(
		`INSERT INTO taxjar_logs (id, method, path, status_code, outcome, request, response, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Method,
		entry.Path,
		statusCode,
		entry.Outcome,
		request,
		entry.Response,
		entry.DurationMS,
		entry.CreatedAt,
	).Error
}

func (r *repo) ListAllByCreatedDesc(ctx context.Context, db *gorm.DB) ([]*domain.LogEntry, error) {
	var entries []*domain.LogEntry
	err := db.WithContext(ctx).Raw(
		`SELECT id, created_at FROM taxjar_logs ORDER BY created_at DESC, id DESC`,
	).Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repo) DeleteByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := db.WithContext(ctx).Exec(`DELETE FROM taxjar_logs WHERE id IN ?`, ids)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.LogEntry, error) {
	query := db.WithContext(ctx).
		Table("taxjar_logs").
		Select("id, method, path, COALESCE(status_code, 0) AS status_code, outcome, COALESCE(request, 'null') AS request, COALESCE(response, '') AS response, duration_ms, created_at")
	if filter.Cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			filter.Cursor.CreatedAt,
			filter.Cursor.CreatedAt,
			filter.Cursor.ID,
		)
	}

	var entries []*domain.LogEntry
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(filter.Limit).
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
