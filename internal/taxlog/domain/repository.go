package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	Limit  int
	Cursor *ListCursor
}

type ListCursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *LogEntry) error
	// ListAllByCreatedDesc returns id and created_at for every entry, newest first.
	ListAllByCreatedDesc(ctx context.Context, db *gorm.DB) ([]*LogEntry, error)
	DeleteByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) (int64, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*LogEntry, error)
}
