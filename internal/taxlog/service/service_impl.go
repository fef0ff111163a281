package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/taxbridge/internal/taxlog/domain"
	"github.com/smallbiznis/taxbridge/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("taxlog.service"),
		repo: p.Repo,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	limit := req.Limit()
	filter := domain.ListFilter{Limit: limit + 1}

	if token := strings.TrimSpace(req.PageToken); token != "" {
		cursor, err := decodeListCursor(token)
		if err != nil {
			return domain.ListResponse{}, domain.ErrInvalidPageToken
		}
		filter.Cursor = cursor
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return domain.ListResponse{}, err
	}

	page, info := pagination.BuildCursorPage(items, limit, func(e *domain.LogEntry) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        e.ID.String(),
			CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			s.log.Warn("failed to encode page token", zap.Error(err))
			return ""
		}
		return token
	})

	entries := make([]domain.LogEntry, 0, len(page))
	for _, item := range page {
		if item == nil {
			continue
		}
		entries = append(entries, *item)
	}
	return domain.ListResponse{Entries: entries, PageInfo: *info}, nil
}

func decodeListCursor(token string) (*domain.ListCursor, error) {
	cursor, err := pagination.DecodeCursor(token)
	if err != nil {
		return nil, err
	}
	id, err := strconv.ParseInt(cursor.ID, 10, 64)
	if err != nil {
		return nil, err
	}
	createdAt, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &domain.ListCursor{ID: snowflake.ID(id), CreatedAt: createdAt}, nil
}
