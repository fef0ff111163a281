package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/taxbridge/pkg/db/pagination"
)

const (
	// RetentionDays is the age in days past which an entry is deleted.
	RetentionDays = 10
	// RetentionInterval is how often the retention job runs.
	RetentionInterval = 24 * time.Hour
)

type RetentionResult struct {
	Scanned int `json:"scanned"`
	Deleted int `json:"deleted"`
}

type RetentionService interface {
	Run(ctx context.Context) (RetentionResult, error)
}

type ListRequest struct {
	pagination.Pagination
}

type ListResponse struct {
	Entries  []LogEntry          `json:"entries"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

type Service interface {
	List(ctx context.Context, req ListRequest) (ListResponse, error)
}

var (
	ErrInvalidPageToken = errors.New("invalid_page_token")
)
