package domain

import (
	"context"
	"errors"
)

type BackfillResult struct {
	// Matched counts qualifying orders the update statement matched, whether or
	// not their custom fields actually changed.
	Matched int    `json:"matched"`
	Message string `json:"message"`
}

type BackfillService interface {
	Run(ctx context.Context) (BackfillResult, error)
}

var (
	ErrInvalidCustomFields = errors.New("invalid_custom_fields")
	ErrNotificationFailed  = errors.New("notification_failed")
)
