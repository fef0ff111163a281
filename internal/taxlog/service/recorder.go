package service

import (
	"context"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/taxbridge/internal/taxjar"
	"github.com/smallbiznis/taxbridge/internal/taxlog/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// maxResponseBytes caps stored response bodies.
const maxResponseBytes = 64 << 10

type RecorderParams struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

// Recorder persists one log entry per TaxJar call.
type Recorder struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func NewRecorder(p RecorderParams) *Recorder {
	return &Recorder{
		db:    p.DB,
		log:   p.Log.Named("taxlog.recorder"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (r *Recorder) RecordCall(ctx context.Context, call taxjar.Call) {
	entry := &domain.LogEntry{
		ID:         r.genID.Generate(),
		Method:     call.Method,
		Path:       call.Path,
		StatusCode: call.Result.StatusCode,
		Outcome:    string(call.Result.Kind),
		DurationMS: call.Duration.Milliseconds(),
		CreatedAt:  call.StartedAt,
	}
	if len(call.RequestBody) > 0 && json.Valid(call.RequestBody) {
		entry.Request = datatypes.JSON(call.RequestBody)
	}
	if call.Result.IsUnexpected() {
		entry.Response = textColumn(call.Result.Message)
	} else {
		entry.Response = truncate(call.Result.Body, maxResponseBytes)
	}

	// The entry outlives a request context that is cancelled right after the call.
	if err := r.repo.Insert(context.WithoutCancel(ctx), r.db, entry); err != nil {
		r.log.Warn("failed to record taxjar call",
			zap.String("method", call.Method),
			zap.String("path", call.Path),
			zap.Error(err),
		)
	}
}

// truncate caps body at limit bytes without splitting a rune and returns text
// a postgres TEXT column accepts.
func truncate(body []byte, limit int) string {
	if len(body) > limit {
		cut := limit
		for cut > 0 && limit-cut < utf8.UTFMax && !utf8.RuneStart(body[cut]) {
			cut--
		}
		body = body[:cut]
	}
	return textColumn(string(body))
}

func textColumn(s string) string {
	s = strings.ToValidUTF8(s, string(utf8.RuneError))
	return strings.ReplaceAll(s, "\x00", "")
}
