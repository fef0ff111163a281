package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// LogEntry is one recorded TaxJar API call.
type LogEntry struct {
	ID         snowflake.ID   `gorm:"primaryKey" json:"id"`
	Method     string         `json:"method"`
	Path       string         `json:"path"`
	StatusCode int            `json:"status_code,omitempty"`
	Outcome    string         `json:"outcome"`
	Request    datatypes.JSON `gorm:"type:jsonb" json:"request,omitempty"`
	Response   string         `json:"response,omitempty"`
	DurationMS int64          `gorm:"column:duration_ms" json:"duration_ms"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (LogEntry) TableName() string { return "taxjar_logs" }
