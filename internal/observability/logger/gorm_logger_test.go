package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	gormlogger "gorm.io/gorm/logger"
)

func TestOperationFromSQL(t *testing.T) {
	cases := map[string]string{
		"SELECT * FROM taxjar_logs":                    "SELECT",
		"  delete from taxjar_logs where id in (1,2)":  "DELETE",
		"WITH q AS (SELECT 1) UPDATE orders SET x = 1": "SELECT",
		"INSERT INTO notifications (id) VALUES (1)":    "INSERT",
		"":                         "UNKNOWN",
		"PRAGMA foreign_keys = ON": "UNKNOWN",
	}
	for sql, want := range cases {
		assert.Equal(t, want, operationFromSQL(sql), sql)
	}
}

func TestGormLoggerConfigFromLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Info, GormLoggerConfigFromLevel("DEBUG").Level)
	assert.Equal(t, gormlogger.Error, GormLoggerConfigFromLevel("error").Level)
	assert.Equal(t, gormlogger.Silent, GormLoggerConfigFromLevel("off").Level)
	assert.Equal(t, gormlogger.Warn, GormLoggerConfigFromLevel("info").Level)
}
