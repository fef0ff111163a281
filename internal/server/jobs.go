package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/taxbridge/internal/scheduler"
)

var jobRoutes = map[string]string{
	"order-backfill": scheduler.TaskOrderBackfill,
	"log-retention":  scheduler.TaskLogRetention,
}

// TriggerJob runs a scheduler task synchronously and reports its outcome.
func (s *Server) TriggerJob(c *gin.Context) {
	if s.jobs == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	task, ok := jobRoutes[strings.ToLower(strings.TrimSpace(c.Param("name")))]
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	if err := s.jobs.Trigger(c.Request.Context(), task); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"job": task, "status": "completed"}})
}
