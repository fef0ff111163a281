package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	taxlogdomain "github.com/smallbiznis/taxbridge/internal/taxlog/domain"
	"github.com/smallbiznis/taxbridge/pkg/db/pagination"
)

func (s *Server) ListTaxJarLogs(c *gin.Context) {
	var query struct {
		pagination.Pagination
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.taxLogSvc.List(c.Request.Context(), taxlogdomain.ListRequest{
		Pagination: query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      resp.Entries,
		"page_info": resp.PageInfo,
	})
}
