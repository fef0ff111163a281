package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	taxproviderdomain "github.com/smallbiznis/taxbridge/internal/taxprovider/domain"
)

type bindTaxProviderRequest struct {
	Provider string `json:"provider"`
}

func (s *Server) ListTaxProviders(c *gin.Context) {
	providers, err := s.taxProviderSvc.ListProviders(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": providers})
}

func (s *Server) ListTaxProviderBindings(c *gin.Context) {
	bindings, err := s.taxProviderSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": bindings})
}

func (s *Server) GetTaxRuleProvider(c *gin.Context) {
	binding, err := s.taxProviderSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": binding})
}

func (s *Server) BindTaxRuleProvider(c *gin.Context) {
	var req bindTaxProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	binding, err := s.taxProviderSvc.Bind(c.Request.Context(), taxproviderdomain.BindRequest{
		TaxRuleID: c.Param("id"),
		Provider:  strings.TrimSpace(req.Provider),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": binding})
}

func (s *Server) ClearTaxRuleProvider(c *gin.Context) {
	if err := s.taxProviderSvc.Clear(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
