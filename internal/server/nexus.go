package server

import (
	"github.com/gin-gonic/gin"
)

// GetNexusStates mirrors the TaxJar status in both the envelope and the HTTP response.
func (s *Server) GetNexusStates(c *gin.Context) {
	env := s.nexusSvc.GetNexusRegions(c.Request.Context())
	c.JSON(env.Status, env)
}
