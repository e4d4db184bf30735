package root

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stashbox/backend/pkg/httputil"
	"github.com/stashbox/backend/pkg/models"
)

type Response struct {
	Links Links `json:"links"`
}

// Links points to the service endpoints and to the v1 resource API.
type Links struct {
	Healthz string `json:"healthz" example:"https://example.com/api/healthz"` // Liveness check including the database
	Version string `json:"version" example:"https://example.com/api/version"` // Build information
	Metrics string `json:"metrics" example:"https://example.com/api/metrics"` // Request and reconciliation metrics
	V1      string `json:"v1" example:"https://example.com/api/v1"`           // Assets, goals, transactions and monthly plans
}

func RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", Get)
	r.OPTIONS("", Options)
}

// @Summary		Service root
// @Description	Links to the service endpoints and the v1 API of the savings backend
// @Tags			General
// @Success		200	{object}	Response
// @Router			/ [get]
func Get(c *gin.Context) {
	base := c.GetString(string(models.DBContextURL))

	c.JSON(http.StatusOK, Response{
		Links: Links{
			Healthz: base + "/healthz",
			Version: base + "/version",
			Metrics: base + "/metrics",
			V1:      base + "/v1",
		},
	})
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			General
// @Success		204
// @Router			/ [options]
func Options(c *gin.Context) {
	httputil.OptionsGet(c)
}
