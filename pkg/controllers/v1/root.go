package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stashbox/backend/pkg/httputil"
	"github.com/stashbox/backend/pkg/models"
)

// RegisterRoutes registers all v1 routes with the RouterGroup that is
// passed.
func (co Controller) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", Get)
	r.OPTIONS("", Options)

	co.RegisterAssetRoutes(r.Group("/assets"))
	co.RegisterGoalRoutes(r.Group("/goals"))
	co.RegisterTransactionRoutes(r.Group("/transactions"))
	co.RegisterExecutionRecordRoutes(r.Group("/execution-records"))
}

type Response struct {
	Links Links `json:"links"` // Links for the v1 API
}

type Links struct {
	Assets           string `json:"assets" example:"https://example.com/api/v1/assets"`                     // URL of Asset collection endpoint
	Goals            string `json:"goals" example:"https://example.com/api/v1/goals"`                       // URL of Goal collection endpoint
	ExecutionRecords string `json:"executionRecords" example:"https://example.com/api/v1/execution-records"` // URL of the Execution Record endpoint
}

// Get returns the link list for v1
//
//	@Summary		v1 API
//	@Description	Returns general information about the v1 API
//	@Tags			v1
//	@Success		200	{object}	Response
//	@Router			/v1 [get]
func Get(c *gin.Context) {
	url := c.GetString(string(models.DBContextURL))

	c.JSON(http.StatusOK, Response{
		Links: Links{
			Assets:           url + "/v1/assets",
			Goals:            url + "/v1/goals",
			ExecutionRecords: url + "/v1/execution-records",
		},
	})
}

// Options returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			v1
//	@Success		204
//	@Router			/v1 [options]
func Options(c *gin.Context) {
	httputil.OptionsGet(c)
}
