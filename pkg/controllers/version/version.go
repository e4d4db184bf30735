package version

import (
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"
	"github.com/stashbox/backend/pkg/httputil"
)

// buildVersion is the version the router was built with.
var buildVersion = "0.0.0"

type Response struct {
	Data Object `json:"data"`
}

// Object describes the running build of the savings backend.
type Object struct {
	Version   string `json:"version" example:"1.1.0"`      // Release of the savings backend
	GoVersion string `json:"goVersion" example:"go1.25.0"` // Go toolchain the binary was built with
}

func RegisterRoutes(r *gin.RouterGroup, version string) {
	buildVersion = version

	r.GET("", Get)
	r.OPTIONS("", Options)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			General
// @Success		204
// @Router			/version [options]
func Options(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Build information
// @Description	Returns the release and Go version of the running savings backend
// @Tags			General
// @Success		200	{object}	Response
// @Router			/version [get]
func Get(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Data: Object{
			Version:   buildVersion,
			GoVersion: runtime.Version(),
		},
	})
}
