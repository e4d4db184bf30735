package healthz

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stashbox/backend/pkg/httperrors"
	"github.com/stashbox/backend/pkg/httputil"
	"gorm.io/gorm"
)

func RegisterRoutes(r *gin.RouterGroup, db *gorm.DB) {
	r.OPTIONS("", Options)
	r.GET("", Get(db))
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			General
// @Success		204
// @Router			/healthz [options]
func Options(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Get health
// @Description	Returns the application health and, if not healthy, an error
// @Tags			General
// @Produce		json
// @Success		204
// @Failure		500	{object} httperrors.HTTPError
// @Router			/healthz [get]
func Get(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil {
			httperrors.New(c, http.StatusInternalServerError, "database is unavailable: %s", err.Error())
			return
		}

		err = sqlDB.Ping()
		if err != nil {
			httperrors.New(c, http.StatusInternalServerError, "database is unavailable: %s", err.Error())
			return
		}

		c.Status(http.StatusNoContent)
	}
}
