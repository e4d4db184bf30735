package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stashbox/backend/pkg/httputil"
	"github.com/stashbox/backend/pkg/models"
)

// RegisterAssetRoutes registers the routes for assets with
// the RouterGroup that is passed.
func (co Controller) RegisterAssetRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsAssetList)
		r.GET("", co.GetAssets)
		r.POST("", co.CreateAssets)
	}

	// Asset with ID
	{
		r.OPTIONS("/:id", co.OptionsAssetDetail)
		r.GET("/:id", co.GetAsset)
		r.DELETE("/:id", co.DeleteAsset)
	}

	co.registerAllocationRoutes(r.Group("/:id/allocations"))
	co.registerDepositRoutes(r.Group("/:id/transactions"))
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Assets
// @Success		204
// @Router			/v1/assets [options]
func OptionsAssetList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Assets
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/assets/{id} [options]
func (co Controller) OptionsAssetDetail(c *gin.Context) {
	_, ok := co.asset(c)
	if !ok {
		return
	}

	httputil.OptionsGetDelete(c)
}

// asset loads the asset with the ID from the URI. If that fails, an error
// response is sent and ok is false.
func (co Controller) asset(c *gin.Context) (asset models.Asset, ok bool) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = co.DB.First(&asset, "id = ?", uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	return asset, true
}

// @Summary		Creates assets
// @Description	Creates new assets
// @Tags			Assets
// @Produce		json
// @Success		201		{object}	AssetCreateResponse
// @Failure		400		{object}	AssetCreateResponse
// @Failure		500		{object}	AssetCreateResponse
// @Param			assets	body		[]AssetEditable	true	"Assets"
// @Router			/v1/assets [post]
func (co Controller) CreateAssets(c *gin.Context) {
	var editables []AssetEditable

	// Bind data and return error if not possible
	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AssetCreateResponse{
			Error: &e,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := AssetCreateResponse{}

	for _, editable := range editables {
		asset := editable.model()
		err = co.DB.Create(&asset).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data, err := newAsset(c, co.DB, asset)
		if err != nil {
			status = r.appendError(err, status)
			continue
		}
		r.Data = append(r.Data, AssetResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		List assets
// @Description	Returns a list of assets, ordered by name
// @Tags			Assets
// @Produce		json
// @Success		200	{object}	AssetListResponse
// @Failure		500	{object}	AssetListResponse
// @Router			/v1/assets [get]
func (co Controller) GetAssets(c *gin.Context) {
	var assets []models.Asset
	err := co.DB.Order("name ASC").Find(&assets).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AssetListResponse{
			Error: &s,
		})
		return
	}

	// When there are no resources, we want an empty list, not null
	data := make([]Asset, 0, len(assets))
	for _, asset := range assets {
		a, err := newAsset(c, co.DB, asset)
		if err != nil {
			s := err.Error()
			c.JSON(status(err), AssetListResponse{
				Error: &s,
			})
			return
		}
		data = append(data, a)
	}

	c.JSON(http.StatusOK, AssetListResponse{Data: data})
}

// @Summary		Get asset
// @Description	Returns a specific asset
// @Tags			Assets
// @Produce		json
// @Success		200	{object}	AssetResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	AssetResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/assets/{id} [get]
func (co Controller) GetAsset(c *gin.Context) {
	asset, ok := co.asset(c)
	if !ok {
		return
	}

	data, err := newAsset(c, co.DB, asset)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AssetResponse{
			Error: &s,
		})
		return
	}

	c.JSON(http.StatusOK, AssetResponse{Data: &data})
}

// @Summary		Delete asset
// @Description	Deletes an asset with its allocations and transactions. Contributions stay with the goals.
// @Tags			Assets
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/assets/{id} [delete]
func (co Controller) DeleteAsset(c *gin.Context) {
	asset, ok := co.asset(c)
	if !ok {
		return
	}

	err := co.DB.Delete(&asset).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
