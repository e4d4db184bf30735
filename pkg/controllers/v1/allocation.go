package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stashbox/backend/pkg/httputil"
	"github.com/stashbox/backend/pkg/models"
	"golang.org/x/exp/slices"
)

// registerAllocationRoutes registers the routes for the allocations of
// an asset with the RouterGroup that is passed.
func (co Controller) registerAllocationRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", co.OptionsAllocations)
	r.GET("", co.GetAllocations)
	r.PUT("", co.SetAllocations)
	r.DELETE("", co.ClearAllocations)

	r.OPTIONS("/distribute", co.OptionsAllocationAction)
	r.POST("/distribute", co.DistributeAllocations)
	r.OPTIONS("/normalize", co.OptionsAllocationAction)
	r.POST("/normalize", co.NormalizeAllocations)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Allocations
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/assets/{id}/allocations [options]
func (co Controller) OptionsAllocations(c *gin.Context) {
	_, ok := co.asset(c)
	if !ok {
		return
	}

	httputil.OptionsGetPutDelete(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Allocations
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/assets/{id}/allocations/distribute [options]
// @Router			/v1/assets/{id}/allocations/normalize [options]
func (co Controller) OptionsAllocationAction(c *gin.Context) {
	_, ok := co.asset(c)
	if !ok {
		return
	}

	httputil.OptionsPost(c)
}

// @Summary		Get allocations
// @Description	Returns all allocations of the asset, including the ones with a percentage of zero
// @Tags			Allocations
// @Produce		json
// @Success		200	{object}	AllocationListResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	AllocationListResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/assets/{id}/allocations [get]
func (co Controller) GetAllocations(c *gin.Context) {
	asset, ok := co.asset(c)
	if !ok {
		return
	}

	allocations, err := asset.Allocations(co.DB)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AllocationListResponse{
			Error: &s,
		})
		return
	}

	slices.SortFunc(allocations, func(a, b models.Allocation) int {
		return strings.Compare(a.GoalID.String(), b.GoalID.String())
	})

	c.JSON(http.StatusOK, allocationList(c, allocations))
}

// @Summary		Set allocations
// @Description	Replaces the full allocation set of the asset. The percentages must not add up to more than 1.
// @Tags			Allocations
// @Produce		json
// @Success		200			{object}	AllocationListResponse
// @Failure		400			{object}	AllocationListResponse
// @Failure		404			{object}	AllocationListResponse
// @Failure		500			{object}	AllocationListResponse
// @Param			id			path		URIID			true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			allocations	body		AllocationSet	true	"Allocations"
// @Router			/v1/assets/{id}/allocations [put]
func (co Controller) SetAllocations(c *gin.Context) {
	asset, ok := co.asset(c)
	if !ok {
		return
	}

	var set AllocationSet
	err := httputil.BindData(c, &set)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AllocationListResponse{
			Error: &s,
		})
		return
	}

	allocations, err := models.SetAllocations(co.DB, asset.ID, set.Goals)
	co.respondAllocations(c, allocations, err)
}

// @Summary		Distribute evenly
// @Description	Replaces the allocation set of the asset with equal parts for all goals specified
// @Tags			Allocations
// @Produce		json
// @Success		200		{object}	AllocationListResponse
// @Failure		400		{object}	AllocationListResponse
// @Failure		404		{object}	AllocationListResponse
// @Failure		500		{object}	AllocationListResponse
// @Param			id		path		URIID					true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			goals	body		AllocationDistribution	true	"Goals"
// @Router			/v1/assets/{id}/allocations/distribute [post]
func (co Controller) DistributeAllocations(c *gin.Context) {
	asset, ok := co.asset(c)
	if !ok {
		return
	}

	var distribution AllocationDistribution
	err := httputil.BindData(c, &distribution)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AllocationListResponse{
			Error: &s,
		})
		return
	}

	allocations, err := models.DistributeEvenly(co.DB, asset.ID, distribution.GoalIDs)
	co.respondAllocations(c, allocations, err)
}

// @Summary		Normalize allocations
// @Description	Rescales the allocations of the asset so that they add up to 1
// @Tags			Allocations
// @Produce		json
// @Success		200	{object}	AllocationListResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	AllocationListResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/assets/{id}/allocations/normalize [post]
func (co Controller) NormalizeAllocations(c *gin.Context) {
	asset, ok := co.asset(c)
	if !ok {
		return
	}

	allocations, err := models.NormalizeAllocations(co.DB, asset.ID)
	co.respondAllocations(c, allocations, err)
}

// @Summary		Clear allocations
// @Description	Deletes all allocations of the asset
// @Tags			Allocations
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/assets/{id}/allocations [delete]
func (co Controller) ClearAllocations(c *gin.Context) {
	asset, ok := co.asset(c)
	if !ok {
		return
	}

	err := models.ClearAllocations(co.DB, asset.ID)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// respondAllocations sends the result of an operation that replaced the
// allocation set.
func (co Controller) respondAllocations(c *gin.Context, allocations []models.Allocation, err error) {
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AllocationListResponse{
			Error: &s,
		})
		return
	}

	slices.SortFunc(allocations, func(a, b models.Allocation) int {
		return strings.Compare(a.GoalID.String(), b.GoalID.String())
	})

	c.JSON(http.StatusOK, allocationList(c, allocations))
}

