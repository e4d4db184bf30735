package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stashbox/backend/internal/types"
	"github.com/stashbox/backend/pkg/httputil"
	"github.com/stashbox/backend/pkg/models"
)

// RegisterExecutionRecordRoutes registers the routes for execution records
// with the RouterGroup that is passed.
func (co Controller) RegisterExecutionRecordRoutes(r *gin.RouterGroup) {
	r.OPTIONS("/:month", co.OptionsExecutionRecord)
	r.GET("/:month", co.GetExecutionRecord)
}

// ExecutionRecord is the API v1 representation of the execution record of
// a month.
type ExecutionRecord struct {
	models.DefaultModel
	Month types.Month   `json:"month" example:"2024-03"` // The month of the record
	Plans []MonthlyPlan `json:"plans"`                   // The monthly plans that received contributions in the month
}

type ExecutionRecordResponse struct {
	Data  *ExecutionRecord `json:"data"`                                                                     // Data for the execution record
	Error *string          `json:"error" example:"could not parse the specified month, use YYYY-MM format"` // The error, if any occurred
}

// executionRecord parses the month from the URI and loads its record. If
// that fails, an error response is sent and ok is false.
func (co Controller) executionRecord(c *gin.Context) (record models.ExecutionRecord, ok bool) {
	var uri URIMonth
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpError{
			Error: err.Error(),
		})
		return
	}

	month, err := uri.month()
	if err != nil {
		c.JSON(http.StatusBadRequest, httpError{
			Error: err.Error(),
		})
		return
	}

	record, err = models.FindExecutionRecord(co.DB, month)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	return record, true
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Execution Records
// @Success		204
// @Failure		400		{object}	httpError
// @Failure		404		{object}	httpError
// @Failure		500		{object}	httpError
// @Param			month	path		string	true	"The month in YYYY-MM format"
// @Router			/v1/execution-records/{month} [options]
func (co Controller) OptionsExecutionRecord(c *gin.Context) {
	_, ok := co.executionRecord(c)
	if !ok {
		return
	}

	httputil.OptionsGet(c)
}

// @Summary		Get execution record
// @Description	Returns the execution record of a month with all monthly plans that received contributions in it
// @Tags			Execution Records
// @Produce		json
// @Success		200		{object}	ExecutionRecordResponse
// @Failure		400		{object}	httpError
// @Failure		404		{object}	httpError
// @Failure		500		{object}	ExecutionRecordResponse
// @Param			month	path		string	true	"The month in YYYY-MM format"
// @Router			/v1/execution-records/{month} [get]
func (co Controller) GetExecutionRecord(c *gin.Context) {
	record, ok := co.executionRecord(c)
	if !ok {
		return
	}

	plans, err := record.TrackedPlans(co.DB)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ExecutionRecordResponse{
			Error: &s,
		})
		return
	}

	// Amounts are formatted in the currency of the goal of each plan
	goalIDs := make([]uuid.UUID, 0, len(plans))
	for _, p := range plans {
		goalIDs = append(goalIDs, p.GoalID)
	}

	var goals []models.Goal
	err = co.DB.Where("id IN ?", goalIDs).Find(&goals).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ExecutionRecordResponse{
			Error: &s,
		})
		return
	}

	currencies := make(map[uuid.UUID]string, len(goals))
	for _, g := range goals {
		currencies[g.ID] = g.Currency
	}

	data := ExecutionRecord{
		DefaultModel: record.DefaultModel,
		Month:        record.Month,
		Plans:        make([]MonthlyPlan, 0, len(plans)),
	}
	for _, p := range plans {
		data.Plans = append(data.Plans, newMonthlyPlan(p, currencies[p.GoalID]))
	}

	c.JSON(http.StatusOK, ExecutionRecordResponse{Data: &data})
}
