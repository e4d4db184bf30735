package v1

import (
	"github.com/stashbox/backend/internal/types"
	"github.com/stashbox/backend/internal/uuid"
)

type URIID struct {
	ID uuid.UUID `uri:"id" binding:"required"` // The ID of the resource
}

type URIMonth struct {
	Month string `uri:"month" binding:"required" example:"2024-03"` // Year and month
}

// month parses the month label of the URI.
func (u URIMonth) month() (types.Month, error) {
	m, err := types.ParseMonth(u.Month)
	if err != nil {
		return types.Month{}, errMonthInvalid
	}

	return m, nil
}

type QueryMonth struct {
	Month string `form:"month" example:"2024-03"` // Year and month
}

type Pagination struct {
	Count  int   `json:"count" example:"25"`  // The amount of records returned in this response
	Offset uint  `json:"offset" example:"50"` // The offset for the first record returned
	Limit  int   `json:"limit" example:"25"`  // The maximum amount of resources to return for this request
	Total  int64 `json:"total" example:"827"` // The total number of resources matching the query
}

type httpError struct {
	Error string `json:"error" example:"the specified resource ID is not a valid UUID"`
}
