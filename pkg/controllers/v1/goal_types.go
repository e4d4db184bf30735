package v1

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stashbox/backend/internal/types"
	"github.com/stashbox/backend/pkg/models"
	"gorm.io/gorm"
)

type GoalEditable struct {
	Name         string          `json:"name" example:"New TV" default:""`                                                                          // Name of the goal
	Note         string          `json:"note" example:"We want an OLED one" default:""`                                                             // A longer description of the goal
	Currency     string          `json:"currency" example:"USD"`                                                                                    // Currency the target and all contributions are kept in
	TargetAmount decimal.Decimal `json:"targetAmount" example:"1200" minimum:"0.00000001" maximum:"999999999999.99999999" multipleOf:"0.00000001"` // The amount to save
	Deadline     types.Month     `json:"deadline" example:"2024-12"`                                                                                // Month the target should be reached in
	Archived     bool            `json:"archived" example:"true" default:"false"`                                                                   // Archived goals do not receive contributions
}

// model returns the database resource for the editable fields
func (editable GoalEditable) model() models.Goal {
	return models.Goal{
		Name:         editable.Name,
		Note:         editable.Note,
		Currency:     editable.Currency,
		TargetAmount: editable.TargetAmount,
		Deadline:     editable.Deadline,
		Archived:     editable.Archived,
	}
}

// apply sets the fields of the goal that are listed in fields to the
// editable's values.
func (editable GoalEditable) apply(goal *models.Goal, fields []string) {
	for _, field := range fields {
		switch field {
		case "Name":
			goal.Name = editable.Name
		case "Note":
			goal.Note = editable.Note
		case "Currency":
			goal.Currency = editable.Currency
		case "TargetAmount":
			goal.TargetAmount = editable.TargetAmount
		case "Deadline":
			goal.Deadline = editable.Deadline
		case "Archived":
			goal.Archived = editable.Archived
		}
	}
}

type GoalLinks struct {
	Self  string `json:"self" example:"https://example.com/api/v1/goals/438cc6c0-9baf-48fd-94bd-7d00b4c4c14d"`        // URL of the goal
	Plans string `json:"plans" example:"https://example.com/api/v1/goals/438cc6c0-9baf-48fd-94bd-7d00b4c4c14d/plans"` // Monthly plans of the goal
}

// Goal is the API v1 representation of a Goal.
type Goal struct {
	models.DefaultModel
	GoalEditable
	Contributed          decimal.Decimal `json:"contributed" example:"350"`              // Sum of all contributions
	ContributedFormatted string          `json:"contributedFormatted" example:"$350.00"` // The sum of all contributions, formatted for display
	Links                GoalLinks       `json:"links"`
}

func newGoal(c *gin.Context, db *gorm.DB, model models.Goal) (Goal, error) {
	url := c.GetString(string(models.DBContextURL))

	contributed, err := model.Contributed(db, types.Month{})
	if err != nil {
		return Goal{}, err
	}

	return Goal{
		DefaultModel: model.DefaultModel,
		GoalEditable: GoalEditable{
			Name:         model.Name,
			Note:         model.Note,
			Currency:     model.Currency,
			TargetAmount: model.TargetAmount,
			Deadline:     model.Deadline,
			Archived:     model.Archived,
		},
		Contributed:          contributed,
		ContributedFormatted: display(contributed, model.Currency),
		Links: GoalLinks{
			Self:  fmt.Sprintf("%s/v1/goals/%s", url, model.ID),
			Plans: fmt.Sprintf("%s/v1/goals/%s/plans", url, model.ID),
		},
	}, nil
}

type GoalListResponse struct {
	Data       []Goal      `json:"data"`                                                          // List of goals
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type GoalCreateResponse struct {
	Error *string        `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  []GoalResponse `json:"data"`                                                          // List of created Goals
}

func (g *GoalCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	g.Data = append(g.Data, GoalResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type GoalResponse struct {
	Data  *Goal   `json:"data"`                                                          // Data for the goal
	Error *string `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred for this goal
}

type GoalQueryFilter struct {
	Name     string `form:"name" filterField:"false"`   // By name
	Note     string `form:"note" filterField:"false"`   // By the note
	Currency string `form:"currency"`                   // By currency
	Archived bool   `form:"archived"`                   // Is the goal archived?
	Search   string `form:"search" filterField:"false"` // By string in name or note
	Offset   uint   `form:"offset" filterField:"false"` // The offset of the first goal returned. Defaults to 0.
	Limit    int    `form:"limit" filterField:"false"`  // Maximum number of goals to return. Defaults to 50.
}

func (f GoalQueryFilter) model() models.Goal {
	return models.Goal{
		Currency: models.NormalizeCurrency(f.Currency),
		Archived: f.Archived,
	}
}

// MonthlyPlan is the API v1 representation of the plan of a goal for
// one month.
type MonthlyPlan struct {
	models.DefaultModel
	GoalID                    uuid.UUID       `json:"goalId" example:"e2d15f63-1e16-4c5c-9d17-83b1d3ab5d88"` // ID of the goal
	Month                     types.Month     `json:"month" example:"2024-03"`                               // The month of the plan
	Target                    decimal.Decimal `json:"target" example:"200"`                                  // Amount planned to be saved in the month
	TargetFormatted           string          `json:"targetFormatted" example:"$200.00"`                     // The target, formatted for display
	TotalContributed          decimal.Decimal `json:"totalContributed" example:"150"`                        // Sum of all contributions in the month
	TotalContributedFormatted string          `json:"totalContributedFormatted" example:"$150.00"`           // The contributed sum, formatted for display
	Remaining                 decimal.Decimal `json:"remaining" example:"50"`                                // What is left to reach the target of the month
	RemainingFormatted        string          `json:"remainingFormatted" example:"$50.00"`                   // The remaining amount, formatted for display
}

func newMonthlyPlan(model models.MonthlyPlan, currency string) MonthlyPlan {
	return MonthlyPlan{
		DefaultModel:              model.DefaultModel,
		GoalID:                    model.GoalID,
		Month:                     model.Month,
		Target:                    model.Target,
		TargetFormatted:           display(model.Target, currency),
		TotalContributed:          model.TotalContributed,
		TotalContributedFormatted: display(model.TotalContributed, currency),
		Remaining:                 model.Remaining(),
		RemainingFormatted:        display(model.Remaining(), currency),
	}
}

type MonthlyPlanListResponse struct {
	Data  []MonthlyPlan `json:"data"`                                                          // List of monthly plans
	Error *string       `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

func newMonthlyPlans(plans []models.MonthlyPlan, currency string) []MonthlyPlan {
	// When there are no resources, we want an empty list, not null
	data := make([]MonthlyPlan, 0, len(plans))
	for _, p := range plans {
		data = append(data, newMonthlyPlan(p, currency))
	}

	return data
}
