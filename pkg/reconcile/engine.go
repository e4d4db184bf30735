// Package reconcile turns deposits into contributions to goals.
//
// A deposit on an asset is split across the goals the asset is allocated
// to. Each part is converted into the currency of its goal and recorded
// as a contribution to the goal's plan for the month of the deposit.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/stashbox/backend/internal/types"
	"github.com/stashbox/backend/pkg/events"
	"github.com/stashbox/backend/pkg/models"
	"github.com/stashbox/backend/pkg/planning"
	"github.com/stashbox/backend/pkg/rates"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// amountPlaces is the precision of all computed amounts.
const amountPlaces = 8

// rateFetchLimit is the maximum number of concurrent rate requests for one
// fan-out.
const rateFetchLimit = 4

// ErrPersistence is returned when the results of a fan-out could not be
// stored. Nothing of the operation has been committed in that case.
var ErrPersistence = errors.New("the reconciliation could not be persisted")

// Engine splits deposits into contributions.
type Engine struct {
	DB      *gorm.DB
	Rates   rates.Gateway
	Planner planning.Planner
	Bus     events.Publisher
}

// DepositRequest describes a deposit into an asset.
type DepositRequest struct {
	AssetID uuid.UUID       `json:"assetId"`
	Amount  decimal.Decimal `json:"amount"`
	Date    time.Time       `json:"date"` // Defaults to the current time
	Note    string          `json:"note"`
}

// Skip is an allocation that did not receive a contribution.
type Skip struct {
	GoalID uuid.UUID `json:"goalId"`
	Reason string    `json:"reason"` // One of the Outcome constants
}

// Result is the outcome of a deposit or reconciliation.
type Result struct {
	Transaction        models.Transaction    `json:"transaction"`
	Contributions      []models.Contribution `json:"contributions"`
	Skipped            []Skip                `json:"skipped"`
	AdjustedAllocation *models.Allocation    `json:"adjustedAllocation"` // Set if the deposit changed the target of the allocation
}

// GoalIDs returns the IDs of all goals that received a contribution.
func (r Result) GoalIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(r.Contributions))
	for _, c := range r.Contributions {
		ids = append(ids, c.GoalID)
	}
	return ids
}

// portion is the part of a deposit for one allocation.
type portion struct {
	allocation  models.Allocation
	assetAmount decimal.Decimal
	rate        decimal.Decimal
	err         error
}

// Deposit records a deposit and splits it into contributions according to
// the active allocations of the asset.
//
// The transaction, the contributions, the plan totals and the allocation
// target adjustment are stored in one database transaction. Allocations
// whose exchange rate is unavailable are skipped, all others receive their
// contribution. Events are published only after the commit.
func (e *Engine) Deposit(ctx context.Context, req DepositRequest) (Result, error) {
	if !req.Amount.IsPositive() {
		return Result{}, models.ErrTransactionAmount
	}

	db := e.DB.WithContext(ctx)

	var asset models.Asset
	err := db.First(&asset, "id = ?", req.AssetID).Error
	if err != nil {
		return Result{}, e.failed(err)
	}

	active, err := models.ActiveAllocations(db, asset.ID)
	if err != nil {
		return Result{}, e.failed(err)
	}

	portions, goals, skipped := e.prepare(ctx, asset, active, req.Amount)

	result := Result{
		Transaction: models.Transaction{
			AssetID: asset.ID,
			Amount:  req.Amount,
			Date:    req.Date,
			Note:    req.Note,
		},
		Skipped: skipped,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		// The adjuster works on the state before the deposit, including
		// all deposits committed concurrently
		before, err := asset.Allocations(tx)
		if err != nil {
			return err
		}

		preBalance, err := asset.Balance(tx)
		if err != nil {
			return err
		}

		err = tx.Omit(clause.Associations).Create(&result.Transaction).Error
		if err != nil {
			return err
		}

		result.Contributions, err = e.apply(tx, asset, result.Transaction, goals, portions)
		if err != nil {
			return err
		}

		result.AdjustedAllocation, err = adjust(tx, before, preBalance, result.Transaction)
		return err
	})
	if err != nil {
		return Result{}, e.failed(err)
	}

	e.succeeded(result)

	e.publish(ctx, events.Event{
		Topic:         events.TopicAssetUpdated,
		AssetID:       asset.ID,
		GoalIDs:       result.GoalIDs(),
		TransactionID: result.Transaction.ID,
	})
	e.publishGoals(ctx, asset.ID, result)

	return result, nil
}

// Reconcile runs the fan-out for a recorded transaction again and creates
// the contributions that are missing, e.g. because an exchange rate was
// unavailable when the deposit was made. Goals that already have a
// contribution from the transaction are left alone.
//
// The current allocation set of the asset is used. The allocation target
// is not adjusted again.
func (e *Engine) Reconcile(ctx context.Context, transactionID uuid.UUID) (Result, error) {
	db := e.DB.WithContext(ctx)

	var transaction models.Transaction
	err := db.First(&transaction, "id = ?", transactionID).Error
	if err != nil {
		return Result{}, e.failed(err)
	}

	var asset models.Asset
	err = db.First(&asset, "id = ?", transaction.AssetID).Error
	if err != nil {
		return Result{}, e.failed(err)
	}

	active, err := models.ActiveAllocations(db, asset.ID)
	if err != nil {
		return Result{}, e.failed(err)
	}

	var reconciled []uuid.UUID
	err = db.
		Model(&models.Contribution{}).
		Where("transaction_id = ?", transaction.ID).
		Pluck("goal_id", &reconciled).Error
	if err != nil {
		return Result{}, e.failed(err)
	}

	done := make(map[uuid.UUID]bool, len(reconciled))
	for _, id := range reconciled {
		done[id] = true
	}

	missing := make([]models.Allocation, 0, len(active))
	for _, a := range active {
		if !done[a.GoalID] {
			missing = append(missing, a)
		}
	}

	portions, goals, skipped := e.prepare(ctx, asset, missing, transaction.Amount)
	result := Result{
		Transaction: transaction,
		Skipped:     skipped,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		result.Contributions, err = e.apply(tx, asset, transaction, goals, portions)
		return err
	})
	if err != nil {
		return Result{}, e.failed(err)
	}

	e.succeeded(result)

	if len(result.Contributions) > 0 {
		e.publish(ctx, events.Event{
			Topic:         events.TopicAssetUpdated,
			AssetID:       asset.ID,
			GoalIDs:       result.GoalIDs(),
			TransactionID: transaction.ID,
		})
		e.publishGoals(ctx, asset.ID, result)
	}

	return result, nil
}

// prepare computes the portion of the amount for every allocation and
// fetches the exchange rates for all allocations to goals in a different
// currency. Rates are fetched concurrently and before any database
// transaction is opened.
//
// It returns the portions that can be contributed, the live goals of all
// allocations and the allocations that were skipped.
func (e *Engine) prepare(ctx context.Context, asset models.Asset, allocations []models.Allocation, amount decimal.Decimal) ([]portion, []models.Goal, []Skip) {
	var (
		portions []portion
		goals    []models.Goal
		skipped  []Skip
	)

	for _, a := range allocations {
		if !a.Goal.Live() {
			skipped = append(skipped, Skip{GoalID: a.GoalID, Reason: OutcomeGoalArchived})
			continue
		}
		goals = append(goals, a.Goal)

		assetAmount := amount.Mul(a.Percentage).Round(amountPlaces)
		if !assetAmount.IsPositive() {
			skipped = append(skipped, Skip{GoalID: a.GoalID, Reason: OutcomeNotPositive})
			continue
		}

		portions = append(portions, portion{
			allocation:  a,
			assetAmount: assetAmount,
			rate:        decimal.NewFromInt(1),
		})
	}

	var g errgroup.Group
	g.SetLimit(rateFetchLimit)
	for i := range portions {
		p := &portions[i]
		if p.allocation.Goal.Currency == asset.Currency {
			continue
		}

		g.Go(func() error {
			p.rate, p.err = e.rate(ctx, asset.Currency, p.allocation.Goal.Currency)
			return nil
		})
	}
	_ = g.Wait()

	ready := make([]portion, 0, len(portions))
	for _, p := range portions {
		if p.err != nil {
			log.Warn().Str("asset", asset.ID.String()).Str("goal", p.allocation.GoalID.String()).Err(p.err).Msg("skipping allocation")
			skipped = append(skipped, Skip{GoalID: p.allocation.GoalID, Reason: OutcomeRateUnavailable})
			continue
		}

		if !p.assetAmount.Mul(p.rate).Round(amountPlaces).IsPositive() {
			skipped = append(skipped, Skip{GoalID: p.allocation.GoalID, Reason: OutcomeNotPositive})
			continue
		}

		ready = append(ready, p)
	}

	return ready, goals, skipped
}

func (e *Engine) rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	if e.Rates == nil {
		return decimal.Zero, fmt.Errorf("%w: no exchange rate gateway configured", rates.ErrRateUnavailable)
	}

	rate, err := e.Rates.Rate(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}

	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: invalid rate %s for %s:%s", rates.ErrRateUnavailable, rate, from, to)
	}

	return rate, nil
}

// apply resolves the monthly plans of all goals and the execution record
// for the month of the transaction and stores the contributions.
func (e *Engine) apply(tx *gorm.DB, asset models.Asset, transaction models.Transaction, goals []models.Goal, portions []portion) ([]models.Contribution, error) {
	if len(goals) == 0 {
		return nil, nil
	}

	month := types.MonthOf(transaction.Date)

	plans, err := planning.PlansForMonth(tx, e.planner(), goals, month)
	if err != nil {
		return nil, err
	}

	record, err := models.GetOrCreateExecutionRecord(tx, month)
	if err != nil {
		return nil, err
	}

	err = record.Track(tx, plans...)
	if err != nil {
		return nil, err
	}

	byGoal := make(map[uuid.UUID]*models.MonthlyPlan, len(plans))
	for i := range plans {
		byGoal[plans[i].GoalID] = &plans[i]
	}

	contributions := make([]models.Contribution, 0, len(portions))
	for _, p := range portions {
		plan, ok := byGoal[p.allocation.GoalID]
		if !ok {
			return nil, fmt.Errorf("no monthly plan resolved for goal %s", p.allocation.GoalID)
		}

		contribution := models.Contribution{
			MonthlyPlanID:     plan.ID,
			ExecutionRecordID: record.ID,
			TransactionID:     &transaction.ID,
			GoalID:            p.allocation.GoalID,
			AssetID:           asset.ID,
			Amount:            p.assetAmount.Mul(p.rate).Round(amountPlaces),
			AssetAmount:       p.assetAmount,
			ExchangeRate:      p.rate,
			Currency:          p.allocation.Goal.Currency,
			AssetCurrency:     asset.Currency,
			Source:            models.ContributionSourceManualDeposit,
			Date:              transaction.Date,
		}

		err = tx.Omit(clause.Associations).Create(&contribution).Error
		if err != nil {
			return nil, err
		}

		err = plan.AddContribution(tx, contribution.Amount)
		if err != nil {
			return nil, err
		}

		contributions = append(contributions, contribution)
	}

	return contributions, nil
}

func (e *Engine) planner() planning.Planner {
	if e.Planner == nil {
		return planning.DeadlinePlanner{}
	}
	return e.Planner
}

// failed counts a failed run and classifies the error. Missing resources
// are returned as they are, everything else is a persistence failure.
func (e *Engine) failed(err error) error {
	runsTotal.WithLabelValues("failed").Inc()

	if errors.Is(err, models.ErrResourceNotFound) {
		return err
	}

	log.Error().Msgf("%T: %v", err, err.Error())
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}

func (e *Engine) succeeded(result Result) {
	runsTotal.WithLabelValues("success").Inc()
	contributionsTotal.WithLabelValues(OutcomeCreated).Add(float64(len(result.Contributions)))
	for _, s := range result.Skipped {
		contributionsTotal.WithLabelValues(s.Reason).Inc()
	}

	log.Info().
		Str("transaction", result.Transaction.ID.String()).
		Int("contributions", len(result.Contributions)).
		Int("skipped", len(result.Skipped)).
		Bool("adjusted", result.AdjustedAllocation != nil).
		Msg("reconciled")
}

func (e *Engine) publish(ctx context.Context, event events.Event) {
	if e.Bus == nil {
		return
	}
	e.Bus.Publish(ctx, event)
}

func (e *Engine) publishGoals(ctx context.Context, assetID uuid.UUID, result Result) {
	for _, goalID := range result.GoalIDs() {
		e.publish(ctx, events.Event{
			Topic:         events.TopicGoalUpdated,
			AssetID:       assetID,
			GoalID:        goalID,
			TransactionID: result.Transaction.ID,
		})
	}
}
