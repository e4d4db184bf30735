package models

import (
	"errors"

	"github.com/google/uuid"
	"github.com/stashbox/backend/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ExecutionRecord tracks which monthly plans received contributions in a
// month. There is exactly one record per month, shared by all goals.
type ExecutionRecord struct {
	DefaultModel
	Month types.Month           `gorm:"uniqueIndex"`
	Plans []ExecutionRecordPlan `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// ExecutionRecordPlan links a monthly plan to the execution record of its
// month.
type ExecutionRecordPlan struct {
	Timestamps
	ExecutionRecordID uuid.UUID   `gorm:"primaryKey"`
	MonthlyPlanID     uuid.UUID   `gorm:"primaryKey"`
	MonthlyPlan       MonthlyPlan `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

func findExecutionRecord(db *gorm.DB, month types.Month) (ExecutionRecord, error) {
	var record ExecutionRecord
	err := db.Where(&ExecutionRecord{Month: month}).First(&record).Error
	return record, err
}

// FindExecutionRecord returns the execution record of a month.
func FindExecutionRecord(db *gorm.DB, month types.Month) (ExecutionRecord, error) {
	return findExecutionRecord(db, month)
}

// GetOrCreateExecutionRecord returns the execution record for the month,
// creating it if it does not exist yet. It follows the same insert-or-ignore
// discipline as GetOrCreateMonthlyPlan.
func GetOrCreateExecutionRecord(db *gorm.DB, month types.Month) (ExecutionRecord, error) {
	record, err := findExecutionRecord(db, month)
	if err == nil {
		return record, nil
	}

	if !errors.Is(err, ErrResourceNotFound) {
		return ExecutionRecord{}, err
	}

	record = ExecutionRecord{Month: month}
	err = db.
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "month"}},
			DoNothing: true,
		}).
		Create(&record).Error
	if err != nil {
		return ExecutionRecord{}, err
	}

	return findExecutionRecord(db, month)
}

// Track adds the plans to the record. Plans that are already tracked are
// ignored.
func (r ExecutionRecord) Track(db *gorm.DB, plans ...MonthlyPlan) error {
	if len(plans) == 0 {
		return nil
	}

	links := make([]ExecutionRecordPlan, 0, len(plans))
	for _, plan := range plans {
		links = append(links, ExecutionRecordPlan{
			ExecutionRecordID: r.ID,
			MonthlyPlanID:     plan.ID,
		})
	}

	return db.
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&links).Error
}

// TrackedPlans returns all plans tracked by the record.
func (r ExecutionRecord) TrackedPlans(db *gorm.DB) ([]MonthlyPlan, error) {
	var plans []MonthlyPlan
	err := db.
		Joins("JOIN execution_record_plans ON execution_record_plans.monthly_plan_id = monthly_plans.id").
		Where("execution_record_plans.execution_record_id = ?", r.ID).
		Order("monthly_plans.created_at ASC").
		Find(&plans).Error

	return plans, err
}
