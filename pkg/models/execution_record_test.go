package models_test

import (
	"sync"

	"github.com/stashbox/backend/internal/types"
	"github.com/stashbox/backend/pkg/models"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestGetOrCreateExecutionRecord() {
	month := types.NewMonth(2024, 3)

	_, err := models.FindExecutionRecord(models.DB, month)
	assert.ErrorIs(suite.T(), err, models.ErrResourceNotFound)

	first, err := models.GetOrCreateExecutionRecord(models.DB, month)
	suite.Require().Nil(err)

	second, err := models.GetOrCreateExecutionRecord(models.DB, month)
	suite.Require().Nil(err)
	assert.Equal(suite.T(), first.ID, second.ID)

	found, err := models.FindExecutionRecord(models.DB, month)
	suite.Require().Nil(err)
	assert.Equal(suite.T(), first.ID, found.ID)

	next, err := models.GetOrCreateExecutionRecord(models.DB, month.AddDate(0, 1))
	suite.Require().Nil(err)
	assert.NotEqual(suite.T(), first.ID, next.ID)
}

func (suite *TestSuiteStandard) TestGetOrCreateExecutionRecordConcurrent() {
	month := types.NewMonth(2024, 3)

	const workers = 8
	records := make([]models.ExecutionRecord, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			records[i], errs[i] = models.GetOrCreateExecutionRecord(models.DB, month)
		}()
	}
	wg.Wait()

	for i := range workers {
		suite.Require().Nil(errs[i])
		assert.Equal(suite.T(), records[0].ID, records[i].ID)
	}
}

func (suite *TestSuiteStandard) TestExecutionRecordTrack() {
	month := types.NewMonth(2024, 3)
	house := suite.createTestPlan(suite.createTestGoal(models.Goal{Name: "House"}), month)
	car := suite.createTestPlan(suite.createTestGoal(models.Goal{Name: "Car"}), month)

	record, err := models.GetOrCreateExecutionRecord(models.DB, month)
	suite.Require().Nil(err)

	suite.Require().Nil(record.Track(models.DB))
	suite.Require().Nil(record.Track(models.DB, house))
	suite.Require().Nil(record.Track(models.DB, house, car))

	plans, err := record.TrackedPlans(models.DB)
	suite.Require().Nil(err)
	suite.Require().Len(plans, 2, "plans are only tracked once")
	assert.Equal(suite.T(), house.ID, plans[0].ID)
	assert.Equal(suite.T(), car.ID, plans[1].ID)
}

func (suite *TestSuiteStandard) TestExecutionRecordWithoutContributions() {
	month := types.NewMonth(2024, 3)

	record, err := models.GetOrCreateExecutionRecord(models.DB, month)
	suite.Require().Nil(err)

	plans, err := record.TrackedPlans(models.DB)
	suite.Require().Nil(err)
	assert.Len(suite.T(), plans, 0)
}
