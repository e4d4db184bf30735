package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stashbox/backend/pkg/httputil"
	"github.com/stashbox/backend/pkg/models"
	"github.com/stashbox/backend/pkg/reconcile"
	"golang.org/x/exp/slices"
)

// registerDepositRoutes registers the routes for the transactions of an
// asset with the RouterGroup that is passed.
func (co Controller) registerDepositRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", co.OptionsDeposits)
	r.GET("", co.GetDeposits)
	r.POST("", co.CreateDeposit)
}

// RegisterTransactionRoutes registers the routes for transactions with
// the RouterGroup that is passed.
func (co Controller) RegisterTransactionRoutes(r *gin.RouterGroup) {
	r.OPTIONS("/:id", co.OptionsTransactionDetail)
	r.GET("/:id", co.GetTransaction)
	r.OPTIONS("/:id/reconcile", co.OptionsTransactionReconcile)
	r.POST("/:id/reconcile", co.ReconcileTransaction)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/assets/{id}/transactions [options]
func (co Controller) OptionsDeposits(c *gin.Context) {
	_, ok := co.asset(c)
	if !ok {
		return
	}

	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/transactions/{id} [options]
func (co Controller) OptionsTransactionDetail(c *gin.Context) {
	_, ok := co.transaction(c)
	if !ok {
		return
	}

	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/transactions/{id}/reconcile [options]
func (co Controller) OptionsTransactionReconcile(c *gin.Context) {
	_, ok := co.transaction(c)
	if !ok {
		return
	}

	httputil.OptionsPost(c)
}

// transaction loads the transaction with the ID from the URI. If that
// fails, an error response is sent and ok is false.
func (co Controller) transaction(c *gin.Context) (transaction models.Transaction, ok bool) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = co.DB.First(&transaction, "id = ?", uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	return transaction, true
}

// @Summary		Deposit
// @Description	Records a deposit into the asset and splits it into contributions to the goals the asset is allocated to
// @Tags			Transactions
// @Produce		json
// @Success		201			{object}	DepositResponse
// @Failure		400			{object}	DepositResponse
// @Failure		404			{object}	DepositResponse
// @Failure		500			{object}	DepositResponse
// @Param			id			path		URIID				true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			transaction	body		TransactionEditable	true	"Deposit"
// @Router			/v1/assets/{id}/transactions [post]
func (co Controller) CreateDeposit(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), DepositResponse{
			Error: &s,
		})
		return
	}

	var editable TransactionEditable
	err = httputil.BindData(c, &editable)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), DepositResponse{
			Error: &s,
		})
		return
	}

	result, err := co.Engine.Deposit(c.Request.Context(), reconcile.DepositRequest{
		AssetID: uri.ID.UUID,
		Amount:  editable.Amount,
		Date:    editable.Date,
		Note:    editable.Note,
	})
	if err != nil {
		s := err.Error()
		c.JSON(status(err), DepositResponse{
			Error: &s,
		})
		return
	}

	data := newDeposit(c, result)
	c.JSON(http.StatusCreated, DepositResponse{Data: &data})
}

// @Summary		List deposits
// @Description	Returns the deposits into the asset, newest first
// @Tags			Transactions
// @Produce		json
// @Success		200		{object}	TransactionListResponse
// @Failure		400		{object}	TransactionListResponse
// @Failure		404		{object}	httpError
// @Failure		500		{object}	TransactionListResponse
// @Param			id		path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			offset	query		uint	false	"The offset of the first Transaction returned. Defaults to 0."
// @Param			limit	query		int		false	"Maximum number of Transactions to return. Defaults to 50."
// @Router			/v1/assets/{id}/transactions [get]
func (co Controller) GetDeposits(c *gin.Context) {
	asset, ok := co.asset(c)
	if !ok {
		return
	}

	var filter TransactionQueryFilter
	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, TransactionListResponse{
			Error: &s,
		})
		return
	}

	_, setFields := httputil.GetURLFields(c.Request.URL, filter)

	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}

	q := co.DB.
		Where(&models.Transaction{AssetID: asset.ID}).
		Order("date DESC")

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))
	q = q.Limit(limit)

	var transactions []models.Transaction
	err := q.Find(&transactions).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TransactionListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TransactionListResponse{
			Error: &s,
		})
		return
	}

	data := make([]Transaction, 0, len(transactions))
	for _, t := range transactions {
		data = append(data, newTransaction(c, t))
	}

	c.JSON(http.StatusOK, TransactionListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get transaction
// @Description	Returns a specific transaction with all its contributions
// @Tags			Transactions
// @Produce		json
// @Success		200	{object}	TransactionResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	TransactionResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/transactions/{id} [get]
func (co Controller) GetTransaction(c *gin.Context) {
	transaction, ok := co.transaction(c)
	if !ok {
		return
	}

	var contributions []models.Contribution
	err := co.DB.
		Where("transaction_id = ?", transaction.ID).
		Order("created_at ASC").
		Find(&contributions).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TransactionResponse{
			Error: &s,
		})
		return
	}

	c.JSON(http.StatusOK, TransactionResponse{Data: &TransactionDetail{
		Transaction:   newTransaction(c, transaction),
		Contributions: newContributions(contributions),
	}})
}

// @Summary		Reconcile transaction
// @Description	Creates the contributions that are missing for the transaction, e.g. because an exchange rate was unavailable during the deposit
// @Tags			Transactions
// @Produce		json
// @Success		200	{object}	DepositResponse
// @Failure		400	{object}	DepositResponse
// @Failure		404	{object}	DepositResponse
// @Failure		500	{object}	DepositResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/transactions/{id}/reconcile [post]
func (co Controller) ReconcileTransaction(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), DepositResponse{
			Error: &s,
		})
		return
	}

	result, err := co.Engine.Reconcile(c.Request.Context(), uri.ID.UUID)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), DepositResponse{
			Error: &s,
		})
		return
	}

	data := newDeposit(c, result)
	c.JSON(http.StatusOK, DepositResponse{Data: &data})
}
