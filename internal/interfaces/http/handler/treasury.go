package handler

import (
	"context"
	"errors"
	"io"
	"time"

	treasuryapp "github.com/bms/backend/internal/application/treasury"
	"github.com/bms/backend/internal/domain/treasury"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FundHandler handles fund ledger API endpoints
type FundHandler struct {
	BaseHandler
	service *treasuryapp.FundService
}

// NewFundHandler creates a new FundHandler
func NewFundHandler(service *treasuryapp.FundService) *FundHandler {
	return &FundHandler{service: service}
}

// FundResponse represents a building fund in API responses
type FundResponse struct {
	ID         string    `json:"id"`
	BuildingID string    `json:"building_id"`
	Balance    int64     `json:"balance"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// FundTransactionResponse represents one ledger entry in API responses
type FundTransactionResponse struct {
	ID          string    `json:"id"`
	BuildingID  string    `json:"building_id"`
	Type        string    `json:"type"`
	Direction   string    `json:"direction"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description"`
	PaymentID   *string   `json:"payment_id,omitempty"`
	ExpenseID   *string   `json:"expense_id,omitempty"`
	PostedBy    *string   `json:"posted_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// FundStatsResponse represents the fund aggregates
type FundStatsResponse struct {
	Balance          int64 `json:"balance"`
	TotalIncome      int64 `json:"total_income"`
	TotalExpense     int64 `json:"total_expense"`
	TotalAdjustment  int64 `json:"total_adjustment"`
	TransactionCount int64 `json:"transaction_count"`
}

// PostAdjustmentRequest represents a manual fund correction
type PostAdjustmentRequest struct {
	Direction   string `json:"direction" binding:"required,oneof=CREDIT DEBIT"`
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Description string `json:"description" binding:"required,max=500"`
}

// TransactionListFilter represents query parameters for the ledger list
type TransactionListFilter struct {
	Type     string `form:"type" binding:"omitempty,oneof=INCOME EXPENSE ADJUSTMENT"`
	From     string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To       string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Page     int    `form:"page,omitempty" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size,omitempty" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func toFundResponse(fund *treasury.BuildingFund) FundResponse {
	return FundResponse{
		ID:         fund.ID.String(),
		BuildingID: fund.BuildingID.String(),
		Balance:    fund.Balance.Amount(),
		CreatedAt:  fund.CreatedAt,
		UpdatedAt:  fund.UpdatedAt,
	}
}

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func toFundTransactionResponse(tx *treasury.FundTransaction) FundTransactionResponse {
	return FundTransactionResponse{
		ID:          tx.ID.String(),
		BuildingID:  tx.BuildingID.String(),
		Type:        tx.Type.String(),
		Direction:   tx.Direction.String(),
		Amount:      tx.Amount.Amount(),
		Description: tx.Description,
		PaymentID:   uuidString(tx.PaymentID),
		ExpenseID:   uuidString(tx.ExpenseID),
		PostedBy:    uuidString(tx.PostedBy),
		CreatedAt:   tx.CreatedAt,
	}
}

// GetFund returns the building's fund, creating an empty one on first access
func (h *FundHandler) GetFund(c *gin.Context) {
	buildingID, err := getBuildingID(c)
	if err != nil {
		h.BadRequest(c, "Invalid building ID")
		return
	}

	fund, err := h.service.GetFund(c.Request.Context(), buildingID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toFundResponse(fund))
}

// GetStats returns the fund balance and ledger aggregates
func (h *FundHandler) GetStats(c *gin.Context) {
	buildingID, err := getBuildingID(c)
	if err != nil {
		h.BadRequest(c, "Invalid building ID")
		return
	}

	stats, err := h.service.GetStats(c.Request.Context(), buildingID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, FundStatsResponse{
		Balance:          stats.Balance.Amount(),
		TotalIncome:      stats.TotalIncome.Amount(),
		TotalExpense:     stats.TotalExpense.Amount(),
		TotalAdjustment:  stats.TotalAdjustment.Amount(),
		TransactionCount: stats.TransactionCount,
	})
}

// ListTransactions lists the building's ledger entries
func (h *FundHandler) ListTransactions(c *gin.Context) {
	buildingID, err := getBuildingID(c)
	if err != nil {
		h.BadRequest(c, "Invalid building ID")
		return
	}

	var filter TransactionListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	domainFilter := treasury.TransactionFilter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
	}
	if filter.Type != "" {
		txType := treasury.TransactionType(filter.Type)
		domainFilter.Type = &txType
	}
	if filter.From != "" {
		from, _ := time.Parse("2006-01-02", filter.From)
		domainFilter.FromDate = &from
	}
	if filter.To != "" {
		to, _ := time.Parse("2006-01-02", filter.To)
		domainFilter.ToDate = &to
	}

	page, err := h.service.ListTransactions(c.Request.Context(), buildingID, domainFilter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	response := make([]FundTransactionResponse, len(page.Items))
	for i, tx := range page.Items {
		response[i] = toFundTransactionResponse(tx)
	}
	h.SuccessWithMeta(c, response, page.Total, page.Page, page.PageSize)
}

// PostAdjustment appends a manual correction to the ledger
func (h *FundHandler) PostAdjustment(c *gin.Context) {
	buildingID, err := getBuildingID(c)
	if err != nil {
		h.BadRequest(c, "Invalid building ID")
		return
	}
	actor, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req PostAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	tx, err := h.service.PostAdjustment(c.Request.Context(), treasuryapp.PostAdjustmentRequest{
		BuildingID:  buildingID,
		Direction:   treasury.TransactionDirection(req.Direction),
		Amount:      req.Amount,
		Description: req.Description,
		PostedBy:    actor,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toFundTransactionResponse(tx))
}

// RegisterRoutes registers fund routes on a building-scoped group. The
// adjust middleware gates the adjustment endpoint.
func (h *FundHandler) RegisterRoutes(rg *gin.RouterGroup, adjust ...gin.HandlerFunc) {
	fund := rg.Group("/fund")
	{
		fund.GET("", h.GetFund)
		fund.GET("/stats", h.GetStats)
		fund.GET("/transactions", h.ListTransactions)
		fund.POST("/adjustments", append(adjust, h.PostAdjustment)...)
	}
}

// ExpenseHandler handles expense approval workflow API endpoints
type ExpenseHandler struct {
	BaseHandler
	service *treasuryapp.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(service *treasuryapp.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{service: service}
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID           string     `json:"id"`
	BuildingID   string     `json:"building_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Category     string     `json:"category"`
	Amount       int64      `json:"amount"`
	Vendor       string     `json:"vendor,omitempty"`
	InvoiceRef   string     `json:"invoice_ref,omitempty"`
	ExpenseDate  time.Time  `json:"expense_date"`
	Status       string     `json:"status"`
	DecidedBy    *string    `json:"decided_by,omitempty"`
	DecidedAt    *time.Time `json:"decided_at,omitempty"`
	DecisionNote string     `json:"decision_note,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CreateExpenseRequest represents a request to record an expense
type CreateExpenseRequest struct {
	Title       string    `json:"title" binding:"required,max=200"`
	Description string    `json:"description"`
	Category    string    `json:"category" binding:"required,oneof=MAINTENANCE UTILITIES CLEANING SECURITY REPAIRS INSURANCE OTHER"`
	Amount      int64     `json:"amount" binding:"required,gt=0"`
	Vendor      string    `json:"vendor" binding:"max=200"`
	InvoiceRef  string    `json:"invoice_ref" binding:"max=100"`
	ExpenseDate time.Time `json:"expense_date" binding:"required"`
}

// UpdateExpenseRequest represents an update to a pending expense
type UpdateExpenseRequest struct {
	Title       string    `json:"title" binding:"required,max=200"`
	Description string    `json:"description"`
	Category    string    `json:"category" binding:"required,oneof=MAINTENANCE UTILITIES CLEANING SECURITY REPAIRS INSURANCE OTHER"`
	Amount      int64     `json:"amount" binding:"required,gt=0"`
	Vendor      string    `json:"vendor" binding:"max=200"`
	InvoiceRef  string    `json:"invoice_ref" binding:"max=100"`
	ExpenseDate time.Time `json:"expense_date" binding:"required"`
}

// ExpenseDecisionRequest carries the optional note on approve/reject
type ExpenseDecisionRequest struct {
	Note string `json:"note" binding:"max=500"`
}

// ExpenseListFilter represents query parameters for the expense list
type ExpenseListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED"`
	Category string `form:"category" binding:"omitempty,oneof=MAINTENANCE UTILITIES CLEANING SECURITY REPAIRS INSURANCE OTHER"`
	Page     int    `form:"page,omitempty" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size,omitempty" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func toExpenseResponse(expense *treasury.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:           expense.ID.String(),
		BuildingID:   expense.BuildingID.String(),
		Title:        expense.Title,
		Description:  expense.Description,
		Category:     expense.Category.String(),
		Amount:       expense.Amount.Amount(),
		Vendor:       expense.Vendor,
		InvoiceRef:   expense.InvoiceRef,
		ExpenseDate:  expense.ExpenseDate,
		Status:       expense.Status.String(),
		DecidedBy:    uuidString(expense.DecidedBy),
		DecidedAt:    expense.DecidedAt,
		DecisionNote: expense.DecisionNote,
		CreatedAt:    expense.CreatedAt,
		UpdatedAt:    expense.UpdatedAt,
	}
}

// CreateExpense records a pending expense request
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	buildingID, err := getBuildingID(c)
	if err != nil {
		h.BadRequest(c, "Invalid building ID")
		return
	}

	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	serviceReq := treasuryapp.CreateExpenseRequest{
		BuildingID:  buildingID,
		Title:       req.Title,
		Description: req.Description,
		Category:    treasury.ExpenseCategory(req.Category),
		Amount:      req.Amount,
		Vendor:      req.Vendor,
		InvoiceRef:  req.InvoiceRef,
		ExpenseDate: req.ExpenseDate,
	}
	if userID, err := getUserID(c); err == nil {
		serviceReq.CreatedBy = &userID
	}

	expense, err := h.service.CreateExpense(c.Request.Context(), serviceReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toExpenseResponse(expense))
}

// ListExpenses lists expenses for the building
func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	buildingID, err := getBuildingID(c)
	if err != nil {
		h.BadRequest(c, "Invalid building ID")
		return
	}

	var filter ExpenseListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	domainFilter := treasury.ExpenseFilter{
		Search:   filter.Search,
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
	}
	if filter.Status != "" {
		status := treasury.ExpenseStatus(filter.Status)
		domainFilter.Status = &status
	}
	if filter.Category != "" {
		category := treasury.ExpenseCategory(filter.Category)
		domainFilter.Category = &category
	}

	page, err := h.service.ListExpenses(c.Request.Context(), buildingID, domainFilter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	response := make([]ExpenseResponse, len(page.Items))
	for i, expense := range page.Items {
		response[i] = toExpenseResponse(expense)
	}
	h.SuccessWithMeta(c, response, page.Total, page.Page, page.PageSize)
}

// GetExpense gets a single expense
func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	buildingID, err := getBuildingID(c)
	if err != nil {
		h.BadRequest(c, "Invalid building ID")
		return
	}
	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid expense ID")
		return
	}

	expense, err := h.service.GetExpense(c.Request.Context(), buildingID, expenseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toExpenseResponse(expense))
}

// UpdateExpense modifies a pending expense
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	buildingID, err := getBuildingID(c)
	if err != nil {
		h.BadRequest(c, "Invalid building ID")
		return
	}
	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid expense ID")
		return
	}

	var req UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	expense, err := h.service.UpdateExpense(c.Request.Context(), buildingID, expenseID, treasuryapp.UpdateExpenseRequest{
		Title:       req.Title,
		Description: req.Description,
		Category:    treasury.ExpenseCategory(req.Category),
		Amount:      req.Amount,
		Vendor:      req.Vendor,
		InvoiceRef:  req.InvoiceRef,
		ExpenseDate: req.ExpenseDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toExpenseResponse(expense))
}

// DeleteExpense deletes an expense that has not been approved
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	buildingID, err := getBuildingID(c)
	if err != nil {
		h.BadRequest(c, "Invalid building ID")
		return
	}
	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid expense ID")
		return
	}

	if err := h.service.DeleteExpense(c.Request.Context(), buildingID, expenseID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ApproveExpense approves a pending expense and debits the fund
func (h *ExpenseHandler) ApproveExpense(c *gin.Context) {
	h.decide(c, h.service.ApproveExpense)
}

// RejectExpense rejects a pending expense
func (h *ExpenseHandler) RejectExpense(c *gin.Context) {
	h.decide(c, h.service.RejectExpense)
}

func (h *ExpenseHandler) decide(
	c *gin.Context,
	fn func(ctx context.Context, buildingID, expenseID, actor uuid.UUID, note string) (*treasury.Expense, error),
) {
	buildingID, err := getBuildingID(c)
	if err != nil {
		h.BadRequest(c, "Invalid building ID")
		return
	}
	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid expense ID")
		return
	}
	actor, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req ExpenseDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.BindingError(c, err)
		return
	}

	expense, err := fn(c.Request.Context(), buildingID, expenseID, actor, req.Note)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toExpenseResponse(expense))
}

// RegisterRoutes registers expense routes on a building-scoped group. The
// decide middleware gates the approve/reject endpoints.
func (h *ExpenseHandler) RegisterRoutes(rg *gin.RouterGroup, decide ...gin.HandlerFunc) {
	expenses := rg.Group("/expenses")
	{
		expenses.GET("", h.ListExpenses)
		expenses.GET("/:id", h.GetExpense)
		expenses.POST("", h.CreateExpense)
		expenses.PUT("/:id", h.UpdateExpense)
		expenses.DELETE("/:id", h.DeleteExpense)
		expenses.PATCH("/:id/approve", append(decide, h.ApproveExpense)...)
		expenses.PATCH("/:id/reject", append(decide, h.RejectExpense)...)
	}
}
