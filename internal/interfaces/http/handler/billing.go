package handler

import (
	"time"

	billingapp "github.com/bms/backend/internal/application/billing"
	"github.com/bms/backend/internal/domain/billing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ChargeHandler handles charge lifecycle API endpoints
type ChargeHandler struct {
	BaseHandler
	service *billingapp.ChargeService
}

// NewChargeHandler creates a new ChargeHandler
func NewChargeHandler(service *billingapp.ChargeService) *ChargeHandler {
	return &ChargeHandler{service: service}
}

// ===================== Request/Response DTOs =====================

// ChargeUnitItemResponse represents one unit's share in API responses
type ChargeUnitItemResponse struct {
	ID         string `json:"id"`
	UnitID     string `json:"unit_id"`
	Amount     int64  `json:"amount"`
	PaidAmount int64  `json:"paid_amount"`
	LateFee    int64  `json:"late_fee"`
	Remaining  int64  `json:"remaining"`
	IsPaid     bool   `json:"is_paid"`
	Note       string `json:"note,omitempty"`
}

// ChargeItemResponse represents an informational breakdown line
type ChargeItemResponse struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Amount int64  `json:"amount"`
}

// ChargeResponse represents a charge in API responses
type ChargeResponse struct {
	ID          string                   `json:"id"`
	BuildingID  string                   `json:"building_id"`
	Title       string                   `json:"title"`
	Description string                   `json:"description,omitempty"`
	TotalAmount int64                    `json:"total_amount"`
	Method      string                   `json:"method"`
	Status      string                   `json:"status"`
	DueDate     *time.Time               `json:"due_date,omitempty"`
	UnitItems   []ChargeUnitItemResponse `json:"unit_items,omitempty"`
	Items       []ChargeItemResponse     `json:"items,omitempty"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
	Version     int                      `json:"version"`
}

// ChargeItemInput is a breakdown line supplied at creation
type ChargeItemInput struct {
	Label  string `json:"label" binding:"required"`
	Amount int64  `json:"amount" binding:"required,gt=0"`
}

// CreateChargeRequest represents a request to create a distributed charge
type CreateChargeRequest struct {
	Title       string            `json:"title" binding:"required,max=200"`
	Description string            `json:"description"`
	TotalAmount int64             `json:"total_amount" binding:"required,gt=0"`
	Method      string            `json:"method" binding:"required,oneof=EQUAL BY_AREA BY_COEFFICIENT BY_RESIDENT_COUNT"`
	DueDate     *time.Time        `json:"due_date"`
	UnitIDs     []string          `json:"unit_ids"`
	Items       []ChargeItemInput `json:"items"`
}

// CustomShareInput is one unit's caller-supplied amount
type CustomShareInput struct {
	UnitID string `json:"unit_id" binding:"required,uuid"`
	Amount int64  `json:"amount" binding:"required,gt=0"`
	Note   string `json:"note"`
}

// CreateCustomChargeRequest represents a request to create a custom charge
type CreateCustomChargeRequest struct {
	Title       string             `json:"title" binding:"required,max=200"`
	Description string             `json:"description"`
	DueDate     *time.Time         `json:"due_date"`
	Shares      []CustomShareInput `json:"shares" binding:"required,min=1,dive"`
	Items       []ChargeItemInput  `json:"items"`
}

// UpdateChargeRequest represents a request to update a DRAFT charge
type UpdateChargeRequest struct {
	Title       string     `json:"title" binding:"required,max=200"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
}

// UpdateChargeStatusRequest represents an explicit status transition
type UpdateChargeStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=DRAFT ACTIVE PARTIALLY_PAID PAID CANCELLED"`
}

// ApplyLateFeesRequest represents a late fee assessment on an overdue charge
type ApplyLateFeesRequest struct {
	Fee int64 `json:"fee" binding:"required,gt=0"`
}

// ChargeListFilter represents query parameters for the charge list
type ChargeListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=DRAFT ACTIVE PARTIALLY_PAID PAID CANCELLED"`
	Method   string `form:"method"`
	Page     int    `form:"page,omitempty" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size,omitempty" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func toChargeResponse(charge *billing.Charge) ChargeResponse {
	resp := ChargeResponse{
		ID:          charge.ID.String(),
		BuildingID:  charge.BuildingID.String(),
		Title:       charge.Title,
		Description: charge.Description,
		TotalAmount: charge.TotalAmount.Amount(),
		Method:      charge.Method.String(),
		Status:      charge.Status.String(),
		DueDate:     charge.DueDate,
		CreatedAt:   charge.CreatedAt,
		UpdatedAt:   charge.UpdatedAt,
		Version:     charge.Version,
	}
	for _, item := range charge.UnitItems {
		resp.UnitItems = append(resp.UnitItems, ChargeUnitItemResponse{
			ID:         item.ID.String(),
			UnitID:     item.UnitID.String(),
			Amount:     item.Amount.Amount(),
			PaidAmount: item.PaidAmount.Amount(),
			LateFee:    item.LateFee.Amount(),
			Remaining:  item.Remaining().Amount(),
			IsPaid:     item.IsPaid,
			Note:       item.Note,
		})
	}
	for _, item := range charge.Items {
		resp.Items = append(resp.Items, ChargeItemResponse{
			ID:     item.ID.String(),
			Label:  item.Label,
			Amount: item.Amount.Amount(),
		})
	}
	return resp
}

func toChargeItemInputs(items []ChargeItemInput) []billingapp.ChargeItemInput {
	inputs := make([]billingapp.ChargeItemInput, len(items))
	for i, item := range items {
		inputs[i] = billingapp.ChargeItemInput{Label: item.Label, Amount: item.Amount}
	}
	return inputs
}

// ===================== Handlers =====================

// CreateCharge creates a charge distributed across units
func (h *ChargeHandler) CreateCharge(c *gin.Context) {
	buildingID, err := getBuildingID(c)
	if err != nil {
		h.BadRequest(c, "Invalid building ID")
		return
	}

	var req CreateChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	unitIDs := make([]uuid.UUID, 0, len(req.UnitIDs))
	for _, raw := range req.UnitIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid unit ID: "+raw)
			return
		}
		unitIDs = append(unitIDs, id)
	}

	serviceReq := billingapp.CreateChargeRequest{
		BuildingID:  buildingID,
		Title:       req.Title,
		Description: req.Description,
		TotalAmount: req.TotalAmount,
		Method:      billing.DistributionMethod(req.Method),
		DueDate:     req.DueDate,
		UnitIDs:     unitIDs,
		Items:       toChargeItemInputs(req.Items),
	}
	if userID, err := getUserID(c); err == nil {
		serviceReq.CreatedBy = &userID
	}

	charge, err := h.service.CreateCharge(c.Request.Context(), serviceReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toChargeResponse(charge))
}

// CreateCustomCharge creates a charge with caller-supplied per-unit amounts
func (h *ChargeHandler) CreateCustomCharge(c *gin.Context) {
	buildingID, err := getBuildingID(c)
	if err != nil {
		h.BadRequest(c, "Invalid building ID")
		return
	}

	var req CreateCustomChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	shares := make([]billingapp.CustomShareInput, len(req.Shares))
	for i, share := range req.Shares {
		unitID, err := uuid.Parse(share.UnitID)
		if err != nil {
			h.BadRequest(c, "Invalid unit ID: "+share.UnitID)
			return
		}
		shares[i] = billingapp.CustomShareInput{UnitID: unitID, Amount: share.Amount, Note: share.Note}
	}

	serviceReq := billingapp.CreateCustomChargeRequest{
		BuildingID:  buildingID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Shares:      shares,
		Items:       toChargeItemInputs(req.Items),
	}
	if userID, err := getUserID(c); err == nil {
		serviceReq.CreatedBy = &userID
	}

	charge, err := h.service.CreateCustomCharge(c.Request.Context(), serviceReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toChargeResponse(charge))
}

// ListCharges lists charges for the building
func (h *ChargeHandler) ListCharges(c *gin.Context) {
	buildingID, err := getBuildingID(c)
	if err != nil {
		h.BadRequest(c, "Invalid building ID")
		return
	}

	var filter ChargeListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	domainFilter := billing.ChargeFilter{
		Search:   filter.Search,
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
	}
	if filter.Status != "" {
		status := billing.ChargeStatus(filter.Status)
		domainFilter.Status = &status
	}
	if filter.Method != "" {
		method := billing.DistributionMethod(filter.Method)
		domainFilter.Method = &method
	}

	page, err := h.service.ListCharges(c.Request.Context(), buildingID, domainFilter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	response := make([]ChargeResponse, len(page.Items))
	for i := range page.Items {
		response[i] = toChargeResponse(&page.Items[i])
	}
	h.SuccessWithMeta(c, response, page.Total, page.Page, page.PageSize)
}

// GetCharge gets a single charge with its unit items
func (h *ChargeHandler) GetCharge(c *gin.Context) {
	buildingID, err := getBuildingID(c)
	if err != nil {
		h.BadRequest(c, "Invalid building ID")
		return
	}
	chargeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid charge ID")
		return
	}

	charge, err := h.service.GetCharge(c.Request.Context(), buildingID, chargeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toChargeResponse(charge))
}

// UpdateCharge updates header fields of a DRAFT charge
func (h *ChargeHandler) UpdateCharge(c *gin.Context) {
	buildingID, err := getBuildingID(c)
	if err != nil {
		h.BadRequest(c, "Invalid building ID")
		return
	}
	chargeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid charge ID")
		return
	}

	var req UpdateChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	charge, err := h.service.UpdateCharge(c.Request.Context(), buildingID, chargeID, billingapp.UpdateChargeRequest{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toChargeResponse(charge))
}

// UpdateChargeStatus performs an explicit lifecycle transition
func (h *ChargeHandler) UpdateChargeStatus(c *gin.Context) {
	buildingID, err := getBuildingID(c)
	if err != nil {
		h.BadRequest(c, "Invalid building ID")
		return
	}
	chargeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid charge ID")
		return
	}

	var req UpdateChargeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	charge, err := h.service.UpdateChargeStatus(c.Request.Context(), buildingID, chargeID, billing.ChargeStatus(req.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toChargeResponse(charge))
}

// DeleteCharge deletes a charge without verified payments
func (h *ChargeHandler) DeleteCharge(c *gin.Context) {
	buildingID, err := getBuildingID(c)
	if err != nil {
		h.BadRequest(c, "Invalid building ID")
		return
	}
	chargeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid charge ID")
		return
	}

	if err := h.service.DeleteCharge(c.Request.Context(), buildingID, chargeID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ApplyLateFees assesses a late fee on every unpaid item of an overdue charge
func (h *ChargeHandler) ApplyLateFees(c *gin.Context) {
	buildingID, err := getBuildingID(c)
	if err != nil {
		h.BadRequest(c, "Invalid building ID")
		return
	}
	chargeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid charge ID")
		return
	}

	var req ApplyLateFeesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	assessed, err := h.service.ApplyLateFees(c.Request.Context(), buildingID, chargeID, req.Fee, time.Now())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"assessed_items": assessed})
}

// RegisterRoutes registers charge routes on a building-scoped group
func (h *ChargeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	charges := rg.Group("/charges")
	{
		charges.GET("", h.ListCharges)
		charges.GET("/:id", h.GetCharge)
		charges.POST("", h.CreateCharge)
		charges.POST("/custom", h.CreateCustomCharge)
		charges.PUT("/:id", h.UpdateCharge)
		charges.PATCH("/:id/status", h.UpdateChargeStatus)
		charges.POST("/:id/late-fees", h.ApplyLateFees)
		charges.DELETE("/:id", h.DeleteCharge)
	}
}
