package handler

import (
	"errors"
	"io"
	"time"

	billingapp "github.com/bms/backend/internal/application/billing"
	"github.com/bms/backend/internal/domain/billing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentHandler handles payment ledger API endpoints
type PaymentHandler struct {
	BaseHandler
	service *billingapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(service *billingapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID               string     `json:"id"`
	BuildingID       string     `json:"building_id"`
	UnitID           string     `json:"unit_id"`
	ChargeID         string     `json:"charge_id"`
	ChargeUnitItemID *string    `json:"charge_unit_item_id,omitempty"`
	Amount           int64      `json:"amount"`
	Method           string     `json:"method"`
	Status           string     `json:"status"`
	ReferenceNumber  string     `json:"reference_number"`
	VerifiedBy       *string    `json:"verified_by,omitempty"`
	VerifiedAt       *time.Time `json:"verified_at,omitempty"`
	VerificationNote string     `json:"verification_note,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// CreatePaymentRequest represents a request to record a payment
type CreatePaymentRequest struct {
	UnitID              string `json:"unit_id" binding:"required,uuid"`
	ChargeID            string `json:"charge_id" binding:"required,uuid"`
	Amount              int64  `json:"amount" binding:"required,gt=0"`
	Method              string `json:"method" binding:"required,oneof=CASH BANK_TRANSFER CARD ONLINE"`
	BankReferenceNumber string `json:"bank_reference_number"`
}

// CreateBulkPaymentRequest represents a batch of payments recorded together
type CreateBulkPaymentRequest struct {
	Payments []CreatePaymentRequest `json:"payments" binding:"required,min=1,dive"`
}

// PaymentDecisionRequest carries the optional note on verify/reject
type PaymentDecisionRequest struct {
	Note string `json:"note" binding:"max=500"`
}

// PaymentListFilter represents query parameters for the payment list
type PaymentListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=PENDING VERIFIED REJECTED"`
	Method   string `form:"method" binding:"omitempty,oneof=CASH BANK_TRANSFER CARD ONLINE"`
	UnitID   string `form:"unit_id" binding:"omitempty,uuid"`
	ChargeID string `form:"charge_id" binding:"omitempty,uuid"`
	Page     int    `form:"page,omitempty" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size,omitempty" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func toPaymentResponse(payment *billing.Payment) PaymentResponse {
	resp := PaymentResponse{
		ID:               payment.ID.String(),
		BuildingID:       payment.BuildingID.String(),
		UnitID:           payment.UnitID.String(),
		ChargeID:         payment.ChargeID.String(),
		Amount:           payment.Amount.Amount(),
		Method:           payment.Method.String(),
		Status:           payment.Status.String(),
		ReferenceNumber:  payment.ReferenceNumber,
		VerifiedAt:       payment.VerifiedAt,
		VerificationNote: payment.VerificationNote,
		CreatedAt:        payment.CreatedAt,
		UpdatedAt:        payment.UpdatedAt,
	}
	if payment.ChargeUnitItemID != nil {
		id := payment.ChargeUnitItemID.String()
		resp.ChargeUnitItemID = &id
	}
	if payment.VerifiedBy != nil {
		id := payment.VerifiedBy.String()
		resp.VerifiedBy = &id
	}
	return resp
}

func (h *PaymentHandler) toServiceRequest(c *gin.Context, buildingID uuid.UUID, req CreatePaymentRequest) (billingapp.CreatePaymentRequest, error) {
	unitID, err := uuid.Parse(req.UnitID)
	if err != nil {
		return billingapp.CreatePaymentRequest{}, err
	}
	chargeID, err := uuid.Parse(req.ChargeID)
	if err != nil {
		return billingapp.CreatePaymentRequest{}, err
	}
	serviceReq := billingapp.CreatePaymentRequest{
		BuildingID:          buildingID,
		UnitID:              unitID,
		ChargeID:            chargeID,
		Amount:              req.Amount,
		Method:              billing.PaymentMethod(req.Method),
		BankReferenceNumber: req.BankReferenceNumber,
	}
	if userID, err := getUserID(c); err == nil {
		serviceReq.CreatedBy = &userID
	}
	return serviceReq, nil
}

// CreatePayment records a pending payment against a charge
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	buildingID, err := getBuildingID(c)
	if err != nil {
		h.BadRequest(c, "Invalid building ID")
		return
	}

	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	serviceReq, err := h.toServiceRequest(c, buildingID, req)
	if err != nil {
		h.BadRequest(c, "Invalid identifier in request")
		return
	}

	payment, err := h.service.CreatePayment(c.Request.Context(), serviceReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toPaymentResponse(payment))
}

// CreateBulkPayment records several payments in one transaction
func (h *PaymentHandler) CreateBulkPayment(c *gin.Context) {
	buildingID, err := getBuildingID(c)
	if err != nil {
		h.BadRequest(c, "Invalid building ID")
		return
	}

	var req CreateBulkPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	requests := make([]billingapp.CreatePaymentRequest, len(req.Payments))
	for i, item := range req.Payments {
		serviceReq, err := h.toServiceRequest(c, buildingID, item)
		if err != nil {
			h.BadRequest(c, "Invalid identifier in request")
			return
		}
		requests[i] = serviceReq
	}

	payments, err := h.service.CreateBulkPayment(c.Request.Context(), requests)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	response := make([]PaymentResponse, len(payments))
	for i, payment := range payments {
		response[i] = toPaymentResponse(payment)
	}
	h.Created(c, response)
}

// ListPayments lists payments for the building
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	buildingID, err := getBuildingID(c)
	if err != nil {
		h.BadRequest(c, "Invalid building ID")
		return
	}

	var filter PaymentListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	domainFilter := billing.PaymentFilter{
		Search:   filter.Search,
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
	}
	if filter.Status != "" {
		status := billing.PaymentStatus(filter.Status)
		domainFilter.Status = &status
	}
	if filter.Method != "" {
		method := billing.PaymentMethod(filter.Method)
		domainFilter.Method = &method
	}
	if filter.UnitID != "" {
		unitID, err := uuid.Parse(filter.UnitID)
		if err != nil {
			h.BadRequest(c, "Invalid unit ID")
			return
		}
		domainFilter.UnitID = &unitID
	}
	if filter.ChargeID != "" {
		chargeID, err := uuid.Parse(filter.ChargeID)
		if err != nil {
			h.BadRequest(c, "Invalid charge ID")
			return
		}
		domainFilter.ChargeID = &chargeID
	}

	page, err := h.service.ListPayments(c.Request.Context(), buildingID, domainFilter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	response := make([]PaymentResponse, len(page.Items))
	for i := range page.Items {
		response[i] = toPaymentResponse(&page.Items[i])
	}
	h.SuccessWithMeta(c, response, page.Total, page.Page, page.PageSize)
}

// GetPayment gets a single payment
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	buildingID, err := getBuildingID(c)
	if err != nil {
		h.BadRequest(c, "Invalid building ID")
		return
	}
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	payment, err := h.service.GetPayment(c.Request.Context(), buildingID, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPaymentResponse(payment))
}

// VerifyPayment confirms a pending payment and posts it to the fund
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	buildingID, err := getBuildingID(c)
	if err != nil {
		h.BadRequest(c, "Invalid building ID")
		return
	}
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}
	actor, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req PaymentDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.BindingError(c, err)
		return
	}

	payment, err := h.service.VerifyPayment(c.Request.Context(), buildingID, paymentID, actor, req.Note)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPaymentResponse(payment))
}

// RejectPayment rejects a pending payment
func (h *PaymentHandler) RejectPayment(c *gin.Context) {
	buildingID, err := getBuildingID(c)
	if err != nil {
		h.BadRequest(c, "Invalid building ID")
		return
	}
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}
	actor, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req PaymentDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.BindingError(c, err)
		return
	}

	payment, err := h.service.RejectPayment(c.Request.Context(), buildingID, paymentID, actor, req.Note)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPaymentResponse(payment))
}

// RegisterRoutes registers payment routes on a building-scoped group. The
// decide middleware gates the verify/reject endpoints.
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup, decide ...gin.HandlerFunc) {
	payments := rg.Group("/payments")
	{
		payments.GET("", h.ListPayments)
		payments.GET("/:id", h.GetPayment)
		payments.POST("", h.CreatePayment)
		payments.POST("/bulk", h.CreateBulkPayment)
		payments.PATCH("/:id/verify", append(decide, h.VerifyPayment)...)
		payments.PATCH("/:id/reject", append(decide, h.RejectPayment)...)
	}
}
