package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"dulili/internal/middleware"
	"dulili/internal/models"
	"dulili/internal/services"
)

// ArrearsHandler exposes building and member arrears summaries
type ArrearsHandler struct {
	arrears  *services.ArrearsService
	payments *services.PaymentService
}

// NewArrearsHandler creates a new ArrearsHandler
func NewArrearsHandler(arrears *services.ArrearsService, payments *services.PaymentService) *ArrearsHandler {
	return &ArrearsHandler{arrears: arrears, payments: payments}
}

// BuildingSummary returns the building's arrears exposure. Reads hit the
// cache, so the summary's as_of may trail the request by up to the cache
// TTL (ten minutes); payments invalidate it immediately. An explicit ?at=
// clock override always computes fresh.
func (h *ArrearsHandler) BuildingSummary(c echo.Context) error {
	buildingID, err := buildingScope(c)
	if err != nil {
		return err
	}
	now, err := requestClock(c)
	if err != nil {
		return err
	}

	if c.QueryParam("at") != "" {
		summary, err := h.arrears.BuildingSummary(c.Request().Context(), buildingID, now)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, summary)
	}

	summary, err := h.arrears.CachedBuildingSummary(c.Request().Context(), buildingID, now)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

// MySummary returns the authenticated member's own arrears breakdown
func (h *ArrearsHandler) MySummary(c echo.Context) error {
	buildingID, err := buildingScope(c)
	if err != nil {
		return err
	}
	now, err := requestClock(c)
	if err != nil {
		return err
	}
	userID, _, _ := middleware.UserFromContext(c)

	summary, err := h.arrears.UserSummary(c.Request().Context(), buildingID, userID, now)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

type recordPaymentRequest struct {
	UserID    uint                 `json:"user_id"`
	Amount    decimal.Decimal      `json:"amount"`
	Method    models.PaymentMethod `json:"method"`
	Reference string               `json:"reference"`
}

// RecordPayment records a received payment and applies it oldest levy
// first, principal before interest
func (h *ArrearsHandler) RecordPayment(c echo.Context) error {
	buildingID, err := buildingScope(c)
	if err != nil {
		return err
	}
	now, err := requestClock(c)
	if err != nil {
		return err
	}

	var req recordPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	method := req.Method
	if method == "" {
		method = models.PaymentMethodBankTransfer
	}

	payment, allocation, err := h.payments.RecordPayment(c.Request().Context(), services.RecordPaymentInput{
		BuildingID: buildingID,
		UserID:     req.UserID,
		Amount:     req.Amount,
		Method:     method,
		Reference:  req.Reference,
	}, now)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"payment":    payment,
		"allocation": allocation,
	})
}
