package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"dulili/internal/finance"
	"dulili/internal/middleware"
	"dulili/internal/models"
	"dulili/internal/services"
)

// PlanHandler handles payment plan requests and lifecycle endpoints
type PlanHandler struct {
	db      *gorm.DB
	plans   *services.PlanService
	arrears *services.ArrearsService
}

// NewPlanHandler creates a new PlanHandler
func NewPlanHandler(db *gorm.DB, plans *services.PlanService, arrears *services.ArrearsService) *PlanHandler {
	return &PlanHandler{db: db, plans: plans, arrears: arrears}
}

// ListPlans returns a building's payment plans, newest first
func (h *PlanHandler) ListPlans(c echo.Context) error {
	buildingID, err := buildingScope(c)
	if err != nil {
		return err
	}

	var plans []models.PaymentPlan
	err = h.db.Where("building_id = ?", buildingID).
		Order("created_at desc").
		Find(&plans).Error
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, plans)
}

type requestPlanRequest struct {
	LotID        uint                        `json:"lot_id"`
	Installments int                         `json:"installments"`
	Frequency    models.PaymentPlanFrequency `json:"frequency"`
	StartDate    string                      `json:"start_date"` // YYYY-MM-DD
	Notes        string                      `json:"notes"`
}

// RequestPlan lets an authenticated member request a plan for themselves.
// Managers may request on behalf of another member via ?user_id=.
func (h *PlanHandler) RequestPlan(c echo.Context) error {
	buildingID, err := buildingScope(c)
	if err != nil {
		return err
	}
	userID, _, role := middleware.UserFromContext(c)

	if target := c.QueryParam("user_id"); target != "" {
		if !role.CanManageLevies() {
			return echo.NewHTTPError(http.StatusForbidden, "only managers may request a plan for another member")
		}
		targetID, err := strconv.ParseUint(target, 10, 32)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid user_id")
		}
		userID = uint(targetID)
	}

	var req requestPlanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	startDate, err := timeFromForm(req.StartDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "start_date must be YYYY-MM-DD")
	}

	plan, err := h.plans.Request(c.Request().Context(), services.PlanRequest{
		BuildingID:   buildingID,
		UserID:       userID,
		LotID:        req.LotID,
		Installments: req.Installments,
		Frequency:    req.Frequency,
		StartDate:    startDate,
		Notes:        req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, plan)
}

// Eligibility reports whether the authenticated member may request a plan
func (h *PlanHandler) Eligibility(c echo.Context) error {
	if _, err := buildingScope(c); err != nil {
		return err
	}
	userID, _, _ := middleware.UserFromContext(c)

	plans, err := h.arrears.UserPlans(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, finance.CheckPlanRequest(plans))
}

func (h *PlanHandler) transition(c echo.Context, to models.PaymentPlanStatus) error {
	if _, err := buildingScope(c); err != nil {
		return err
	}
	planID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	plan, err := h.plans.Transition(c.Request().Context(), planID, to)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, plan)
}

// ApprovePlan moves a pending plan to approved
func (h *PlanHandler) ApprovePlan(c echo.Context) error {
	return h.transition(c, models.PaymentPlanStatusApproved)
}

// RejectPlan moves a pending plan to rejected
func (h *PlanHandler) RejectPlan(c echo.Context) error {
	return h.transition(c, models.PaymentPlanStatusRejected)
}

// ActivatePlan moves an approved plan to active
func (h *PlanHandler) ActivatePlan(c echo.Context) error {
	return h.transition(c, models.PaymentPlanStatusActive)
}

// CompletePlan moves an active plan to completed
func (h *PlanHandler) CompletePlan(c echo.Context) error {
	return h.transition(c, models.PaymentPlanStatusCompleted)
}

// CancelPlan cancels a plan from any non-terminal state
func (h *PlanHandler) CancelPlan(c echo.Context) error {
	return h.transition(c, models.PaymentPlanStatusCancelled)
}
