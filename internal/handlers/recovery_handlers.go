package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"dulili/internal/models"
	"dulili/internal/services"
)

// RecoveryHandler handles the recovery action ledger endpoints
type RecoveryHandler struct {
	ledger *services.RecoveryLedgerService
}

// NewRecoveryHandler creates a new RecoveryHandler
func NewRecoveryHandler(ledger *services.RecoveryLedgerService) *RecoveryHandler {
	return &RecoveryHandler{ledger: ledger}
}

// ListActions returns a building's recovery actions, newest first
func (h *RecoveryHandler) ListActions(c echo.Context) error {
	buildingID, err := buildingScope(c)
	if err != nil {
		return err
	}

	actions, err := h.ledger.List(c.Request().Context(), buildingID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, actions)
}

type recordActionRequest struct {
	LotID               uint                      `json:"lot_id"`
	UserID              uint                      `json:"user_id"`
	Type                models.RecoveryActionType `json:"type"`
	DueDate             string                    `json:"due_date"` // optional YYYY-MM-DD
	Notes               string                    `json:"notes"`
	TribunalOrderNumber string                    `json:"tribunal_order_number"`

	// Override acknowledges a compliance refusal and records the action
	// anyway, preserving the refusal on the audit row.
	Override bool `json:"override"`
}

// RecordAction appends a recovery action to the ledger
func (h *RecoveryHandler) RecordAction(c echo.Context) error {
	buildingID, err := buildingScope(c)
	if err != nil {
		return err
	}
	now, err := requestClock(c)
	if err != nil {
		return err
	}

	var req recordActionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	var dueDate *time.Time
	if req.DueDate != "" {
		parsed, err := timeFromForm(req.DueDate)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "due_date must be YYYY-MM-DD")
		}
		dueDate = &parsed
	}

	action, err := h.ledger.Record(c.Request().Context(), services.RecordActionInput{
		BuildingID:          buildingID,
		LotID:               req.LotID,
		UserID:              req.UserID,
		Type:                req.Type,
		DueDate:             dueDate,
		Notes:               req.Notes,
		TribunalOrderNumber: req.TribunalOrderNumber,
		Override:            req.Override,
	}, now)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, action)
}

// CompleteAction marks a pending action completed
func (h *RecoveryHandler) CompleteAction(c echo.Context) error {
	if _, err := buildingScope(c); err != nil {
		return err
	}
	actionID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	action, err := h.ledger.Complete(c.Request().Context(), actionID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, action)
}

// CancelAction marks a pending action cancelled
func (h *RecoveryHandler) CancelAction(c echo.Context) error {
	if _, err := buildingScope(c); err != nil {
		return err
	}
	actionID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	action, err := h.ledger.Cancel(c.Request().Context(), actionID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, action)
}
