package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/teambition/rrule-go"
	"gorm.io/gorm"

	"dulili/internal/models"
)

// ScheduleHandler handles recurring levy schedule endpoints
type ScheduleHandler struct {
	db *gorm.DB
}

// NewScheduleHandler creates a new ScheduleHandler
func NewScheduleHandler(db *gorm.DB) *ScheduleHandler {
	return &ScheduleHandler{db: db}
}

// ListSchedules returns a building's levy schedules
func (h *ScheduleHandler) ListSchedules(c echo.Context) error {
	buildingID, err := buildingScope(c)
	if err != nil {
		return err
	}

	var schedules []models.LevySchedule
	if err := h.db.Where("building_id = ?", buildingID).Find(&schedules).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, schedules)
}

type createScheduleRequest struct {
	TotalAmount       decimal.Decimal `json:"total_amount"`
	Type              models.LevyType `json:"type"`
	Description       string          `json:"description"`
	StartDate         string          `json:"start_date"`         // YYYY-MM-DD
	RecurringInterval string          `json:"recurring_interval"` // RFC 5545 RRULE
}

// CreateSchedule registers a recurring levy run for the building
func (h *ScheduleHandler) CreateSchedule(c echo.Context) error {
	buildingID, err := buildingScope(c)
	if err != nil {
		return err
	}

	var req createScheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.TotalAmount.Sign() <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "total_amount must be positive")
	}

	startDate, err := timeFromForm(req.StartDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "start_date must be YYYY-MM-DD")
	}

	if _, err := rrule.StrToRRule(req.RecurringInterval); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "recurring_interval must be a valid RRULE")
	}

	levyType := req.Type
	if levyType == "" {
		levyType = models.LevyTypeAdministrative
	}

	schedule := models.LevySchedule{
		BuildingID:        buildingID,
		TotalAmount:       req.TotalAmount,
		Type:              levyType,
		Description:       req.Description,
		StartDate:         startDate,
		RecurringInterval: req.RecurringInterval,
		IsActive:          true,
	}
	if err := h.db.Create(&schedule).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, schedule)
}

// DisableSchedule stops future runs of a schedule
func (h *ScheduleHandler) DisableSchedule(c echo.Context) error {
	buildingID, err := buildingScope(c)
	if err != nil {
		return err
	}
	scheduleID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	var schedule models.LevySchedule
	if err := h.db.Where("id = ? AND building_id = ?", scheduleID, buildingID).First(&schedule).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "schedule not found")
	}

	schedule.IsActive = false
	if err := h.db.Save(&schedule).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, schedule)
}
