package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"dulili/internal/models"
)

// LevyHandler handles levy CRUD within a building
type LevyHandler struct {
	db *gorm.DB
}

// NewLevyHandler creates a new LevyHandler
func NewLevyHandler(db *gorm.DB) *LevyHandler {
	return &LevyHandler{db: db}
}

type levyResponse struct {
	models.Levy
	EffectiveStatus models.LevyStatus `json:"effective_status"`
}

// ListLevies returns a building's levies with the read-time derived status.
// ?status=overdue filters on the derived status, not the stored one.
func (h *LevyHandler) ListLevies(c echo.Context) error {
	buildingID, err := buildingScope(c)
	if err != nil {
		return err
	}
	now, err := requestClock(c)
	if err != nil {
		return err
	}

	var levies []models.Levy
	if err := h.db.Where("building_id = ?", buildingID).Order("due_date asc").Find(&levies).Error; err != nil {
		return err
	}

	filter := models.LevyStatus(c.QueryParam("status"))
	out := make([]levyResponse, 0, len(levies))
	for _, l := range levies {
		effective := l.EffectiveStatus(now)
		if filter != "" && effective != filter {
			continue
		}
		out = append(out, levyResponse{Levy: l, EffectiveStatus: effective})
	}

	return c.JSON(http.StatusOK, out)
}

type createLevyRequest struct {
	LotID       uint            `json:"lot_id"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     string          `json:"due_date"` // YYYY-MM-DD
	Type        models.LevyType `json:"type"`
	Period      string          `json:"period"`
	Description string          `json:"description"`
}

// CreateLevy issues a single levy against a lot
func (h *LevyHandler) CreateLevy(c echo.Context) error {
	buildingID, err := buildingScope(c)
	if err != nil {
		return err
	}

	var req createLevyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Amount.Sign() <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "amount must be positive")
	}

	dueDate, err := timeFromForm(req.DueDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "due_date must be YYYY-MM-DD")
	}

	var lot models.Lot
	if err := h.db.Where("id = ? AND building_id = ?", req.LotID, buildingID).First(&lot).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "lot does not belong to this building")
	}

	levyType := req.Type
	if levyType == "" {
		levyType = models.LevyTypeAdministrative
	}

	levy := models.Levy{
		BuildingID:  buildingID,
		LotID:       lot.ID,
		OwnerID:     lot.OwnerID,
		Amount:      req.Amount,
		DueDate:     dueDate,
		Status:      models.LevyStatusPending,
		Type:        levyType,
		Period:      req.Period,
		Description: req.Description,
	}
	if err := h.db.Create(&levy).Error; err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, levy)
}
