package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"dulili/internal/middleware"
	"dulili/internal/models"
)

// parseUintParam parses a numeric path parameter.
func parseUintParam(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid %s", name))
	}
	return uint(v), nil
}

// buildingScope resolves the building path parameter and verifies the
// authenticated user belongs to it. Admins may cross buildings.
func buildingScope(c echo.Context) (uint, error) {
	buildingID, err := parseUintParam(c, "buildingID")
	if err != nil {
		return 0, err
	}

	_, userBuildingID, role := middleware.UserFromContext(c)
	if role != models.UserRoleAdmin && userBuildingID != buildingID {
		return 0, echo.NewHTTPError(http.StatusForbidden, "not a member of this building")
	}
	return buildingID, nil
}

// requestClock returns the instant calculations run at. Admins may pass
// ?at=RFC3339 to inspect arrears as of another time; everyone else gets the
// wall clock. This is the single place handlers read time.Now.
func requestClock(c echo.Context) (time.Time, error) {
	at := c.QueryParam("at")
	if at == "" {
		return time.Now(), nil
	}

	_, _, role := middleware.UserFromContext(c)
	if role != models.UserRoleAdmin {
		return time.Time{}, echo.NewHTTPError(http.StatusForbidden, "clock override is admin-only")
	}

	parsed, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "at must be RFC3339")
	}
	return parsed, nil
}

// timeFromForm parses a date from an HTML input type="date" or JSON body.
func timeFromForm(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}
