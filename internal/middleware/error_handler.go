package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"dulili/internal/finance"
)

// CustomErrorHandler creates a custom error handler for Echo. Business rule
// failures from the finance core map to stable JSON error bodies; anything
// unrecognized is a 500.
func CustomErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	kind := "internal"
	message := "something went wrong"

	var compliance *finance.ComplianceError
	var he *echo.HTTPError

	switch {
	case errors.As(err, &compliance):
		code = http.StatusConflict
		kind = "compliance_violation"
		message = compliance.Reason
	case errors.Is(err, finance.ErrValidation):
		code = http.StatusBadRequest
		kind = "validation"
		message = err.Error()
	case errors.Is(err, finance.ErrInvalidTransition):
		code = http.StatusConflict
		kind = "invalid_transition"
		message = err.Error()
	case errors.Is(err, finance.ErrNotFound):
		code = http.StatusNotFound
		kind = "not_found"
		message = err.Error()
	case errors.As(err, &he):
		code = he.Code
		kind = http.StatusText(code)
		if msg, ok := he.Message.(string); ok && msg != "" {
			message = msg
		} else {
			message = http.StatusText(code)
		}
	}

	if code == http.StatusInternalServerError {
		// Only unexpected faults get logged at error level.
		c.Logger().Error(err)
	}

	resp := map[string]interface{}{
		"error":   kind,
		"message": message,
	}
	if jsonErr := c.JSON(code, resp); jsonErr != nil {
		c.Logger().Error(jsonErr)
	}
}
