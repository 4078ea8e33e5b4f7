package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"dulili/internal/models"
	"dulili/internal/services"
)

// RequireAuth returns a middleware that verifies signed session tokens from
// the session cookie or the Authorization header.
func RequireAuth(tokens *services.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString := ""

			if cookie, err := c.Cookie("session"); err == nil && cookie.Value != "" {
				tokenString = cookie.Value
			} else if header := c.Request().Header.Get("Authorization"); header != "" {
				tokenString = strings.TrimPrefix(header, "Bearer ")
				if tokenString == header {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
				}
			}

			if tokenString == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing session token")
			}

			claims, err := tokens.Verify(tokenString)
			if err != nil {
				// Invalid session, clear cookie
				clearCookie := &http.Cookie{
					Name:     "session",
					Value:    "",
					MaxAge:   -1,
					HttpOnly: true,
					Path:     "/",
				}
				c.SetCookie(clearCookie)
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired session")
			}

			// Set user info in context for downstream handlers
			c.Set("userID", claims.UserID)
			c.Set("userEmail", claims.Email)
			c.Set("userRole", claims.Role)
			c.Set("userBuildingID", claims.BuildingID)

			return next(c)
		}
	}
}

// RequireRole returns a middleware allowing only the given roles through.
// It must run after RequireAuth.
func RequireRole(roles ...models.UserRole) echo.MiddlewareFunc {
	allowed := make(map[models.UserRole]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get("userRole").(models.UserRole)
			if !ok || !allowed[role] {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient role for this operation")
			}
			return next(c)
		}
	}
}

// UserFromContext extracts the authenticated identity set by RequireAuth.
func UserFromContext(c echo.Context) (userID uint, buildingID uint, role models.UserRole) {
	if v, ok := c.Get("userID").(uint); ok {
		userID = v
	}
	if v, ok := c.Get("userBuildingID").(uint); ok {
		buildingID = v
	}
	if v, ok := c.Get("userRole").(models.UserRole); ok {
		role = v
	}
	return
}
