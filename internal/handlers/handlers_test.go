package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	appMiddleware "dulili/internal/middleware"
	"dulili/internal/models"
	"dulili/internal/services"
)

// newTestAPI wires an Echo instance the way cmd/server does, over an
// in-memory database: session middleware on the building group and the
// committee-level role gate on the recovery and arrears endpoints.
func newTestAPI(t *testing.T) (*echo.Echo, *gorm.DB, *services.TokenService) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, services.AutoMigrate(db))

	tokens, err := services.NewTokenService("handler-test-secret")
	require.NoError(t, err)

	arrears := services.NewArrearsService(db, nil)
	payments := services.NewPaymentService(db, arrears)
	ledger := services.NewRecoveryLedgerService(db, arrears)

	e := echo.New()
	e.HTTPErrorHandler = appMiddleware.CustomErrorHandler

	recoveryHandler := NewRecoveryHandler(ledger)
	arrearsHandler := NewArrearsHandler(arrears, payments)

	recovery := appMiddleware.RequireRole(models.UserRoleAdmin, models.UserRoleManager, models.UserRoleCommittee)

	building := e.Group("/buildings/:buildingID")
	building.Use(appMiddleware.RequireAuth(tokens))
	building.GET("/arrears", arrearsHandler.BuildingSummary, recovery)
	building.GET("/arrears/me", arrearsHandler.MySummary)
	building.POST("/recovery-actions", recoveryHandler.RecordAction, recovery)

	return e, db, tokens
}

func seedTestBuilding(t *testing.T, db *gorm.DB) (models.Building, models.User, models.Lot) {
	t.Helper()

	building := models.Building{Name: "Seabreeze", StrataPlanNumber: "SP" + t.Name()}
	require.NoError(t, db.Create(&building).Error)

	owner := models.User{
		Name:       "Morgan Owner",
		Email:      fmt.Sprintf("owner-%s@example.com", t.Name()),
		Role:       models.UserRoleMember,
		BuildingID: building.ID,
	}
	require.NoError(t, db.Create(&owner).Error)

	lot := models.Lot{
		BuildingID:      building.ID,
		OwnerID:         owner.ID,
		LotNumber:       "4",
		UnitEntitlement: 10,
	}
	require.NoError(t, db.Create(&lot).Error)

	return building, owner, lot
}

func seedUser(t *testing.T, db *gorm.DB, buildingID uint, role models.UserRole) models.User {
	t.Helper()

	user := models.User{
		Name:       fmt.Sprintf("%s user", role),
		Email:      fmt.Sprintf("%s-%s@example.com", role, t.Name()),
		Role:       role,
		BuildingID: buildingID,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func bearerFor(t *testing.T, tokens *services.TokenService, user models.User) string {
	t.Helper()

	token, err := tokens.Issue(&user, time.Now())
	require.NoError(t, err)
	return "Bearer " + token
}

func doJSON(e *echo.Echo, method, path, auth, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRecoveryActionRoleGate(t *testing.T) {
	e, db, tokens := newTestAPI(t)
	building, owner, lot := seedTestBuilding(t, db)
	manager := seedUser(t, db, building.ID, models.UserRoleManager)

	path := fmt.Sprintf("/buildings/%d/recovery-actions", building.ID)
	body := fmt.Sprintf(`{"lot_id": %d, "user_id": %d, "type": "reminder"}`, lot.ID, owner.ID)

	// A member cannot record recovery steps against themselves or anyone
	// else.
	rec := doJSON(e, http.MethodPost, path, bearerFor(t, tokens, owner), body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var count int64
	db.Model(&models.RecoveryAction{}).Count(&count)
	assert.Zero(t, count, "refused request must not create a ledger row")

	// A manager can.
	rec = doJSON(e, http.MethodPost, path, bearerFor(t, tokens, manager), body)
	assert.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body)

	db.Model(&models.RecoveryAction{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestRequireAuthRejectsBadTokens(t *testing.T) {
	e, db, _ := newTestAPI(t)
	building, _, _ := seedTestBuilding(t, db)

	path := fmt.Sprintf("/buildings/%d/arrears/me", building.ID)

	rec := doJSON(e, http.MethodGet, path, "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(e, http.MethodGet, path, "Bearer not-a-token", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// A non-bearer scheme is rejected outright.
	rec = doJSON(e, http.MethodGet, path, "Basic dXNlcjpwYXNz", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBuildingScopeRejectsCrossTenant(t *testing.T) {
	e, db, tokens := newTestAPI(t)
	home, _, _ := seedTestBuilding(t, db)
	manager := seedUser(t, db, home.ID, models.UserRoleManager)
	admin := seedUser(t, db, home.ID, models.UserRoleAdmin)

	other := models.Building{Name: "Other Tower", StrataPlanNumber: "SPX" + t.Name()}
	require.NoError(t, db.Create(&other).Error)

	path := fmt.Sprintf("/buildings/%d/arrears", other.ID)

	// A manager is confined to their own building.
	rec := doJSON(e, http.MethodGet, path, bearerFor(t, tokens, manager), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Admins may cross buildings.
	rec = doJSON(e, http.MethodGet, path, bearerFor(t, tokens, admin), "")
	assert.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body)
}

func TestClockOverrideAdminOnly(t *testing.T) {
	e, db, tokens := newTestAPI(t)
	building, _, _ := seedTestBuilding(t, db)
	manager := seedUser(t, db, building.ID, models.UserRoleManager)
	admin := seedUser(t, db, building.ID, models.UserRoleAdmin)

	at := time.Now().AddDate(0, 1, 0).UTC().Format(time.RFC3339)
	path := fmt.Sprintf("/buildings/%d/arrears?at=%s", building.ID, at)

	rec := doJSON(e, http.MethodGet, path, bearerFor(t, tokens, manager), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(e, http.MethodGet, path, bearerFor(t, tokens, admin), "")
	assert.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body)

	badPath := fmt.Sprintf("/buildings/%d/arrears?at=yesterday", building.ID)
	rec = doJSON(e, http.MethodGet, badPath, bearerFor(t, tokens, admin), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
