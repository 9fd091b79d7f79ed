package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"fleetguard-backend/internal/ai"
	"fleetguard-backend/internal/handoff"
	"fleetguard-backend/internal/model"
	"fleetguard-backend/internal/notification"
	"fleetguard-backend/internal/severity"
	"fleetguard-backend/internal/shift"
	"fleetguard-backend/internal/store"
)

type noopAlerter struct{}

func (noopAlerter) Notify(context.Context, notification.Payload) {}

func setupShiftRouter(t *testing.T) (*gin.Engine, store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Vehicle{},
		&model.RigCheck{},
		&model.EOSReport{},
		&model.PushSubscription{},
	))

	s := store.NewGormStore(db)
	aggregator := severity.NewAggregator(ai.Unavailable{}, ai.Unavailable{})
	shifts := shift.NewService(s, aggregator, noopAlerter{})
	resolver := handoff.NewResolver(s)

	r := gin.New()
	handler := NewHandler(s, shifts, resolver, nil)
	r.POST("/api/shifts/start", handler.StartShift)
	r.POST("/api/shifts/end", handler.EndShift)
	r.POST("/api/shifts/force-end", handler.ForceEndShift)
	r.GET("/api/vehicles/:vehicle_id/handoff", handler.GetHandoff)
	return r, s
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestStartShiftRejectsMissingVehicleID(t *testing.T) {
	router, _ := setupShiftRouter(t)

	w := postJSON(router, "/api/shifts/start", `{"crew_display":"Doe"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStartShiftRejectsBadBase64Photo(t *testing.T) {
	router, _ := setupShiftRouter(t)

	w := postJSON(router, "/api/shifts/start",
		`{"vehicle_id":"v1","damage_photo":"not base64!!","damage_photo_mime":"image/jpeg"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "base64")
}

func TestStartShiftUnknownVehicleIs404(t *testing.T) {
	router, _ := setupShiftRouter(t)

	w := postJSON(router, "/api/shifts/start",
		fmt.Sprintf(`{"vehicle_id":%q}`, uuid.NewString()))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStartShiftCreatesCheck(t *testing.T) {
	router, s := setupShiftRouter(t)
	v := &model.Vehicle{ID: uuid.NewString(), RigNumber: "Medic 1", BaseStatus: "green"}
	require.NoError(t, s.CreateVehicle(context.Background(), v))

	w := postJSON(router, "/api/shifts/start",
		fmt.Sprintf(`{"vehicle_id":%q,"crew_display":"Doe & Partner"}`, v.ID))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestStartShiftOutOfServiceVehicleIs400(t *testing.T) {
	router, s := setupShiftRouter(t)
	ctx := context.Background()
	v := &model.Vehicle{ID: uuid.NewString(), RigNumber: "Medic 2", BaseStatus: "green"}
	require.NoError(t, s.CreateVehicle(ctx, v))
	require.NoError(t, s.SetVehicleService(ctx, v.ID, true))

	w := postJSON(router, "/api/shifts/start", fmt.Sprintf(`{"vehicle_id":%q}`, v.ID))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEndShiftWithoutOpenShiftIs409(t *testing.T) {
	router, s := setupShiftRouter(t)
	v := &model.Vehicle{ID: uuid.NewString(), RigNumber: "Medic 3", BaseStatus: "green"}
	require.NoError(t, s.CreateVehicle(context.Background(), v))

	w := postJSON(router, "/api/shifts/end",
		fmt.Sprintf(`{"vehicle_id":%q,"fuel_level":"half"}`, v.ID))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestForceEndShiftNoopIs204(t *testing.T) {
	router, s := setupShiftRouter(t)
	v := &model.Vehicle{ID: uuid.NewString(), RigNumber: "Medic 4", BaseStatus: "green"}
	require.NoError(t, s.CreateVehicle(context.Background(), v))

	w := postJSON(router, "/api/shifts/force-end", fmt.Sprintf(`{"vehicle_id":%q}`, v.ID))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestGetHandoffWithoutHistoryIsJSONNull(t *testing.T) {
	router, s := setupShiftRouter(t)
	v := &model.Vehicle{ID: uuid.NewString(), RigNumber: "Medic 5", BaseStatus: "green"}
	require.NoError(t, s.CreateVehicle(context.Background(), v))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/vehicles/"+v.ID+"/handoff", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", w.Body.String())
}
