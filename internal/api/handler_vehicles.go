package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fleetguard-backend/internal/model"
)

// GetVehicles handles GET /api/vehicles: the dashboard list with each
// vehicle's current status and the note from its latest check.
func (h *Handler) GetVehicles(c *gin.Context) {
	statuses, err := h.store.ListVehicles(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve vehicles"})
		return
	}
	c.JSON(http.StatusOK, statuses)
}

type createVehicleRequest struct {
	RigNumber string `json:"rig_number" binding:"required"`
}

// CreateVehicle handles POST /api/vehicles.
func (h *Handler) CreateVehicle(c *gin.Context) {
	var req createVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	v := &model.Vehicle{
		ID:         uuid.NewString(),
		RigNumber:  req.RigNumber,
		BaseStatus: "green",
	}
	if err := h.store.CreateVehicle(c.Request.Context(), v); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create vehicle"})
		return
	}
	c.JSON(http.StatusCreated, v)
}

type setServiceRequest struct {
	OutOfService *bool `json:"out_of_service" binding:"required"`
}

// SetVehicleService handles PATCH /api/vehicles/:vehicle_id/service,
// toggling whether the vehicle is excluded from assignment.
func (h *Handler) SetVehicleService(c *gin.Context) {
	var req setServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.store.SetVehicleService(c.Request.Context(), c.Param("vehicle_id"), *req.OutOfService)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "vehicle not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
