package api

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetguard-backend/internal/model"
	"fleetguard-backend/internal/severity"
	"fleetguard-backend/internal/shift"
)

type startShiftRequest struct {
	VehicleID       string         `json:"vehicle_id" binding:"required"`
	CrewID          string         `json:"crew_id"`
	CrewDisplay     string         `json:"crew_display"`
	ItemStatuses    map[string]any `json:"item_statuses"`
	MissingItems    []string       `json:"missing_items"`
	DamageNotes     string         `json:"damage_notes"`
	DamagePhoto     string         `json:"damage_photo"` // base64
	DamagePhotoMIME string         `json:"damage_photo_mime"`
	HandoffDisputed bool           `json:"handoff_disputed"`
	DisputeNotes    string         `json:"handoff_dispute_notes"`
}

// StartShift handles POST /api/shifts/start.
func (h *Handler) StartShift(c *gin.Context) {
	var req startShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := shift.StartShiftInput{
		VehicleID:    req.VehicleID,
		CrewID:       req.CrewID,
		CrewDisplay:  req.CrewDisplay,
		ItemStatuses: req.ItemStatuses,
		MissingItems: req.MissingItems,
		DamageNotes:  req.DamageNotes,
		Disputed:     req.HandoffDisputed,
		DisputeNotes: req.DisputeNotes,
	}

	if req.DamagePhoto != "" {
		data, err := base64.StdEncoding.DecodeString(req.DamagePhoto)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "damage_photo is not valid base64"})
			return
		}
		in.Photo = &severity.Photo{Data: data, MIME: req.DamagePhotoMIME}
		in.PhotoRef = "inline:" + req.DamagePhotoMIME
	}

	check, err := h.shifts.StartShift(c.Request.Context(), in)
	if err != nil {
		respondShiftError(c, err)
		return
	}
	c.JSON(http.StatusCreated, check)
}

type endShiftRequest struct {
	VehicleID        string            `json:"vehicle_id" binding:"required"`
	CrewID           string            `json:"crew_id"`
	FuelLevel        string            `json:"fuel_level"`
	Cleanliness      model.Cleanliness `json:"cleanliness_details"`
	RestockNeeded    []string          `json:"restock_needed"`
	VehicleCondition string            `json:"vehicle_condition"`
	Notes            string            `json:"notes"`
}

// EndShift handles POST /api/shifts/end.
func (h *Handler) EndShift(c *gin.Context) {
	var req endShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.shifts.EndShift(c.Request.Context(), shift.EndShiftInput{
		VehicleID:        req.VehicleID,
		CrewID:           req.CrewID,
		FuelLevel:        req.FuelLevel,
		Cleanliness:      req.Cleanliness,
		RestockNeeded:    req.RestockNeeded,
		VehicleCondition: req.VehicleCondition,
		Notes:            req.Notes,
	})
	if err != nil {
		respondShiftError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

type forceEndShiftRequest struct {
	VehicleID       string `json:"vehicle_id" binding:"required"`
	ActingManagerID string `json:"acting_manager_id"`
}

// ForceEndShift handles POST /api/shifts/force-end.
func (h *Handler) ForceEndShift(c *gin.Context) {
	var req forceEndShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.shifts.ForceEndShift(c.Request.Context(), req.VehicleID, req.ActingManagerID)
	if err != nil {
		respondShiftError(c, err)
		return
	}
	if report == nil {
		// Vehicle had no open shift; the forced end is a no-op.
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusCreated, report)
}

// respondShiftError maps lifecycle errors onto HTTP statuses: validation
// failures 400, unknown vehicles 404, transition conflicts 409, everything
// else 500.
func respondShiftError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, shift.ErrMissingVehicle), errors.Is(err, shift.ErrVehicleOutOfService):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, shift.ErrVehicleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, shift.ErrNoActiveShift), errors.Is(err, shift.ErrShiftConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
