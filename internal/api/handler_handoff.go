package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetHandoff handles GET /api/vehicles/:vehicle_id/handoff. Responds with
// the previous-shift summary, or a JSON null when the vehicle has no
// handoff history. The optional "username" query carries the incoming
// crew's name as the last-resort crew attribution.
func (h *Handler) GetHandoff(c *gin.Context) {
	vehicleID := c.Param("vehicle_id")
	if vehicleID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "vehicle id is required"})
		return
	}

	summary, err := h.handoff.GetHandoff(c.Request.Context(), vehicleID, c.Query("username"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve handoff"})
		return
	}
	c.JSON(http.StatusOK, summary)
}
