package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PowerActionRequest selects shutdown or sleep.
type PowerActionRequest struct {
	Action string `json:"action" binding:"required" example:"sleep"`
}

// @Summary      Choose the terminal power action
// @Tags         power
// @Accept       json
// @Produce      json
// @Param        body  body   PowerActionRequest  true  "Action payload"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Router       /api/v1/power-action [put]
func (h *Handler) setPowerAction(c *gin.Context) {
	var req PowerActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	a, err := h.services.Control.SetPowerAction(c.Request.Context(), req.Action)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"action": a})
}

// @Summary      Run a power action now
// @Description  Collaborator failures are reported in power_error and the session log.
// @Tags         power
// @Accept       json
// @Produce      json
// @Param        body  body   PowerActionRequest  true  "Action payload"
// @Success      200   {object}  models.ShutdownRun
// @Failure      400   {object}  map[string]string
// @Router       /api/v1/power/now [post]
func (h *Handler) powerNow(c *gin.Context) {
	var req PowerActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	run, err := h.services.Control.PowerNow(c.Request.Context(), req.Action)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, run)
}

// @Summary      Last shutdown run
// @Tags         power
// @Produce      json
// @Success      200  {object}  models.ShutdownRun
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/shutdown/last-run [get]
func (h *Handler) lastRun(c *gin.Context) {
	run, ok, err := h.services.Control.LastRun(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errLoadLastRun, "last_run_load_failed", err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": errNoRunYet})
		return
	}
	c.JSON(http.StatusOK, run)
}
