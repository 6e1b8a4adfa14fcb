package handlers

import (
	"net/http"

	"switchbot_panel/internal/models"

	"github.com/gin-gonic/gin"
)

// StartCountdownRequest is the payload of POST /countdown/start.
type StartCountdownRequest struct {
	// Whole minutes, must be positive
	Minutes int `json:"minutes" example:"30"`
	// Optional terminal action: shutdown or sleep
	Action *string `json:"action,omitempty" example:"sleep"`
}

type countdownResponse struct {
	Status    string                `json:"status,omitempty"`
	Countdown models.CountdownState `json:"countdown"`
	Action    models.PowerAction    `json:"action"`
}

func (h *Handler) countdownResponse(status string) countdownResponse {
	return countdownResponse{
		Status:    status,
		Countdown: h.services.Timer.State(),
		Action:    h.services.Control.PowerAction(),
	}
}

// @Summary      Countdown state
// @Tags         countdown
// @Produce      json
// @Success      200  {object}  countdownResponse
// @Router       /api/v1/countdown [get]
func (h *Handler) getCountdown(c *gin.Context) {
	c.JSON(http.StatusOK, h.countdownResponse(""))
}

// @Summary      Start countdown
// @Description  On expiry the selected devices are switched off and the power action runs.
// @Tags         countdown
// @Accept       json
// @Produce      json
// @Param        body  body   StartCountdownRequest  true  "Countdown payload"
// @Success      200   {object}  countdownResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/v1/countdown/start [post]
func (h *Handler) startCountdown(c *gin.Context) {
	var req StartCountdownRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}

	var action *models.PowerAction
	if req.Action != nil {
		a := models.PowerAction(*req.Action)
		action = &a
	}

	if err := h.services.Timer.Start(c.Request.Context(), req.Minutes, action); err != nil {
		code, ok := validationStatus(err)
		if !ok {
			code = http.StatusInternalServerError
		}
		if h.log != nil {
			h.log.Infow("countdown_start_rejected", "err", err, "minutes", req.Minutes)
		}
		c.JSON(code, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.countdownResponse(statusStarted))
}

// @Summary      Cancel countdown
// @Tags         countdown
// @Produce      json
// @Success      200  {object}  countdownResponse
// @Router       /api/v1/countdown/cancel [post]
func (h *Handler) cancelCountdown(c *gin.Context) {
	status := statusIdle
	if h.services.Timer.Cancel(c.Request.Context()) {
		status = statusCancelled
	}
	c.JSON(http.StatusOK, h.countdownResponse(status))
}
