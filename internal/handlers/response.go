package handlers

import (
	"errors"
	"net/http"

	"switchbot_panel/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK        = "ok"
	statusStarted   = "started"
	statusCancelled = "cancelled"
	statusIdle      = "idle"
	statusCleared   = "cleared"
	statusSent      = "sent"
	statusUnchanged = "unchanged"

	errFetchDevices    = "failed to fetch device list"
	errDeviceNotFound  = "device not found"
	errDispatch        = "failed to send command"
	errPreference      = "failed to access power command"
	errLoadLastRun     = "failed to load last shutdown run"
	errNoRunYet        = "no shutdown run yet"
	errDeviceStatus    = "failed to read device status"
	errNoLight         = "no infrared light remote found"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// validationStatus maps service validation errors to an HTTP status.
// ok is false for errors that are not validation errors.
func validationStatus(err error) (code int, ok bool) {
	switch {
	case errors.Is(err, service.ErrDeviceNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, service.ErrCountdownRunning):
		return http.StatusConflict, true
	case errors.Is(err, service.ErrInvalidMinutes),
		errors.Is(err, service.ErrUnknownMode),
		errors.Is(err, service.ErrUnknownFanSpeed),
		errors.Is(err, service.ErrInvalidPowerAction),
		errors.Is(err, service.ErrEmptyCommand),
		errors.Is(err, service.ErrReservedCommand),
		errors.Is(err, service.ErrNotInfrared),
		errors.Is(err, service.ErrNoStatus),
		service.IsFilterError(err):
		return http.StatusBadRequest, true
	default:
		return 0, false
	}
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}
