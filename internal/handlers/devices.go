package handlers

import (
	"net/http"

	"switchbot_panel/internal/models"

	"github.com/gin-gonic/gin"
)

// deviceView is a catalog entry with its selection flag.
type deviceView struct {
	models.Device
	Selected bool `json:"selected"`
}

type selectionRequest struct {
	Selected *bool `json:"selected" binding:"required"`
}

// SetPowerCommandRequest documents the power-command payload. A null or
// missing command cancels the edit; an empty string resets to turnOff.
type SetPowerCommandRequest struct {
	Command *string `json:"command" example:"lightOff"`
}

type commandRequest struct {
	Command string `json:"command" binding:"required"`
}

func (h *Handler) deviceViews() []deviceView {
	devices := h.services.Catalog.Devices()
	selected := h.services.Selection.Snapshot()
	out := make([]deviceView, 0, len(devices))
	for _, d := range devices {
		out = append(out, deviceView{Device: d, Selected: selected[d.ID]})
	}
	return out
}

// @Summary      List devices
// @Description  Physical devices first, then infrared remotes, each in backend order.
// @Tags         devices
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, devices"
// @Router       /api/v1/devices [get]
func (h *Handler) listDevices(c *gin.Context) {
	views := h.deviceViews()
	c.JSON(http.StatusOK, gin.H{"count": len(views), "devices": views})
}

// @Summary      Re-fetch devices from SwitchBot
// @Tags         devices
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, devices"
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/devices/refresh [post]
func (h *Handler) refreshDevices(c *gin.Context) {
	if _, err := h.services.Catalog.Refresh(c.Request.Context()); err != nil {
		h.logAndJSONError(c, http.StatusBadGateway, errFetchDevices, "devices_refresh_failed", err)
		return
	}
	views := h.deviceViews()
	c.JSON(http.StatusOK, gin.H{"count": len(views), "devices": views})
}

func (h *Handler) setSelection(c *gin.Context) {
	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	d := currentDevice(c)
	h.services.Selection.Set(d.ID, *req.Selected)
	c.JSON(http.StatusOK, gin.H{"id": d.ID, "selected": *req.Selected})
}

func (h *Handler) toggleSelection(c *gin.Context) {
	d := currentDevice(c)
	selected := h.services.Selection.Toggle(d.ID)
	c.JSON(http.StatusOK, gin.H{"id": d.ID, "selected": selected})
}

func (h *Handler) clearSelection(c *gin.Context) {
	h.services.Selection.Clear()
	c.JSON(http.StatusOK, gin.H{"status": statusCleared})
}

// @Summary      Get power-off command
// @Tags         devices
// @Produce      json
// @Param        id   path      string  true  "Device ID"
// @Success      200  {object}  map[string]string  "id, command"
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/devices/{id}/power-command [get]
func (h *Handler) getPowerCommand(c *gin.Context) {
	d := currentDevice(c)
	cmd, err := h.services.Preferences.Command(c.Request.Context(), d.ID)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errPreference, "power_command_read_failed", err, "id", d.ID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": d.ID, "command": cmd})
}

// @Summary      Set power-off command
// @Tags         devices
// @Accept       json
// @Produce      json
// @Param        id    path   string                  true  "Device ID"
// @Param        body  body   SetPowerCommandRequest  true  "Command payload"
// @Success      200   {object}  map[string]string  "id, command, status"
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/devices/{id}/power-command [put]
func (h *Handler) setPowerCommand(c *gin.Context) {
	var req SetPowerCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	ctx := c.Request.Context()
	d := currentDevice(c)

	if err := h.services.Preferences.Set(ctx, d.ID, d.Name, req.Command); err != nil {
		if code, ok := validationStatus(err); ok {
			c.JSON(code, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errPreference, "power_command_write_failed", err, "id", d.ID)
		return
	}
	cmd, err := h.services.Preferences.Command(ctx, d.ID)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errPreference, "power_command_read_failed", err, "id", d.ID)
		return
	}
	status := statusOK
	if req.Command == nil {
		status = statusUnchanged
	}
	c.JSON(http.StatusOK, gin.H{"id": d.ID, "command": cmd, "status": status})
}

// @Summary      Send an infrared command
// @Tags         devices
// @Accept       json
// @Produce      json
// @Param        id    path   string  true  "Device ID"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /api/v1/devices/{id}/command [post]
func (h *Handler) sendCommand(c *gin.Context) {
	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	d := currentDevice(c)
	if err := h.services.Control.SendCommand(c.Request.Context(), d.ID, req.Command); err != nil {
		if code, ok := validationStatus(err); ok {
			c.JSON(code, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusBadGateway, errDispatch, "device_command_failed", err, "id", d.ID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": d.ID, "command": req.Command, "status": statusSent})
}

// @Summary      Device status
// @Description  Live power, temperature and humidity of a physical device.
// @Tags         devices
// @Produce      json
// @Param        id   path      string  true  "Device ID"
// @Success      200  {object}  models.DeviceStatus
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/devices/{id}/status [get]
func (h *Handler) getDeviceStatus(c *gin.Context) {
	d := currentDevice(c)
	st, err := h.services.Control.Status(c.Request.Context(), d.ID)
	if err != nil {
		if code, ok := validationStatus(err); ok {
			c.JSON(code, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusBadGateway, errDeviceStatus, "device_status_failed", err, "id", d.ID)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Turn on the first light
// @Description  Sends turnOn to the first infrared remote of type Light.
// @Tags         devices
// @Produce      json
// @Success      200  {object}  map[string]string  "id, name, status"
// @Failure      404  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/lights/first/on [post]
func (h *Handler) turnOnFirstLight(c *gin.Context) {
	d, ok, err := h.services.Control.TurnOnFirstLight(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusBadGateway, errDispatch, "first_light_failed", err, "id", d.ID)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": errNoLight})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": d.ID, "name": d.Name, "status": statusSent})
}
