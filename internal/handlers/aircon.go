package handlers

import (
	"net/http"

	"switchbot_panel/internal/models"
	"switchbot_panel/internal/service"

	"github.com/gin-gonic/gin"
)

// airconView renders enum fields by name next to the encoded command.
type airconView struct {
	ID          string            `json:"id"`
	Temperature int               `json:"temperature"`
	Mode        string            `json:"mode"`
	FanSpeed    string            `json:"fan_speed"`
	Power       models.PowerState `json:"power"`
	Command     string            `json:"command"`
}

type temperatureRequest struct {
	Delta *int `json:"delta" binding:"required"`
}

type modeRequest struct {
	Mode string `json:"mode" binding:"required"` // Auto | Cool | Dry | Fan | Heat
}

type fanRequest struct {
	Speed string `json:"speed" binding:"required"` // Auto | Low | Medium | High
}

func newAirconView(id string, st models.AirconSetting) airconView {
	return airconView{
		ID:          id,
		Temperature: st.Temperature,
		Mode:        st.Mode.String(),
		FanSpeed:    st.FanSpeed.String(),
		Power:       st.Power,
		Command:     service.EncodeSetting(st),
	}
}

// @Summary      Get aircon setting
// @Tags         aircon
// @Produce      json
// @Param        id   path      string  true  "Device ID"
// @Success      200  {object}  airconView
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/aircon/{id} [get]
func (h *Handler) getAircon(c *gin.Context) {
	d := currentDevice(c)
	c.JSON(http.StatusOK, newAirconView(d.ID, h.services.Aircon.Setting(d.ID)))
}

// @Summary      Adjust temperature
// @Description  Result is clamped to 16..30.
// @Tags         aircon
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Device ID"
// @Success      200  {object}  airconView
// @Failure      400  {object}  map[string]string
// @Router       /api/v1/aircon/{id}/temperature [post]
func (h *Handler) adjustTemperature(c *gin.Context) {
	var req temperatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	d := currentDevice(c)
	c.JSON(http.StatusOK, newAirconView(d.ID, h.services.Aircon.AdjustTemperature(d.ID, *req.Delta)))
}

func (h *Handler) setAirconMode(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	d := currentDevice(c)
	mode, err := service.ParseMode(req.Mode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, err := h.services.Aircon.SetMode(d.ID, mode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, newAirconView(d.ID, st))
}

func (h *Handler) setAirconFan(c *gin.Context) {
	var req fanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	d := currentDevice(c)
	speed, err := service.ParseFanSpeed(req.Speed)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, err := h.services.Aircon.SetFanSpeed(d.ID, speed)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, newAirconView(d.ID, st))
}

func (h *Handler) toggleAirconPower(c *gin.Context) {
	d := currentDevice(c)
	c.JSON(http.StatusOK, newAirconView(d.ID, h.services.Aircon.TogglePower(d.ID)))
}

// @Summary      Send aircon setting
// @Description  Encodes the current setting into one setAll command and dispatches it.
// @Tags         aircon
// @Produce      json
// @Param        id   path      string  true  "Device ID"
// @Success      200  {object}  map[string]string  "id, command, status"
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/aircon/{id}/send [post]
func (h *Handler) sendAircon(c *gin.Context) {
	d := currentDevice(c)
	cmd, err := h.services.Aircon.Send(c.Request.Context(), d.ID, d.Name)
	if err != nil {
		h.logAndJSONError(c, http.StatusBadGateway, errDispatch, "aircon_send_failed", err, "id", d.ID, "command", cmd)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": d.ID, "command": cmd, "status": statusSent})
}
