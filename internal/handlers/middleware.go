package handlers

import (
	"net/http"

	"switchbot_panel/internal/models"

	"github.com/gin-gonic/gin"
)

const deviceCtxKey = "device"

// deviceMiddleware resolves :id against the catalog and stores the device
// in the Gin context.
func (h *Handler) deviceMiddleware(c *gin.Context) {
	id := c.Param("id")
	d, ok := h.services.Catalog.Find(id)
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error": errDeviceNotFound,
			"id":    id,
		})
		return
	}

	c.Set(deviceCtxKey, d)
	c.Next()
}

// currentDevice returns the device stored by deviceMiddleware.
func currentDevice(c *gin.Context) models.Device {
	v, _ := c.Get(deviceCtxKey)
	d, _ := v.(models.Device)
	return d
}
