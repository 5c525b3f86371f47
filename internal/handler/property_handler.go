package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/pyrecrest/service-booking/internal/application"
	"github.com/pyrecrest/service-booking/internal/common/response"
	"github.com/pyrecrest/service-booking/internal/domain/property"
)

// PropertyHandler exposes the property catalog and its calendar.
type PropertyHandler struct {
	catalog  property.Catalog
	bookings *application.BookingService
}

// NewPropertyHandler creates a new PropertyHandler.
func NewPropertyHandler(catalog property.Catalog, bookings *application.BookingService) *PropertyHandler {
	return &PropertyHandler{catalog: catalog, bookings: bookings}
}

// RegisterRoutes registers the public property routes.
func (h *PropertyHandler) RegisterRoutes(r *gin.RouterGroup) {
	properties := r.Group("/api/v1/properties")
	{
		properties.GET("", h.ListProperties)
		properties.GET("/:id", h.GetProperty)
		properties.GET("/:id/unavailable", h.UnavailableRanges)
	}
}

// ListProperties handles GET /api/v1/properties.
func (h *PropertyHandler) ListProperties(c *gin.Context) {
	props, err := h.catalog.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, props)
}

// GetProperty handles GET /api/v1/properties/:id.
func (h *PropertyHandler) GetProperty(c *gin.Context) {
	prop, err := h.catalog.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, prop)
}

// UnavailableRanges handles GET /api/v1/properties/:id/unavailable?from=&to=.
func (h *PropertyHandler) UnavailableRanges(c *gin.Context) {
	cal, err := h.bookings.UnavailableRanges(c.Request.Context(), c.Param("id"), c.Query("from"), c.Query("to"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, cal)
}
