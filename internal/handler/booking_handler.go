package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pyrecrest/service-booking/internal/application"
	"github.com/pyrecrest/service-booking/internal/common/response"
)

// BookingHandler handles the public booking endpoints used by the guest site.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all public booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup) {
	api := r.Group("/api/v1")
	{
		api.POST("/bookings", h.CreateBooking)
		api.GET("/bookings/lookup", h.LookupBooking)
		api.POST("/availability", h.CheckAvailability)
		api.POST("/quote", h.Quote)
	}
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req application.CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// CheckAvailability handles POST /api/v1/availability.
func (h *BookingHandler) CheckAvailability(c *gin.Context) {
	var req application.StayRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.CheckAvailability(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Quote handles POST /api/v1/quote.
func (h *BookingHandler) Quote(c *gin.Context) {
	var req application.StayRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.Quote(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// LookupBooking handles GET /api/v1/bookings/lookup?reference=&email=.
func (h *BookingHandler) LookupBooking(c *gin.Context) {
	result, err := h.service.LookupBooking(c.Request.Context(), c.Query("reference"), c.Query("email"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
