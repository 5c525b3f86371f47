package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pyrecrest/service-booking/internal/application"
	"github.com/pyrecrest/service-booking/internal/common/auth"
	"github.com/pyrecrest/service-booking/internal/common/middleware"
	"github.com/pyrecrest/service-booking/internal/common/response"
)

// AdminBookingHandler handles admin HTTP requests for booking management.
type AdminBookingHandler struct {
	service *application.BookingService
}

// NewAdminBookingHandler creates a new AdminBookingHandler.
func NewAdminBookingHandler(service *application.BookingService) *AdminBookingHandler {
	return &AdminBookingHandler{service: service}
}

// RegisterRoutes registers admin booking routes.
func (h *AdminBookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	admin := r.Group("/api/v1/admin")
	admin.Use(authMW, adminRole)
	{
		admin.GET("/bookings", h.ListBookings)
		admin.PUT("/bookings", h.UpdateBooking)
		admin.GET("/bookings/:id", h.GetBooking)
		admin.GET("/stats/bookings", h.BookingStats)
	}
}

// ListBookings handles GET /api/v1/admin/bookings.
func (h *AdminBookingHandler) ListBookings(c *gin.Context) {
	bookings, err := h.service.ListBookings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "bookings": bookings})
}

// UpdateBooking handles PUT /api/v1/admin/bookings.
func (h *AdminBookingHandler) UpdateBooking(c *gin.Context) {
	var req application.UpdateBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.UpdateStatus(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "booking": result})
}

// GetBooking handles GET /api/v1/admin/bookings/:id.
func (h *AdminBookingHandler) GetBooking(c *gin.Context) {
	result, err := h.service.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// BookingStats handles GET /api/v1/admin/stats/bookings.
func (h *AdminBookingHandler) BookingStats(c *gin.Context) {
	stats, err := h.service.BookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}
