package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/pyrecrest/service-booking/internal/application"
	"github.com/pyrecrest/service-booking/internal/common/auth"
	"github.com/pyrecrest/service-booking/internal/common/middleware"
	"github.com/pyrecrest/service-booking/internal/common/response"
)

// BlockedDateHandler handles admin HTTP requests for blocked date ranges.
type BlockedDateHandler struct {
	service *application.BlockedDateService
}

// NewBlockedDateHandler creates a new BlockedDateHandler.
func NewBlockedDateHandler(service *application.BlockedDateService) *BlockedDateHandler {
	return &BlockedDateHandler{service: service}
}

// RegisterRoutes registers all blocked date routes.
func (h *BlockedDateHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	blocked := r.Group("/api/v1/admin/blocked-dates")
	blocked.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleAdmin))
	{
		blocked.POST("", h.CreateBlockedDate)
		blocked.GET("", h.ListBlockedDates)
		blocked.DELETE("/:id", h.DeleteBlockedDate)
	}
}

// CreateBlockedDate handles POST /api/v1/admin/blocked-dates.
func (h *BlockedDateHandler) CreateBlockedDate(c *gin.Context) {
	email, ok := middleware.GetUserEmail(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req application.CreateBlockedDateRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.CreateBlockedDate(c.Request.Context(), email, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListBlockedDates handles GET /api/v1/admin/blocked-dates?propertyId=.
func (h *BlockedDateHandler) ListBlockedDates(c *gin.Context) {
	result, err := h.service.ListBlockedDates(c.Request.Context(), c.Query("propertyId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeleteBlockedDate handles DELETE /api/v1/admin/blocked-dates/:id.
func (h *BlockedDateHandler) DeleteBlockedDate(c *gin.Context) {
	if err := h.service.DeleteBlockedDate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, "blocked date removed")
}
