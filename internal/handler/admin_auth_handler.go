package handler

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pyrecrest/service-booking/internal/application"
	"github.com/pyrecrest/service-booking/internal/common/response"
)

// AdminAuthHandler handles admin signup, approval and login.
type AdminAuthHandler struct {
	service *application.AdminService
}

// NewAdminAuthHandler creates a new AdminAuthHandler.
func NewAdminAuthHandler(service *application.AdminService) *AdminAuthHandler {
	return &AdminAuthHandler{service: service}
}

// RegisterRoutes registers the unauthenticated admin account routes.
func (h *AdminAuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	admin := r.Group("/api/v1/admin")
	{
		admin.POST("/signup", h.Signup)
		admin.POST("/login", h.Login)
		admin.GET("/approve", h.Approve)
	}
}

// Signup handles POST /api/v1/admin/signup.
func (h *AdminAuthHandler) Signup(c *gin.Context) {
	var req application.SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.service.Signup(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Signup request submitted. You will receive an email once your account is approved.",
	})
}

// Login handles POST /api/v1/admin/login.
func (h *AdminAuthHandler) Login(c *gin.Context) {
	var req application.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Approve handles GET /api/v1/admin/approve?token= and answers with a small HTML page.
func (h *AdminAuthHandler) Approve(c *gin.Context) {
	result, err := h.service.Approve(c.Request.Context(), c.Query("token"))
	if err != nil {
		status, message := response.Classify(err)
		title := "Approval Failed"
		switch status {
		case http.StatusBadRequest:
			title = "Invalid or Expired Link"
		case http.StatusNotFound:
			title, message = "Admin Not Found", "No admin account was found for this email address."
		case http.StatusInternalServerError:
			_ = c.Error(err)
			message = "An error occurred while processing the approval. Please try again."
		}
		renderApprovalPage(c, status, title, message, false)
		return
	}

	a := result.Admin
	if result.AlreadyApproved {
		renderApprovalPage(c, http.StatusOK, "Already Approved", a.Name+" ("+a.Email+") has already been approved.", true)
		return
	}
	renderApprovalPage(c, http.StatusOK, "Admin Approved!",
		a.Name+" ("+a.Email+") has been approved and can now log in to the admin dashboard.", true)
}

var approvalPage = template.Must(template.New("approval").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}} - Pyrecrest</title>
  <style>
    body { font-family: Arial, sans-serif; margin: 0; background: #f3f4f6; display: flex; justify-content: center; align-items: center; min-height: 100vh; }
    .card { background: white; border-radius: 12px; padding: 40px; max-width: 480px; width: 90%; text-align: center; box-shadow: 0 4px 20px rgba(0,0,0,0.1); }
    .icon { width: 64px; height: 64px; border-radius: 50%; color: white; font-size: 32px; line-height: 64px; margin: 0 auto 20px; }
    .ok { background: #10B981; }
    .fail { background: #EF4444; }
    h1 { color: #1f2937; margin: 0 0 12px; font-size: 24px; }
    p { color: #6b7280; line-height: 1.6; margin: 0; }
  </style>
</head>
<body>
  <div class="card">
    {{if .Success}}<div class="icon ok">&#10003;</div>{{else}}<div class="icon fail">&#10007;</div>{{end}}
    <h1>{{.Title}}</h1>
    <p>{{.Message}}</p>
  </div>
</body>
</html>`))

func renderApprovalPage(c *gin.Context, status int, title, message string, success bool) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	_ = approvalPage.Execute(c.Writer, struct {
		Title   string
		Message string
		Success bool
	}{title, message, success})
}
