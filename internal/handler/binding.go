package handler

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/pyrecrest/service-booking/internal/common/response"
)

// bindJSON decodes the body into req and writes a 400 on failure. Required fields and date
// formats are checked by the services so that a missing field is reported before a bad date.
func bindJSON(c *gin.Context, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		response.BadRequest(c, "invalid request body")
		return false
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "max":
		response.BadRequest(c, fmt.Sprintf("%s is too long", fe.Field()))
	default:
		response.BadRequest(c, fmt.Sprintf("%s is invalid", fe.Field()))
	}
	return false
}
