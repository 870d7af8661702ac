package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"secondserving/internal/middleware"
)

func respondWithError(c *gin.Context, err error) {
	middleware.AbortWithError(c, err)
}

// respondValidationError renders binding failures as "field is required"
// style messages in the fail envelope.
func respondValidationError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			field := lowerCamel(fieldError.Field())
			switch fieldError.Tag() {
			case "required":
				details = append(details, fmt.Sprintf("%s is required", field))
			default:
				details = append(details, fmt.Sprintf("%s is invalid", field))
			}
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"status":  "fail",
			"message": strings.Join(details, ", "),
		})
		return
	}

	message := "Invalid request body"
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		message = "Request body is required"
	case errors.As(err, &typeErr):
		message = fmt.Sprintf("%s is invalid", typeErr.Field)
	case errors.As(err, &syntaxErr):
		message = "Request body is not valid JSON"
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"status": "fail", "message": message})
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// bindJSON binds the body into dst and answers 400 itself on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondValidationError(c, err)
		return false
	}
	return true
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"status": "success", "data": data})
}

func respondList(c *gin.Context, data interface{}, results int) {
	c.JSON(http.StatusOK, gin.H{"status": "success", "results": results, "data": data})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"status": "success", "message": message})
}
