package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Body is the envelope returned by every endpoint, success or failure.
type Body struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Success builds a successful envelope carrying data
func Success(data interface{}) Body {
	return Body{Success: true, Data: data}
}

// SuccessMessage builds a successful envelope with a message and data
func SuccessMessage(message string, data interface{}) Body {
	return Body{Success: true, Message: message, Data: data}
}

// Error builds a failed envelope carrying a message
func Error(message string) Body {
	return Body{Success: false, Message: message}
}

// ErrorData builds a failed envelope carrying a message and details,
// used for field-level validation failures.
func ErrorData(message string, data interface{}) Body {
	return Body{Success: false, Message: message, Data: data}
}

// Writers for the common status codes.

func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Success(data))
}

func OKMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, SuccessMessage(message, data))
}

func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, SuccessMessage(message, data))
}

func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Error(message))
}

func ValidationFailed(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusBadRequest, ErrorData("Validation failed", fields))
}

func NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, Error(message))
}

func Conflict(c *gin.Context, message string) {
	c.JSON(http.StatusConflict, Error(message))
}

func ServerError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, Error(message))
}
