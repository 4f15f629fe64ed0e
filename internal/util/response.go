package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the data payload of a successful reply.
type Response map[string]interface{}

// Business codes surfaced alongside the HTTP status.
const (
	CodeOK            = 0
	CodeInvalidParam  = 40001
	CodeSessionClosed = 40002
	CodeItemMismatch  = 40003
	CodeCritical      = 40004
	CodeAuth          = 40101
	CodeNotFound      = 40401
	CodeConflict      = 40901
	CodeServerErr     = 50001
)

// Success writes the uniform success envelope.
func Success(c *gin.Context, data Response) {
	c.JSON(http.StatusOK, gin.H{
		"code": CodeOK,
		"data": data,
	})
}

// Error writes the uniform error envelope.
func Error(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
	})
}

// ErrorWithData writes the error envelope with extra payload fields, e.g.
// the offending item list of a rejected finalization.
func ErrorWithData(c *gin.Context, httpStatus int, code int, msg string, extra gin.H) {
	body := gin.H{
		"code":    code,
		"message": msg,
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(httpStatus, body)
}
