package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/DeLTa-X-Tunisia/Logi-Track-sub000/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuditMiddleware records every authenticated mutating request as an
// AuditLog row after the handler ran. Reads are not logged.
func AuditMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var bodyBytes []byte
		if c.Request.Body != nil && c.Request.Method != http.MethodGet {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		c.Next()

		if c.Request.Method == http.MethodGet {
			return
		}
		op := CurrentOperator(c)
		if op == nil {
			return
		}

		path := c.Request.URL.Path
		action := c.Request.Method + " " + path
		if len(bodyBytes) > 0 && len(bodyBytes) < 2000 {
			action += " " + string(bodyBytes)
		}

		entry := models.AuditLog{
			OperatorID: &op.ID,
			Method:     c.Request.Method,
			Path:       path,
			Action:     action,
			IP:         c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
		}
		_ = db.Create(&entry).Error
	}
}
