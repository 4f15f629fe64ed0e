package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/DeLTa-X-Tunisia/Logi-Track-sub000/internal/models"
	"github.com/DeLTa-X-Tunisia/Logi-Track-sub000/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CurrentOperatorKey is the gin context key holding the resolved operator.
const CurrentOperatorKey = "currentOperator"

// AuthMiddleware verifies the bearer token and puts the calling operator in
// the context. The token may also arrive as ?token= (downloads) or as the
// lt_token cookie.
func AuthMiddleware(jwtSecret string, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenStr string

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenStr = parts[1]
			}
		}
		if tokenStr == "" {
			tokenStr = c.Query("token")
		}
		if tokenStr == "" {
			if cookie, err := c.Cookie("lt_token"); err == nil {
				tokenStr = cookie
			}
		}

		if tokenStr == "" {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "authentication required")
			c.Abort()
			return
		}

		claims, err := util.ParseToken(jwtSecret, tokenStr)
		if err != nil || claims.ExpiresAt == nil || claims.ExpiresAt.Before(time.Now()) {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "token expired, please sign in again")
			c.Abort()
			return
		}

		var operator models.Operator
		if err := db.First(&operator, claims.OperatorID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				util.Error(c, http.StatusUnauthorized, util.CodeAuth, "unknown operator")
			} else {
				util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "operator lookup failed")
			}
			c.Abort()
			return
		}
		if !operator.Active {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "operator deactivated")
			c.Abort()
			return
		}

		c.Set(CurrentOperatorKey, &operator)
		c.Next()
	}
}

// CurrentOperator extracts the operator placed by AuthMiddleware, or nil.
func CurrentOperator(c *gin.Context) *models.Operator {
	v, ok := c.Get(CurrentOperatorKey)
	if !ok {
		return nil
	}
	op, ok := v.(*models.Operator)
	if !ok {
		return nil
	}
	return op
}
