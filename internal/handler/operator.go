package handler

import (
	"net/http"

	"github.com/DeLTa-X-Tunisia/Logi-Track-sub000/internal/models"
	"github.com/DeLTa-X-Tunisia/Logi-Track-sub000/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListOperators returns the active operators for session assignment.
func ListOperators(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var operators []models.Operator
		if err := db.
			Where("active = ?", true).
			Order("first_name ASC, last_name ASC").
			Find(&operators).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
			return
		}
		util.Success(c, util.Response{
			"operators": operators,
		})
	}
}
