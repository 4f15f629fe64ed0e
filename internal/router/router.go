package router

import (
	"time"

	"github.com/DeLTa-X-Tunisia/Logi-Track-sub000/internal/checklist"
	"github.com/DeLTa-X-Tunisia/Logi-Track-sub000/internal/config"
	"github.com/DeLTa-X-Tunisia/Logi-Track-sub000/internal/handler"
	"github.com/DeLTa-X-Tunisia/Logi-Track-sub000/internal/middleware"
	"github.com/DeLTa-X-Tunisia/Logi-Track-sub000/internal/monitor"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter wires the gin engine, middleware and API routes.
func SetupRouter(cfg *config.Config, db *gorm.DB, svc *checklist.Service, mon *monitor.Monitor) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	api := r.Group("/api")

	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(cfg.JWT.Secret, db),
		middleware.AuditMiddleware(db),
	)

	protected.GET("/operators", handler.ListOperators(db))

	checklistHandler := handler.NewChecklistHandler(svc)
	cl := protected.Group("/checklists")
	cl.GET("/types", checklistHandler.ListTypes)
	cl.GET("/status", checklistHandler.Status)
	cl.GET("/types/:id/history", checklistHandler.History)
	cl.POST("/sessions", checklistHandler.StartSession)
	cl.GET("/sessions/:id", checklistHandler.GetSession)
	cl.PUT("/sessions/:id/items/:itemID", checklistHandler.RecordValidation)
	cl.POST("/sessions/:id/items/:itemID/reset", checklistHandler.ResetValidation)
	cl.POST("/sessions/:id/categories/:catID/validate-all", checklistHandler.ValidateAll)
	cl.POST("/sessions/:id/finalize", checklistHandler.Finalize)
	cl.DELETE("/sessions/:id", checklistHandler.DeleteSession)

	exportHandler := handler.NewExportHandler(db, svc)
	cl.GET("/types/:id/history/export", exportHandler.ExportHistoryXLSX)

	snoozeDefault := time.Duration(cfg.Monitor.SnoozeMinutes) * time.Minute
	alertHandler := handler.NewAlertHandler(mon, snoozeDefault)
	cl.GET("/alerts", alertHandler.Alerts)
	cl.POST("/alerts/:code/snooze", alertHandler.Snooze)

	return r
}
