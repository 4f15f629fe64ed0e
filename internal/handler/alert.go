package handler

import (
	"net/http"
	"time"

	"github.com/DeLTa-X-Tunisia/Logi-Track-sub000/internal/middleware"
	"github.com/DeLTa-X-Tunisia/Logi-Track-sub000/internal/monitor"
	"github.com/DeLTa-X-Tunisia/Logi-Track-sub000/internal/util"

	"github.com/gin-gonic/gin"
)

// AlertHandler exposes the compliance monitor: one synchronous poll per
// request plus the snooze toggle. Snoozes are scoped to the calling
// operator and live only in the monitor's process-local state.
type AlertHandler struct {
	Monitor       *monitor.Monitor
	SnoozeDefault time.Duration
}

func NewAlertHandler(m *monitor.Monitor, snoozeDefault time.Duration) *AlertHandler {
	if snoozeDefault <= 0 {
		snoozeDefault = time.Hour
	}
	return &AlertHandler{Monitor: m, SnoozeDefault: snoozeDefault}
}

func actorKey(c *gin.Context) string {
	if op := middleware.CurrentOperator(c); op != nil {
		return op.Badge
	}
	return ""
}

// Alerts returns the lapsed, non-snoozed types for the calling operator.
func (h *AlertHandler) Alerts(c *gin.Context) {
	lapsed := h.Monitor.Check(actorKey(c))
	util.Success(c, util.Response{
		"alerts": lapsed,
		"count":  len(lapsed),
	})
}

type snoozeReq struct {
	DurationMinutes int `json:"duree_minutes"`
}

// Snooze mutes alerts for one type code for the calling operator. It never
// touches the underlying session or validity data.
func (h *AlertHandler) Snooze(c *gin.Context) {
	typeCode := c.Param("code")
	if typeCode == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "missing type code")
		return
	}

	var req snoozeReq
	// body optional: default duration applies
	_ = c.ShouldBindJSON(&req)

	d := h.SnoozeDefault
	if req.DurationMinutes > 0 {
		d = time.Duration(req.DurationMinutes) * time.Minute
	}
	h.Monitor.Snooze(actorKey(c), typeCode, d)
	util.Success(c, util.Response{
		"snoozed_until": time.Now().Add(d),
	})
}
