package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/DeLTa-X-Tunisia/Logi-Track-sub000/internal/checklist"
	"github.com/DeLTa-X-Tunisia/Logi-Track-sub000/internal/models"
	"github.com/DeLTa-X-Tunisia/Logi-Track-sub000/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler produces XLSX downloads of a type's session history for
// quality reviews.
type ExportHandler struct {
	DB      *gorm.DB
	Service *checklist.Service
}

func NewExportHandler(db *gorm.DB, svc *checklist.Service) *ExportHandler {
	return &ExportHandler{DB: db, Service: svc}
}

// ExportHistoryXLSX writes the session history of a type as a spreadsheet.
func (h *ExportHandler) ExportHistoryXLSX(c *gin.Context) {
	typeID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var typ models.ChecklistType
	if err := h.DB.First(&typ, typeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "type not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		}
		return
	}

	entries, err := h.Service.History(typeID)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	f := excelize.NewFile()
	sheetName := "History"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "sheet creation failed")
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"#", "Status", "Operator", "Started", "Validated", "Expires",
		"Conforme", "Non conforme", "Corrected", "Total items", "Duration (min)"}
	for i, title := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, title)
	}

	formatTime := func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("2006-01-02 15:04")
	}

	for idx, e := range entries {
		row := idx + 2
		values := []interface{}{
			e.Numero,
			e.Status,
			e.Valideur,
			e.StartedAt.Format("2006-01-02 15:04"),
			formatTime(e.ValidatedAt),
			formatTime(e.ExpiresAt),
			e.Conformes,
			e.NonConformes,
			e.Corriges,
			e.TotalItems,
			e.DurationMins,
		}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(sheetName, cell, v)
		}
	}

	f.SetColWidth(sheetName, "B", "B", 14)
	f.SetColWidth(sheetName, "C", "C", 22)
	f.SetColWidth(sheetName, "D", "F", 18)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"checklist_%s_%s.xlsx\"",
		typ.Code, time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "export failed")
	}
}
