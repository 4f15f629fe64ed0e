package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/DeLTa-X-Tunisia/Logi-Track-sub000/internal/checklist"
	"github.com/DeLTa-X-Tunisia/Logi-Track-sub000/internal/middleware"
	"github.com/DeLTa-X-Tunisia/Logi-Track-sub000/internal/util"

	"github.com/gin-gonic/gin"
)

// ChecklistHandler exposes the periodic checklist engine.
type ChecklistHandler struct {
	Service *checklist.Service
}

func NewChecklistHandler(svc *checklist.Service) *ChecklistHandler {
	return &ChecklistHandler{Service: svc}
}

// respondEngineError maps the engine's error taxonomy onto the response
// envelope. AlreadyFinalized is a conflict, not a failure: the desired end
// state was reached by someone else.
func respondEngineError(c *gin.Context, err error) {
	var critical *checklist.CriticalItemsError
	switch {
	case errors.Is(err, checklist.ErrNotFound):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "not found")
	case errors.Is(err, checklist.ErrSessionClosed):
		util.Error(c, http.StatusBadRequest, util.CodeSessionClosed, "session is closed, start a new one")
	case errors.Is(err, checklist.ErrItemMismatch):
		util.Error(c, http.StatusBadRequest, util.CodeItemMismatch, "item does not belong to this checklist")
	case errors.Is(err, checklist.ErrAlreadyFinalized):
		util.Error(c, http.StatusConflict, util.CodeConflict, "session already validated")
	case errors.Is(err, checklist.ErrInvalidStatus),
		errors.Is(err, checklist.ErrDefectRequired),
		errors.Is(err, checklist.ErrCorrectiveRequired):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
	case errors.As(err, &critical):
		util.ErrorWithData(c, http.StatusBadRequest, util.CodeCritical,
			"critical items unresolved", gin.H{
				"count": len(critical.Items),
				"items": critical.Items,
			})
	default:
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
	}
}

func currentOperatorID(c *gin.Context) *uint {
	if op := middleware.CurrentOperator(c); op != nil {
		id := op.ID
		return &id
	}
	return nil
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || n == 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid "+name)
		return 0, false
	}
	return uint(n), true
}

// ---------- type registry ----------

// ListTypes returns the active checklist types with counters and read-time
// validity.
func (h *ChecklistHandler) ListTypes(c *gin.Context) {
	types, err := h.Service.ListTypes()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}
	util.Success(c, util.Response{
		"types": types,
	})
}

// Status is the global production gate.
func (h *ChecklistHandler) Status(c *gin.Context) {
	status, err := h.Service.Status()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}
	util.Success(c, util.Response{
		"debut_quart_valide": status.ShiftStartValid,
		"peut_produire":      status.CanProduce,
	})
}

// ---------- sessions ----------

type startSessionReq struct {
	TypeID     uint  `json:"type_id" binding:"required"`
	OperatorID *uint `json:"operateur_id"`
}

// StartSession opens a new certification attempt.
func (h *ChecklistHandler) StartSession(c *gin.Context) {
	var req startSessionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	operatorID := req.OperatorID
	if operatorID == nil {
		operatorID = currentOperatorID(c)
	}

	session, err := h.Service.StartSession(req.TypeID, operatorID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	util.Success(c, util.Response{
		"session_id": session.ID,
	})
}

// GetSession returns the full session view with stats.
func (h *ChecklistHandler) GetSession(c *gin.Context) {
	detail, err := h.Service.GetSession(c.Param("id"))
	if err != nil {
		respondEngineError(c, err)
		return
	}
	util.Success(c, util.Response{
		"session":    detail.Session,
		"type_code":  detail.TypeCode,
		"type_nom":   detail.TypeName,
		"frequence":  detail.Frequency,
		"operateur":  detail.Operateur,
		"categories": detail.Categories,
		"stats":      detail.Stats,
	})
}

// DeleteSession is the administrative purge.
func (h *ChecklistHandler) DeleteSession(c *gin.Context) {
	if err := h.Service.DeleteSession(c.Param("id")); err != nil {
		respondEngineError(c, err)
		return
	}
	util.Success(c, util.Response{
		"message": "session deleted",
	})
}

// ---------- validation ledger ----------

type recordValidationReq struct {
	Status     string `json:"statut" binding:"required"`
	Defect     string `json:"defaut_detecte"`
	Corrective string `json:"action_corrective"`
	Comment    string `json:"commentaire" binding:"max=2000"`
}

// RecordValidation upserts the resolution of one item.
func (h *ChecklistHandler) RecordValidation(c *gin.Context) {
	itemID, ok := parseUintParam(c, "itemID")
	if !ok {
		return
	}
	var req recordValidationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	validation, err := h.Service.RecordValidation(checklist.RecordInput{
		SessionID:  c.Param("id"),
		ItemID:     itemID,
		Status:     checklist.ValidationStatus(req.Status),
		Defect:     req.Defect,
		Corrective: req.Corrective,
		Comment:    req.Comment,
		OperatorID: currentOperatorID(c),
	})
	if err != nil {
		respondEngineError(c, err)
		return
	}
	util.Success(c, util.Response{
		"validation": validation,
	})
}

// ResetValidation puts an item back to non_verifie; history fields stay.
func (h *ChecklistHandler) ResetValidation(c *gin.Context) {
	itemID, ok := parseUintParam(c, "itemID")
	if !ok {
		return
	}
	validation, err := h.Service.ResetValidation(c.Param("id"), itemID, currentOperatorID(c))
	if err != nil {
		respondEngineError(c, err)
		return
	}
	util.Success(c, util.Response{
		"validation": validation,
	})
}

// ValidateAll marks every unresolved item of a category conforme.
// Best-effort: reports how many items were written even when a later one
// failed.
func (h *ChecklistHandler) ValidateAll(c *gin.Context) {
	categoryID, ok := parseUintParam(c, "catID")
	if !ok {
		return
	}
	done, err := h.Service.ValidateAllUnresolved(c.Param("id"), categoryID, currentOperatorID(c))
	if err != nil {
		if done == 0 {
			respondEngineError(c, err)
			return
		}
		util.ErrorWithData(c, http.StatusBadRequest, util.CodeInvalidParam,
			"bulk validation aborted", gin.H{"validated": done})
		return
	}
	util.Success(c, util.Response{
		"validated": done,
	})
}

// ---------- finalization ----------

// Finalize runs the gate and, on pass, stamps the session validated. Losing
// a finalize race returns the already-validated session so the caller can
// treat the conflict as reached-by-someone-else.
func (h *ChecklistHandler) Finalize(c *gin.Context) {
	id := c.Param("id")
	session, err := h.Service.FinalizeSession(id)
	if errors.Is(err, checklist.ErrAlreadyFinalized) {
		if detail, gerr := h.Service.GetSession(id); gerr == nil {
			util.ErrorWithData(c, http.StatusConflict, util.CodeConflict,
				"session already validated", gin.H{"session": detail.Session})
			return
		}
	}
	if err != nil {
		respondEngineError(c, err)
		return
	}
	util.Success(c, util.Response{
		"session": session,
		"message": "checklist validated",
	})
}

// ---------- history ----------

// History lists the past sessions of a type.
func (h *ChecklistHandler) History(c *gin.Context) {
	typeID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	entries, err := h.Service.History(typeID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	util.Success(c, util.Response{
		"sessions": entries,
	})
}
