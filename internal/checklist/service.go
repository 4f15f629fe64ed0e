package checklist

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/DeLTa-X-Tunisia/Logi-Track-sub000/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service owns the checklist engine: type registry reads, session lifecycle,
// the validation ledger and the finalization gate. All timing decisions go
// through s.now so tests can pin the clock.
type Service struct {
	DB  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db, now: time.Now}
}

// ---------- type registry ----------

// SessionSummary is the condensed view of the latest validated session
// attached to a type listing.
type SessionSummary struct {
	ID          string     `json:"id"`
	ValidatedAt *time.Time `json:"date_validation"`
	ExpiresAt   *time.Time `json:"date_expiration"`
	Valideur    string     `json:"valideur"`
}

// TypeOverview is one row of ListTypes: the type, its denormalized item
// counters and its computed validity.
type TypeOverview struct {
	models.ChecklistType
	TotalItems         int64           `json:"total_items"`
	TotalCriticalItems int64           `json:"total_critiques"`
	LastSession        *SessionSummary `json:"derniere_session"`
	IsValid            bool            `json:"est_valide"`
	ExpiringSoon       bool            `json:"expire_bientot"`
	ExpiresInHours     int             `json:"expire_dans"`
}

// ListTypes returns the active checklist types in display order with item
// counters and read-time validity. A type with zero active items is valid
// configuration but can never have a gate-passing session.
func (s *Service) ListTypes() ([]TypeOverview, error) {
	var types []models.ChecklistType
	if err := s.DB.Where("active = ?", true).
		Order("display_order ASC, id ASC").
		Find(&types).Error; err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]TypeOverview, 0, len(types))
	for i := range types {
		typ := &types[i]

		var total, critical int64
		itemBase := s.DB.Model(&models.Item{}).
			Joins("JOIN categories ON categories.id = items.category_id").
			Where("categories.type_id = ? AND items.active = ? AND categories.active = ?", typ.ID, true, true)
		if err := itemBase.Session(&gorm.Session{}).Count(&total).Error; err != nil {
			return nil, err
		}
		if err := itemBase.Session(&gorm.Session{}).
			Where("items.critical = ?", true).Count(&critical).Error; err != nil {
			return nil, err
		}

		last, err := s.latestValidatedSession(typ.ID)
		if err != nil {
			return nil, err
		}

		ov := TypeOverview{
			ChecklistType:      *typ,
			TotalItems:         total,
			TotalCriticalItems: critical,
		}
		validity := Evaluate(typ, last, now)
		ov.IsValid = validity.IsValid()
		ov.ExpiringSoon = validity.ExpiringSoon
		ov.ExpiresInHours = validity.ExpiresInHours()
		if last != nil {
			ov.LastSession = &SessionSummary{
				ID:          last.ID,
				ValidatedAt: last.ValidatedAt,
				ExpiresAt:   last.ExpiresAt,
				Valideur:    last.Operator.FullName(),
			}
		}
		out = append(out, ov)
	}
	return out, nil
}

// latestValidatedSession returns the most recent validated session of a
// type, or nil if the checklist has never been completed.
func (s *Service) latestValidatedSession(typeID uint) (*models.Session, error) {
	var session models.Session
	err := s.DB.Preload("Operator").
		Where("type_id = ? AND status = ?", typeID, string(SessionValidated)).
		Order("validated_at DESC").
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ListCategoriesWithItems returns the ordered active categories of a type,
// each carrying its ordered active items. Read-only, no side effects.
func (s *Service) ListCategoriesWithItems(typeID uint) ([]models.Category, error) {
	var typ models.ChecklistType
	if err := s.DB.First(&typ, typeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var categories []models.Category
	if err := s.DB.
		Where("type_id = ? AND active = ?", typeID, true).
		Order("display_order ASC, id ASC").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Where("active = ?", true).Order("display_order ASC, id ASC")
		}).
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// ProductionStatus is the global gate consumed by the production screens:
// casting may not start unless the shift-start checklist is current.
type ProductionStatus struct {
	ShiftStartValid bool `json:"debut_quart_valide"`
	CanProduce      bool `json:"peut_produire"`
}

// Status reports whether production may proceed right now.
func (s *Service) Status() (ProductionStatus, error) {
	var typ models.ChecklistType
	err := s.DB.Where("code = ?", string(FreqShiftStart)).First(&typ).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ProductionStatus{}, nil
	}
	if err != nil {
		return ProductionStatus{}, err
	}
	last, err := s.latestValidatedSession(typ.ID)
	if err != nil {
		return ProductionStatus{}, err
	}
	valid := Evaluate(&typ, last, s.now()).IsValid()
	return ProductionStatus{ShiftStartValid: valid, CanProduce: valid}, nil
}

// ---------- session manager ----------

// StartSession opens a new in_progress session for an active type. The
// operator is optional but recorded if given. Multiple in-progress sessions
// per type may coexist; the engine does not forbid it.
func (s *Service) StartSession(typeID uint, operatorID *uint) (*models.Session, error) {
	var typ models.ChecklistType
	if err := s.DB.First(&typ, typeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !typ.Active {
		return nil, ErrNotFound
	}

	session := models.Session{
		ID:         uuid.NewString(),
		TypeID:     typ.ID,
		OperatorID: operatorID,
		Status:     string(SessionInProgress),
		StartedAt:  s.now(),
	}
	if err := s.DB.Create(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// ValidationView is a ledger row enriched with the resolver's name.
type ValidationView struct {
	models.Validation
	Valideur string `json:"valideur,omitempty"`
}

// ItemDetail is one item of the session view with its validation, if any.
type ItemDetail struct {
	ID          uint            `json:"id"`
	Code        string          `json:"code"`
	Label       string          `json:"libelle"`
	Description string          `json:"description,omitempty"`
	Critical    bool            `json:"critique"`
	Validation  *ValidationView `json:"validation"`
}

// CategoryDetail groups the session view's items.
type CategoryDetail struct {
	ID    uint         `json:"id"`
	Code  string       `json:"code"`
	Name  string       `json:"nom"`
	Order int          `json:"ordre"`
	Items []ItemDetail `json:"items"`
}

// SessionStats are the derived counters of one session.
type SessionStats struct {
	Total               int  `json:"total"`
	Conformes           int  `json:"conformes"`
	NonConformes        int  `json:"non_conformes"`
	Corriges            int  `json:"corriges"`
	NonVerifies         int  `json:"non_verifies"`
	Progression         int  `json:"progression"`
	CritiquesNonValides int  `json:"critiques_non_valides"`
	PeutValider         bool `json:"peut_valider"`
	DejaValidee         bool `json:"deja_validee"`
	EstExpiree          bool `json:"est_expiree"`
}

// SessionDetail is the full session view: session, template tree with
// validations, stats.
type SessionDetail struct {
	Session    models.Session   `json:"session"`
	TypeCode   string           `json:"type_code"`
	TypeName   string           `json:"type_nom"`
	Frequency  string           `json:"frequence"`
	Operateur  string           `json:"operateur_nom,omitempty"`
	Categories []CategoryDetail `json:"categories"`
	Stats      SessionStats     `json:"stats"`
}

// GetSession returns a session with its full category/item/validation join
// and derived statistics.
func (s *Service) GetSession(id string) (*SessionDetail, error) {
	var session models.Session
	err := s.DB.Preload("Type").Preload("Operator").
		Where("id = ?", id).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	categories, err := s.ListCategoriesWithItems(session.TypeID)
	if err != nil {
		return nil, err
	}

	var validations []models.Validation
	if err := s.DB.Where("session_id = ?", id).Find(&validations).Error; err != nil {
		return nil, err
	}
	byItem := make(map[uint]*models.Validation, len(validations))
	for i := range validations {
		byItem[validations[i].ItemID] = &validations[i]
	}

	// resolver names for the ledger rows
	resolvers := make(map[uint]string)
	for _, v := range validations {
		if v.ResolvedBy != nil {
			resolvers[*v.ResolvedBy] = ""
		}
	}
	if len(resolvers) > 0 {
		ids := make([]uint, 0, len(resolvers))
		for opID := range resolvers {
			ids = append(ids, opID)
		}
		var ops []models.Operator
		if err := s.DB.Where("id IN ?", ids).Find(&ops).Error; err != nil {
			return nil, err
		}
		for i := range ops {
			resolvers[ops[i].ID] = ops[i].FullName()
		}
	}

	detail := &SessionDetail{
		Session:   session,
		TypeCode:  session.Type.Code,
		TypeName:  session.Type.Name,
		Frequency: session.Type.Frequency,
		Operateur: session.Operator.FullName(),
	}

	stats := SessionStats{}
	for _, cat := range categories {
		cd := CategoryDetail{ID: cat.ID, Code: cat.Code, Name: cat.Name, Order: cat.DisplayOrder}
		for _, item := range cat.Items {
			stats.Total++
			it := ItemDetail{
				ID:          item.ID,
				Code:        item.Code,
				Label:       item.Label,
				Description: item.Description,
				Critical:    item.Critical,
			}
			status := StatusUnverified
			if v, ok := byItem[item.ID]; ok {
				status = ValidationStatus(v.Status)
				view := &ValidationView{Validation: *v}
				if v.ResolvedBy != nil {
					view.Valideur = resolvers[*v.ResolvedBy]
				}
				it.Validation = view
			}
			switch status {
			case StatusConforme:
				stats.Conformes++
			case StatusCorrected:
				stats.Corriges++
			case StatusNonConforme:
				stats.NonConformes++
			case StatusUnverified:
				stats.NonVerifies++
			}
			if item.Critical && !status.Resolved() {
				stats.CritiquesNonValides++
			}
			cd.Items = append(cd.Items, it)
		}
		detail.Categories = append(detail.Categories, cd)
	}

	if stats.Total > 0 {
		stats.Progression = int(math.Round(100 * float64(stats.Conformes+stats.Corriges) / float64(stats.Total)))
	}
	now := s.now()
	stats.DejaValidee = session.Status == string(SessionValidated)
	if stats.DejaValidee {
		stats.EstExpiree = session.ExpiresAt != nil && session.ExpiresAt.Before(now)
	} else {
		stats.EstExpiree = PastDeadline(&session, session.Type.ValidityDurationHrs, now)
	}
	stats.PeutValider = stats.CritiquesNonValides == 0 &&
		session.Status == string(SessionInProgress) &&
		!stats.EstExpiree
	detail.Stats = stats

	return detail, nil
}

// DeleteSession is the administrative purge: irreversible, cascades to the
// session's validations. The whole cascade runs in one transaction so a
// delete cannot race an in-flight validation write.
func (s *Service) DeleteSession(id string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var session models.Session
		if err := tx.Where("id = ?", id).First(&session).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Where("session_id = ?", id).Delete(&models.Validation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&session).Error
	})
}

// ---------- validation ledger ----------

// RecordInput carries one ledger write.
type RecordInput struct {
	SessionID  string
	ItemID     uint
	Status     ValidationStatus
	Defect     string
	Corrective string
	Comment    string
	OperatorID *uint
}

// RecordValidation upserts the resolution of one item within one session.
// The session must still be open; the item must belong to the session's
// type. non_conforme requires a defect description, corrige requires a
// corrective action and stamps corrected_at/corrected_by. Prior defect and
// corrective text is retained for audit when the status moves on.
func (s *Service) RecordValidation(in RecordInput) (*models.Validation, error) {
	if !in.Status.IsValid() {
		return nil, ErrInvalidStatus
	}
	switch in.Status {
	case StatusNonConforme:
		if strings.TrimSpace(in.Defect) == "" {
			return nil, ErrDefectRequired
		}
	case StatusCorrected:
		if strings.TrimSpace(in.Corrective) == "" {
			return nil, ErrCorrectiveRequired
		}
	}

	session, err := s.openSession(s.DB, in.SessionID)
	if err != nil {
		return nil, err
	}

	if err := s.checkItemBelongs(in.ItemID, session.TypeID); err != nil {
		return nil, err
	}

	now := s.now()
	var validation models.Validation
	err = s.DB.Where("session_id = ? AND item_id = ?", in.SessionID, in.ItemID).
		First(&validation).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		validation = models.Validation{SessionID: in.SessionID, ItemID: in.ItemID}
	}

	validation.Status = string(in.Status)
	validation.ResolvedAt = &now
	validation.ResolvedBy = in.OperatorID
	if in.Comment != "" {
		validation.Comment = in.Comment
	}
	// history fields are only ever overwritten, never cleared
	if in.Defect != "" {
		validation.Defect = in.Defect
	}
	if in.Corrective != "" {
		validation.Corrective = in.Corrective
	}
	if in.Status == StatusCorrected {
		validation.CorrectedAt = &now
		validation.CorrectedBy = in.OperatorID
	}

	if err := s.DB.Save(&validation).Error; err != nil {
		return nil, err
	}
	return &validation, nil
}

// ResetValidation undoes a resolution: status back to non_verifie, history
// fields kept.
func (s *Service) ResetValidation(sessionID string, itemID uint, operatorID *uint) (*models.Validation, error) {
	return s.RecordValidation(RecordInput{
		SessionID:  sessionID,
		ItemID:     itemID,
		Status:     StatusUnverified,
		OperatorID: operatorID,
	})
}

// ValidateAllUnresolved marks every unresolved item of a category conforme.
// Sugar over repeated single-item writes: non-atomic, best-effort. Returns
// how many items were written; on error the count covers the writes that
// succeeded before the abort.
func (s *Service) ValidateAllUnresolved(sessionID string, categoryID uint, operatorID *uint) (int, error) {
	session, err := s.openSession(s.DB, sessionID)
	if err != nil {
		return 0, err
	}

	var category models.Category
	if err := s.DB.Where("id = ? AND type_id = ?", categoryID, session.TypeID).
		First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}

	var items []models.Item
	if err := s.DB.
		Where("category_id = ? AND active = ?", categoryID, true).
		Order("display_order ASC, id ASC").
		Find(&items).Error; err != nil {
		return 0, err
	}

	done := 0
	for _, item := range items {
		var existing models.Validation
		err := s.DB.Where("session_id = ? AND item_id = ?", sessionID, item.ID).
			First(&existing).Error
		if err == nil && ValidationStatus(existing.Status).Resolved() {
			continue
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return done, err
		}
		if _, err := s.RecordValidation(RecordInput{
			SessionID:  sessionID,
			ItemID:     item.ID,
			Status:     StatusConforme,
			OperatorID: operatorID,
		}); err != nil {
			return done, err
		}
		done++
	}
	return done, nil
}

// openSession loads a session and rejects writes when it is validated,
// explicitly expired, or past its completion deadline.
func (s *Service) openSession(db *gorm.DB, id string) (*models.Session, error) {
	var session models.Session
	err := db.Preload("Type").Where("id = ?", id).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if session.Status != string(SessionInProgress) {
		return nil, ErrSessionClosed
	}
	if PastDeadline(&session, session.Type.ValidityDurationHrs, s.now()) {
		return nil, ErrSessionClosed
	}
	return &session, nil
}

func (s *Service) checkItemBelongs(itemID, typeID uint) error {
	var item models.Item
	err := s.DB.First(&item, itemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	var count int64
	if err := s.DB.Model(&models.Category{}).
		Where("id = ? AND type_id = ?", item.CategoryID, typeID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrItemMismatch
	}
	return nil
}

// ---------- finalization gate ----------

// FinalizeSession runs the gate: every critical active item of the session's
// type must carry a conforme or corrige validation. On pass it stamps
// status/validated_at/expires_at in one shot; this is the only place
// expires_at is ever written. The check-then-set is a transaction plus a
// compare-and-swap on status, so a concurrent finalize observes the flip and
// fails with ErrAlreadyFinalized instead of double-stamping.
func (s *Service) FinalizeSession(id string) (*models.Session, error) {
	var result models.Session
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var session models.Session
		err := tx.Preload("Type").Where("id = ?", id).First(&session).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if session.Status == string(SessionValidated) {
			return ErrAlreadyFinalized
		}
		if session.Status != string(SessionInProgress) {
			return ErrSessionClosed
		}
		now := s.now()
		if PastDeadline(&session, session.Type.ValidityDurationHrs, now) {
			return ErrSessionClosed
		}

		var unresolved []ItemRef
		if err := tx.Table("items").
			Select("items.id AS id, items.code AS code, items.label AS label").
			Joins("JOIN categories ON categories.id = items.category_id").
			Joins("LEFT JOIN validations ON validations.item_id = items.id AND validations.session_id = ?", id).
			Where("categories.type_id = ? AND items.active = ? AND items.critical = ?", session.TypeID, true, true).
			Where("validations.status IS NULL OR validations.status NOT IN ?",
				[]string{string(StatusConforme), string(StatusCorrected)}).
			Order("categories.display_order ASC, items.display_order ASC").
			Scan(&unresolved).Error; err != nil {
			return err
		}
		if len(unresolved) > 0 {
			return &CriticalItemsError{Items: unresolved}
		}

		expiresAt := now.Add(time.Duration(session.Type.ValidityDurationHrs) * time.Hour)
		res := tx.Model(&models.Session{}).
			Where("id = ? AND status = ?", id, string(SessionInProgress)).
			Updates(map[string]interface{}{
				"status":       string(SessionValidated),
				"validated_at": now,
				"expires_at":   expiresAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyFinalized
		}

		session.Status = string(SessionValidated)
		session.ValidatedAt = &now
		session.ExpiresAt = &expiresAt
		result = session
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ---------- history ----------

// HistoryEntry is one past session of a type with aggregate counts.
type HistoryEntry struct {
	models.Session
	Numero       int    `json:"numero"`
	Valideur     string `json:"valideur"`
	Conformes    int64  `json:"conformes"`
	NonConformes int64  `json:"non_conformes"`
	Corriges     int64  `json:"corriges"`
	TotalItems   int64  `json:"total_items"`
	DurationMins int64  `json:"duree_minutes"`
}

// History returns the last 50 sessions of a type, newest first, numbered in
// chronological order of creation.
func (s *Service) History(typeID uint) ([]HistoryEntry, error) {
	var typ models.ChecklistType
	if err := s.DB.First(&typ, typeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var totalItems int64
	if err := s.DB.Model(&models.Item{}).
		Joins("JOIN categories ON categories.id = items.category_id").
		Where("categories.type_id = ? AND items.active = ?", typeID, true).
		Count(&totalItems).Error; err != nil {
		return nil, err
	}

	var sessions []models.Session
	if err := s.DB.Preload("Operator").
		Where("type_id = ?", typeID).
		Order("created_at ASC, id ASC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}

	type statusCount struct {
		SessionID string
		Status    string
		N         int64
	}
	var counts []statusCount
	if len(sessions) > 0 {
		ids := make([]string, len(sessions))
		for i := range sessions {
			ids[i] = sessions[i].ID
		}
		if err := s.DB.Model(&models.Validation{}).
			Select("session_id, status, COUNT(*) AS n").
			Where("session_id IN ?", ids).
			Group("session_id").Group("status").
			Scan(&counts).Error; err != nil {
			return nil, err
		}
	}
	bySession := make(map[string]map[string]int64)
	for _, c := range counts {
		m, ok := bySession[c.SessionID]
		if !ok {
			m = make(map[string]int64)
			bySession[c.SessionID] = m
		}
		m[c.Status] = c.N
	}

	now := s.now()
	entries := make([]HistoryEntry, 0, len(sessions))
	for i := range sessions {
		sess := sessions[i]
		m := bySession[sess.ID]
		end := now
		if sess.ValidatedAt != nil {
			end = *sess.ValidatedAt
		}
		entries = append(entries, HistoryEntry{
			Session:      sess,
			Numero:       i + 1,
			Valideur:     sess.Operator.FullName(),
			Conformes:    m[string(StatusConforme)],
			NonConformes: m[string(StatusNonConforme)],
			Corriges:     m[string(StatusCorrected)],
			TotalItems:   totalItems,
			DurationMins: int64(end.Sub(sess.StartedAt) / time.Minute),
		})
	}

	// newest first, 50 max
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if len(entries) > 50 {
		entries = entries[:50]
	}
	return entries, nil
}
