package checklist

import (
	"errors"
	"testing"
	"time"

	"github.com/DeLTa-X-Tunisia/Logi-Track-sub000/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	// one connection: every gorm session must see the same :memory: database
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.Operator{},
		&models.ChecklistType{},
		&models.Category{},
		&models.Item{},
		&models.Session{},
		&models.Validation{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// fixture is a shift-start type with 5 items of which 3 are critical, plus a
// second type used for cross-type checks.
type fixture struct {
	db       *gorm.DB
	svc      *Service
	clock    *time.Time
	typ      models.ChecklistType
	safety   models.Category
	uncoiler models.Category
	// safety: crit1, crit2, minor1 — uncoiler: crit3, minor2
	crit1, crit2, crit3 models.Item
	minor1, minor2      models.Item
	otherType           models.ChecklistType
	otherItem           models.Item
	operator            models.Operator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	base := time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)

	f := &fixture{db: db, svc: NewService(db), clock: &base}
	f.svc.now = func() time.Time { return *f.clock }

	f.operator = models.Operator{FirstName: "Amine", LastName: "Trabelsi", Badge: "OP-042", Active: true}
	mustCreate(t, db, &f.operator)

	f.typ = models.ChecklistType{
		Code: "shift-start", Name: "Shift-Start Checklist",
		Frequency: string(FreqShiftStart), ValidityDurationHrs: 12,
		DisplayOrder: 1, Active: true,
	}
	mustCreate(t, db, &f.typ)

	f.safety = models.Category{TypeID: f.typ.ID, Code: "SAFETY", Name: "General Safety", DisplayOrder: 1, Active: true}
	mustCreate(t, db, &f.safety)
	f.uncoiler = models.Category{TypeID: f.typ.ID, Code: "UNCOILER", Name: "Uncoiling System", DisplayOrder: 2, Active: true}
	mustCreate(t, db, &f.uncoiler)

	f.crit1 = models.Item{CategoryID: f.safety.ID, Code: "SQ_01", Label: "Emergency stops tested", Critical: true, DisplayOrder: 1, Active: true}
	f.crit2 = models.Item{CategoryID: f.safety.ID, Code: "SQ_02", Label: "Safety barriers locked", Critical: true, DisplayOrder: 2, Active: true}
	f.minor1 = models.Item{CategoryID: f.safety.ID, Code: "SQ_04", Label: "Work area clean", Critical: false, DisplayOrder: 3, Active: true}
	f.crit3 = models.Item{CategoryID: f.uncoiler.ID, Code: "DQ_01", Label: "Mandrel visual inspection", Critical: true, DisplayOrder: 1, Active: true}
	f.minor2 = models.Item{CategoryID: f.uncoiler.ID, Code: "DQ_03", Label: "Entry guides wear", Critical: false, DisplayOrder: 2, Active: true}
	for _, item := range []*models.Item{&f.crit1, &f.crit2, &f.minor1, &f.crit3, &f.minor2} {
		mustCreate(t, db, item)
	}

	f.otherType = models.ChecklistType{
		Code: "weekly", Name: "Weekly Checklist",
		Frequency: string(FreqWeekly), ValidityDurationHrs: 168,
		DisplayOrder: 2, Active: true,
	}
	mustCreate(t, db, &f.otherType)
	otherCat := models.Category{TypeID: f.otherType.ID, Code: "MECHANICAL", Name: "General Mechanics", DisplayOrder: 1, Active: true}
	mustCreate(t, db, &otherCat)
	f.otherItem = models.Item{CategoryID: otherCat.ID, Code: "MH_01", Label: "Belts inspection", Critical: true, DisplayOrder: 1, Active: true}
	mustCreate(t, db, &f.otherItem)

	return f
}

func mustCreate(t *testing.T, db *gorm.DB, value interface{}) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("create fixture %T: %v", value, err)
	}
}

func (f *fixture) advance(d time.Duration) {
	*f.clock = f.clock.Add(d)
}

func (f *fixture) startSession(t *testing.T) *models.Session {
	t.Helper()
	session, err := f.svc.StartSession(f.typ.ID, &f.operator.ID)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	return session
}

func (f *fixture) record(t *testing.T, sessionID string, itemID uint, status ValidationStatus) {
	t.Helper()
	_, err := f.svc.RecordValidation(RecordInput{
		SessionID: sessionID, ItemID: itemID, Status: status,
		Defect:     "defect placeholder",
		Corrective: "corrective placeholder",
		OperatorID: &f.operator.ID,
	})
	if err != nil {
		t.Fatalf("RecordValidation(%d, %s): %v", itemID, status, err)
	}
}

// resolveAllCritical marks every critical item conforme.
func (f *fixture) resolveAllCritical(t *testing.T, sessionID string) {
	t.Helper()
	for _, item := range []models.Item{f.crit1, f.crit2, f.crit3} {
		f.record(t, sessionID, item.ID, StatusConforme)
	}
}

// ---------- session manager ----------

func TestStartSession(t *testing.T) {
	f := newFixture(t)

	session := f.startSession(t)
	if session.Status != string(SessionInProgress) {
		t.Errorf("status = %q, want %q", session.Status, SessionInProgress)
	}
	if session.ID == "" {
		t.Error("session id is empty")
	}
	if !session.StartedAt.Equal(*f.clock) {
		t.Errorf("started_at = %v, want %v", session.StartedAt, *f.clock)
	}
	if session.ValidatedAt != nil || session.ExpiresAt != nil {
		t.Error("validated_at/expires_at set at creation, want nil until finalization")
	}
}

func TestStartSession_UnknownType(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.StartSession(9999, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("StartSession(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestStartSession_InactiveType(t *testing.T) {
	f := newFixture(t)
	f.db.Model(&f.typ).Update("active", false)

	if _, err := f.svc.StartSession(f.typ.ID, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("StartSession(inactive) error = %v, want ErrNotFound", err)
	}
}

func TestStartSession_ConcurrentAllowed(t *testing.T) {
	f := newFixture(t)

	first := f.startSession(t)
	second := f.startSession(t)
	if first.ID == second.ID {
		t.Error("two in-progress sessions share an id")
	}
}

func TestGetSession_Stats(t *testing.T) {
	f := newFixture(t)
	session := f.startSession(t)

	f.record(t, session.ID, f.crit1.ID, StatusConforme)
	f.record(t, session.ID, f.crit2.ID, StatusNonConforme)
	f.record(t, session.ID, f.crit3.ID, StatusCorrected)

	detail, err := f.svc.GetSession(session.ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}

	s := detail.Stats
	if s.Total != 5 {
		t.Errorf("total = %d, want 5", s.Total)
	}
	if s.Conformes != 1 || s.Corriges != 1 || s.NonConformes != 1 || s.NonVerifies != 2 {
		t.Errorf("counts = %d/%d/%d/%d, want 1/1/1/2",
			s.Conformes, s.Corriges, s.NonConformes, s.NonVerifies)
	}
	// progression = round(100 * (1+1)/5)
	if s.Progression != 40 {
		t.Errorf("progression = %d, want 40", s.Progression)
	}
	// crit2 is non_conforme: still blocks
	if s.CritiquesNonValides != 1 {
		t.Errorf("critiques_non_valides = %d, want 1", s.CritiquesNonValides)
	}
	if s.PeutValider {
		t.Error("peut_valider = true with a critical item non_conforme")
	}
	if s.DejaValidee || s.EstExpiree {
		t.Errorf("deja_validee/est_expiree = %v/%v, want false/false", s.DejaValidee, s.EstExpiree)
	}
	if len(detail.Categories) != 2 {
		t.Fatalf("categories = %d, want 2", len(detail.Categories))
	}
	if got := len(detail.Categories[0].Items); got != 3 {
		t.Errorf("first category items = %d, want 3", got)
	}
}

func TestGetSession_PastDeadline(t *testing.T) {
	f := newFixture(t)
	session := f.startSession(t)
	f.advance(13 * time.Hour)

	detail, err := f.svc.GetSession(session.ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if !detail.Stats.EstExpiree {
		t.Error("est_expiree = false for a session 13h past start with 12h validity")
	}
	if detail.Stats.PeutValider {
		t.Error("peut_valider = true for an expired session")
	}
}

func TestGetSession_NotFound(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.GetSession("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSession(missing) error = %v, want ErrNotFound", err)
	}
}

func TestDeleteSession_Cascades(t *testing.T) {
	f := newFixture(t)
	session := f.startSession(t)
	f.record(t, session.ID, f.crit1.ID, StatusConforme)

	if err := f.svc.DeleteSession(session.ID); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}

	var sessions, validations int64
	f.db.Model(&models.Session{}).Where("id = ?", session.ID).Count(&sessions)
	f.db.Model(&models.Validation{}).Where("session_id = ?", session.ID).Count(&validations)
	if sessions != 0 || validations != 0 {
		t.Errorf("after delete: sessions = %d, validations = %d, want 0/0", sessions, validations)
	}

	if err := f.svc.DeleteSession(session.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

// ---------- validation ledger ----------

func TestRecordValidation_DefectRequired(t *testing.T) {
	f := newFixture(t)
	session := f.startSession(t)

	_, err := f.svc.RecordValidation(RecordInput{
		SessionID: session.ID, ItemID: f.crit1.ID, Status: StatusNonConforme,
	})
	if !errors.Is(err, ErrDefectRequired) {
		t.Errorf("non_conforme without defect error = %v, want ErrDefectRequired", err)
	}
}

func TestRecordValidation_CorrectiveRequired(t *testing.T) {
	f := newFixture(t)
	session := f.startSession(t)

	_, err := f.svc.RecordValidation(RecordInput{
		SessionID: session.ID, ItemID: f.crit1.ID, Status: StatusCorrected,
	})
	if !errors.Is(err, ErrCorrectiveRequired) {
		t.Errorf("corrige without corrective error = %v, want ErrCorrectiveRequired", err)
	}
}

func TestRecordValidation_InvalidStatus(t *testing.T) {
	f := newFixture(t)
	session := f.startSession(t)

	_, err := f.svc.RecordValidation(RecordInput{
		SessionID: session.ID, ItemID: f.crit1.ID, Status: "bogus",
	})
	if !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("bogus status error = %v, want ErrInvalidStatus", err)
	}
}

func TestRecordValidation_ItemMismatch(t *testing.T) {
	f := newFixture(t)
	session := f.startSession(t)

	_, err := f.svc.RecordValidation(RecordInput{
		SessionID: session.ID, ItemID: f.otherItem.ID, Status: StatusConforme,
	})
	if !errors.Is(err, ErrItemMismatch) {
		t.Errorf("foreign item error = %v, want ErrItemMismatch", err)
	}

	_, err = f.svc.RecordValidation(RecordInput{
		SessionID: session.ID, ItemID: 9999, Status: StatusConforme,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown item error = %v, want ErrNotFound", err)
	}
}

func TestRecordValidation_Upsert(t *testing.T) {
	f := newFixture(t)
	session := f.startSession(t)

	first, err := f.svc.RecordValidation(RecordInput{
		SessionID: session.ID, ItemID: f.crit1.ID,
		Status: StatusNonConforme, Defect: "worn brake",
		OperatorID: &f.operator.ID,
	})
	if err != nil {
		t.Fatalf("first write: %v", err)
	}

	f.advance(10 * time.Minute)
	second, err := f.svc.RecordValidation(RecordInput{
		SessionID: session.ID, ItemID: f.crit1.ID,
		Status: StatusCorrected, Corrective: "brake replaced",
		OperatorID: &f.operator.ID,
	})
	if err != nil {
		t.Fatalf("second write: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("upsert created a second row: %d then %d", first.ID, second.ID)
	}
	// both narratives carried on the final record
	if second.Defect != "worn brake" {
		t.Errorf("defect = %q, want it retained", second.Defect)
	}
	if second.Corrective != "brake replaced" {
		t.Errorf("corrective = %q", second.Corrective)
	}
	if second.CorrectedAt == nil || !second.CorrectedAt.Equal(*f.clock) {
		t.Errorf("corrected_at = %v, want %v", second.CorrectedAt, *f.clock)
	}

	var count int64
	f.db.Model(&models.Validation{}).
		Where("session_id = ? AND item_id = ?", session.ID, f.crit1.ID).
		Count(&count)
	if count != 1 {
		t.Errorf("validation rows = %d, want 1", count)
	}
}

func TestRecordValidation_ClosedSession(t *testing.T) {
	f := newFixture(t)
	session := f.startSession(t)
	f.resolveAllCritical(t, session.ID)
	if _, err := f.svc.FinalizeSession(session.ID); err != nil {
		t.Fatalf("FinalizeSession: %v", err)
	}

	_, err := f.svc.RecordValidation(RecordInput{
		SessionID: session.ID, ItemID: f.minor1.ID, Status: StatusConforme,
	})
	if !errors.Is(err, ErrSessionClosed) {
		t.Errorf("write to validated session error = %v, want ErrSessionClosed", err)
	}
}

func TestRecordValidation_DeadlinePassed(t *testing.T) {
	f := newFixture(t)
	session := f.startSession(t)
	f.advance(13 * time.Hour)

	_, err := f.svc.RecordValidation(RecordInput{
		SessionID: session.ID, ItemID: f.crit1.ID, Status: StatusConforme,
	})
	if !errors.Is(err, ErrSessionClosed) {
		t.Errorf("write past deadline error = %v, want ErrSessionClosed", err)
	}
}

func TestResetValidation_KeepsHistory(t *testing.T) {
	f := newFixture(t)
	session := f.startSession(t)

	if _, err := f.svc.RecordValidation(RecordInput{
		SessionID: session.ID, ItemID: f.crit1.ID,
		Status: StatusNonConforme, Defect: "worn brake",
	}); err != nil {
		t.Fatalf("record: %v", err)
	}

	reset, err := f.svc.ResetValidation(session.ID, f.crit1.ID, nil)
	if err != nil {
		t.Fatalf("ResetValidation: %v", err)
	}
	if reset.Status != string(StatusUnverified) {
		t.Errorf("status = %q, want %q", reset.Status, StatusUnverified)
	}
	if reset.Defect != "worn brake" {
		t.Errorf("defect = %q, want retained after reset", reset.Defect)
	}
}

func TestValidateAllUnresolved(t *testing.T) {
	f := newFixture(t)
	session := f.startSession(t)

	// crit1 already resolved, crit2 non_conforme: only crit2 and minor1 are
	// unresolved in the safety category
	f.record(t, session.ID, f.crit1.ID, StatusConforme)
	if _, err := f.svc.RecordValidation(RecordInput{
		SessionID: session.ID, ItemID: f.crit2.ID,
		Status: StatusNonConforme, Defect: "barrier latch broken",
	}); err != nil {
		t.Fatalf("record: %v", err)
	}

	done, err := f.svc.ValidateAllUnresolved(session.ID, f.safety.ID, &f.operator.ID)
	if err != nil {
		t.Fatalf("ValidateAllUnresolved: %v", err)
	}
	if done != 2 {
		t.Errorf("validated = %d, want 2", done)
	}

	detail, err := f.svc.GetSession(session.ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if detail.Stats.CritiquesNonValides != 1 {
		// crit3 in the uncoiler category is still untouched
		t.Errorf("critiques_non_valides = %d, want 1", detail.Stats.CritiquesNonValides)
	}
}

func TestValidateAllUnresolved_WrongCategory(t *testing.T) {
	f := newFixture(t)
	session := f.startSession(t)

	if _, err := f.svc.ValidateAllUnresolved(session.ID, 9999, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown category error = %v, want ErrNotFound", err)
	}
}

// ---------- finalization gate ----------

func TestFinalize_CriticalItemsUnresolved(t *testing.T) {
	f := newFixture(t)
	session := f.startSession(t)
	f.record(t, session.ID, f.crit1.ID, StatusConforme)
	// crit2 and crit3 untouched

	_, err := f.svc.FinalizeSession(session.ID)
	var critical *CriticalItemsError
	if !errors.As(err, &critical) {
		t.Fatalf("FinalizeSession error = %v, want CriticalItemsError", err)
	}
	if len(critical.Items) != 2 {
		t.Errorf("unresolved count = %d, want 2", len(critical.Items))
	}

	var stored models.Session
	f.db.First(&stored, "id = ?", session.ID)
	if stored.Status != string(SessionInProgress) {
		t.Errorf("status after rejected finalize = %q, want in_progress", stored.Status)
	}
}

func TestFinalize_NonConformeCriticalBlocks(t *testing.T) {
	f := newFixture(t)
	session := f.startSession(t)
	f.record(t, session.ID, f.crit1.ID, StatusConforme)
	f.record(t, session.ID, f.crit3.ID, StatusConforme)
	if _, err := f.svc.RecordValidation(RecordInput{
		SessionID: session.ID, ItemID: f.crit2.ID,
		Status: StatusNonConforme, Defect: "barrier latch broken",
	}); err != nil {
		t.Fatalf("record: %v", err)
	}

	_, err := f.svc.FinalizeSession(session.ID)
	var critical *CriticalItemsError
	if !errors.As(err, &critical) || len(critical.Items) != 1 {
		t.Fatalf("FinalizeSession error = %v, want CriticalItemsError with 1 item", err)
	}
	if critical.Items[0].Code != "SQ_02" {
		t.Errorf("offending item = %s, want SQ_02", critical.Items[0].Code)
	}
}

func TestFinalize_PassesWithNonCriticalOpen(t *testing.T) {
	f := newFixture(t)
	session := f.startSession(t)
	f.resolveAllCritical(t, session.ID)
	// minor1 and minor2 left non_verifie on purpose

	validated, err := f.svc.FinalizeSession(session.ID)
	if err != nil {
		t.Fatalf("FinalizeSession: %v", err)
	}
	if validated.Status != string(SessionValidated) {
		t.Errorf("status = %q, want validated", validated.Status)
	}
	if validated.ValidatedAt == nil || validated.ExpiresAt == nil {
		t.Fatal("validated_at/expires_at not stamped")
	}
	wantExpiry := validated.ValidatedAt.Add(12 * time.Hour)
	if !validated.ExpiresAt.Equal(wantExpiry) {
		t.Errorf("expires_at = %v, want validated_at + 12h = %v", validated.ExpiresAt, wantExpiry)
	}
}

func TestFinalize_Idempotent(t *testing.T) {
	f := newFixture(t)
	session := f.startSession(t)
	f.resolveAllCritical(t, session.ID)

	first, err := f.svc.FinalizeSession(session.ID)
	if err != nil {
		t.Fatalf("first finalize: %v", err)
	}

	f.advance(time.Hour)
	_, err = f.svc.FinalizeSession(session.ID)
	if !errors.Is(err, ErrAlreadyFinalized) {
		t.Fatalf("second finalize error = %v, want ErrAlreadyFinalized", err)
	}

	var stored models.Session
	f.db.First(&stored, "id = ?", session.ID)
	if !stored.ValidatedAt.Equal(*first.ValidatedAt) {
		t.Errorf("validated_at changed: %v then %v", first.ValidatedAt, stored.ValidatedAt)
	}
	if !stored.ExpiresAt.Equal(*first.ExpiresAt) {
		t.Errorf("expires_at changed: %v then %v", first.ExpiresAt, stored.ExpiresAt)
	}
}

func TestFinalize_DeadlinePassed(t *testing.T) {
	f := newFixture(t)
	session := f.startSession(t)
	f.resolveAllCritical(t, session.ID)
	f.advance(13 * time.Hour)

	if _, err := f.svc.FinalizeSession(session.ID); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("finalize past deadline error = %v, want ErrSessionClosed", err)
	}
}

func TestFinalize_NotFound(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.FinalizeSession("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("FinalizeSession(missing) error = %v, want ErrNotFound", err)
	}
}

// ---------- type registry ----------

func TestListTypes_NeverDone(t *testing.T) {
	f := newFixture(t)

	types, err := f.svc.ListTypes()
	if err != nil {
		t.Fatalf("ListTypes: %v", err)
	}
	if len(types) != 2 {
		t.Fatalf("types = %d, want 2", len(types))
	}

	shift := types[0]
	if shift.Code != "shift-start" {
		t.Fatalf("first type = %s, want shift-start (display order)", shift.Code)
	}
	if shift.TotalItems != 5 || shift.TotalCriticalItems != 3 {
		t.Errorf("counters = %d/%d, want 5/3", shift.TotalItems, shift.TotalCriticalItems)
	}
	if shift.IsValid {
		t.Error("is_valid = true with no validated session")
	}
	if shift.LastSession != nil {
		t.Error("last session set with no validated session")
	}
}

func TestListTypes_AfterValidation(t *testing.T) {
	f := newFixture(t)
	session := f.startSession(t)
	f.resolveAllCritical(t, session.ID)
	if _, err := f.svc.FinalizeSession(session.ID); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	f.advance(11 * time.Hour)
	types, err := f.svc.ListTypes()
	if err != nil {
		t.Fatalf("ListTypes: %v", err)
	}
	shift := types[0]
	if !shift.IsValid {
		t.Error("is_valid = false at T+11h of a 12h window")
	}
	if !shift.ExpiringSoon {
		t.Error("expire_bientot = false with 1h remaining")
	}
	if shift.LastSession == nil || shift.LastSession.ID != session.ID {
		t.Error("last session summary missing or wrong")
	}
	if shift.LastSession.Valideur != "Amine Trabelsi" {
		t.Errorf("valideur = %q", shift.LastSession.Valideur)
	}

	f.advance(2 * time.Hour)
	types, err = f.svc.ListTypes()
	if err != nil {
		t.Fatalf("ListTypes: %v", err)
	}
	if types[0].IsValid {
		t.Error("is_valid = true at T+13h of a 12h window")
	}
}

// A type whose only session is in_progress and past its deadline reports
// invalid, not "in progress".
func TestListTypes_StaleInProgressSession(t *testing.T) {
	f := newFixture(t)
	f.startSession(t)
	f.advance(13 * time.Hour)

	types, err := f.svc.ListTypes()
	if err != nil {
		t.Fatalf("ListTypes: %v", err)
	}
	if types[0].IsValid {
		t.Error("is_valid = true for a type with only a stale in_progress session")
	}
	if types[0].LastSession != nil {
		t.Error("stale in_progress session surfaced as last validated session")
	}
}

func TestStatus_ProductionGate(t *testing.T) {
	f := newFixture(t)

	status, err := f.svc.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.CanProduce {
		t.Error("peut_produire = true before any shift-start validation")
	}

	session := f.startSession(t)
	f.resolveAllCritical(t, session.ID)
	if _, err := f.svc.FinalizeSession(session.ID); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	status, err = f.svc.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !status.ShiftStartValid || !status.CanProduce {
		t.Errorf("gate = %+v, want open after validation", status)
	}
}

func TestListCategoriesWithItems(t *testing.T) {
	f := newFixture(t)
	// deactivate one item: it must disappear from the tree
	f.db.Model(&f.minor2).Update("active", false)

	categories, err := f.svc.ListCategoriesWithItems(f.typ.ID)
	if err != nil {
		t.Fatalf("ListCategoriesWithItems: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("categories = %d, want 2", len(categories))
	}
	if len(categories[1].Items) != 1 {
		t.Errorf("uncoiler items = %d, want 1 after deactivation", len(categories[1].Items))
	}

	if _, err := f.svc.ListCategoriesWithItems(9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown type error = %v, want ErrNotFound", err)
	}
}

// ---------- history ----------

func TestHistory(t *testing.T) {
	f := newFixture(t)

	first := f.startSession(t)
	f.resolveAllCritical(t, first.ID)
	if _, err := f.svc.FinalizeSession(first.ID); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	f.advance(time.Hour)
	second := f.startSession(t)
	if _, err := f.svc.RecordValidation(RecordInput{
		SessionID: second.ID, ItemID: f.crit1.ID,
		Status: StatusNonConforme, Defect: "worn brake",
	}); err != nil {
		t.Fatalf("record: %v", err)
	}

	entries, err := f.svc.History(f.typ.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	// newest first, numbered chronologically
	if entries[0].ID != second.ID || entries[0].Numero != 2 {
		t.Errorf("first entry = %s #%d, want %s #2", entries[0].ID, entries[0].Numero, second.ID)
	}
	if entries[1].ID != first.ID || entries[1].Numero != 1 {
		t.Errorf("second entry = %s #%d, want %s #1", entries[1].ID, entries[1].Numero, first.ID)
	}
	if entries[1].Conformes != 3 {
		t.Errorf("validated session conformes = %d, want 3", entries[1].Conformes)
	}
	if entries[0].NonConformes != 1 {
		t.Errorf("open session non_conformes = %d, want 1", entries[0].NonConformes)
	}
	if entries[1].TotalItems != 5 {
		t.Errorf("total_items = %d, want 5", entries[1].TotalItems)
	}

	if _, err := f.svc.History(9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("History(unknown) error = %v, want ErrNotFound", err)
	}
}
