package database

import (
	"fmt"

	"github.com/DeLTa-X-Tunisia/Logi-Track-sub000/internal/checklist"
	"github.com/DeLTa-X-Tunisia/Logi-Track-sub000/internal/models"

	"gorm.io/gorm"
)

type seedItem struct {
	Code     string
	Label    string
	Critical bool
}

type seedCategory struct {
	Code  string
	Name  string
	Items []seedItem
}

type seedType struct {
	Code          string
	Name          string
	Description   string
	Frequency     checklist.Frequency
	ValidityHours int
	Categories    []seedCategory
}

// catalogue is the factory checklist template tree for the tube mill line.
var catalogue = []seedType{
	{
		Code:          "shift-start",
		Name:          "Shift-Start Checklist",
		Description:   "Mandatory verification before each work shift",
		Frequency:     checklist.FreqShiftStart,
		ValidityHours: 12,
		Categories: []seedCategory{
			{Code: "SAFETY", Name: "General Safety", Items: []seedItem{
				{"SQ_01", "Emergency stops tested and functional", true},
				{"SQ_02", "Safety barriers in place and locked", true},
				{"SQ_03", "Full PPE available at the station", true},
				{"SQ_04", "Work area clean and clear", false},
				{"SQ_05", "Fire extinguishers accessible and checked", true},
			}},
			{Code: "UNCOILER", Name: "Uncoiling System", Items: []seedItem{
				{"DQ_01", "Uncoiler mandrel: visual inspection", true},
				{"DQ_02", "Coil brake: functional test", true},
				{"DQ_03", "Entry guides: no excessive wear", false},
				{"DQ_04", "Lubrication points greased", false},
			}},
			{Code: "WELDING", Name: "Welding Stations", Items: []seedItem{
				{"SOQ_01", "GMAW torch: nozzle and contact tip condition", true},
				{"SOQ_02", "CO2 gas flow verified", true},
				{"SOQ_03", "Welding wire feeds without jamming", false},
				{"SOQ_04", "SAW heads: inside/outside visual inspection", true},
				{"SOQ_05", "SAW flux level and quality", false},
			}},
			{Code: "FLUIDS", Name: "Fluids & Levels", Items: []seedItem{
				{"FQ_01", "Cooling tank level verified", true},
				{"FQ_02", "Coolant temperature within range", false},
				{"FQ_03", "Hydraulic pressure within limits", true},
				{"FQ_04", "No visible leaks on circuits", false},
			}},
			{Code: "INSTRUMENTS", Name: "Measuring Instruments", Items: []seedItem{
				{"IQ_01", "Line speed sensors: signal test", true},
				{"IQ_02", "Data acquisition system running", false},
				{"IQ_03", "Dimensional control ready", true},
			}},
		},
	},
	{
		Code:          "weekly",
		Name:          "Weekly Checklist",
		Description:   "In-depth weekly verification",
		Frequency:     checklist.FreqWeekly,
		ValidityHours: 168,
		Categories: []seedCategory{
			{Code: "MECHANICAL", Name: "General Mechanics", Items: []seedItem{
				{"MH_01", "Drive belts and chains inspection", true},
				{"MH_02", "Main bearing clearances checked", true},
				{"MH_03", "Forming roller wear inspection", true},
				{"MH_04", "Critical fastener torque check", false},
			}},
			{Code: "ELECTRICAL", Name: "Electrical & Automation", Items: []seedItem{
				{"EH_01", "Variable frequency drives test", true},
				{"EH_02", "Wiring and connections inspection", false},
				{"EH_03", "PLC and safety sequence tests", true},
			}},
			{Code: "CALIBRATION", Name: "Instrument Calibration", Items: []seedItem{
				{"CH_01", "Thickness gauge calibration", true},
				{"CH_02", "Pressure sensor verification", true},
				{"CH_03", "Defect detection system test", true},
			}},
		},
	},
	{
		Code:          "monthly",
		Name:          "Monthly Checklist",
		Description:   "Complete monthly inspection",
		Frequency:     checklist.FreqMonthly,
		ValidityHours: 720,
		Categories: []seedCategory{
			{Code: "STRUCTURE", Name: "Structure & Foundations", Items: []seedItem{
				{"SM_01", "Machine foundations and anchors inspection", true},
				{"SM_02", "Overall line alignment verification", true},
				{"SM_03", "Structural weld inspection", false},
			}},
			{Code: "HYDRAULICS", Name: "Hydraulic Circuit", Items: []seedItem{
				{"HM_01", "Hydraulic oil analysis", true},
				{"HM_02", "Hydraulic filter replacement", false},
				{"HM_03", "Relief valve discharge pressure test", true},
			}},
			{Code: "SAFETY_AUDIT", Name: "Safety & Compliance", Items: []seedItem{
				{"SCM_01", "Full safety device audit", true},
				{"SCM_02", "Fire and detection system test", true},
				{"SCM_03", "Regulatory compliance verification", true},
				{"SCM_04", "Safety register update", false},
			}},
		},
	},
}

// Seed installs the checklist catalogue idempotently: existing rows are
// matched by code, missing ones are created.
func Seed(db *gorm.DB) error {
	for order, st := range catalogue {
		typ := models.ChecklistType{
			Code:                st.Code,
			Name:                st.Name,
			Description:         st.Description,
			Frequency:           string(st.Frequency),
			ValidityDurationHrs: st.ValidityHours,
			DisplayOrder:        order + 1,
			Active:              true,
		}
		if err := db.Where(models.ChecklistType{Code: st.Code}).
			FirstOrCreate(&typ).Error; err != nil {
			return fmt.Errorf("seed type %s: %w", st.Code, err)
		}

		for catOrder, sc := range st.Categories {
			cat := models.Category{
				TypeID:       typ.ID,
				Code:         sc.Code,
				Name:         sc.Name,
				DisplayOrder: catOrder + 1,
				Active:       true,
			}
			if err := db.Where(models.Category{TypeID: typ.ID, Code: sc.Code}).
				FirstOrCreate(&cat).Error; err != nil {
				return fmt.Errorf("seed category %s/%s: %w", st.Code, sc.Code, err)
			}

			for itemOrder, si := range sc.Items {
				item := models.Item{
					CategoryID:   cat.ID,
					Code:         si.Code,
					Label:        si.Label,
					Critical:     si.Critical,
					DisplayOrder: itemOrder + 1,
					Active:       true,
				}
				if err := db.Where(models.Item{CategoryID: cat.ID, Code: si.Code}).
					FirstOrCreate(&item).Error; err != nil {
					return fmt.Errorf("seed item %s/%s: %w", sc.Code, si.Code, err)
				}
			}
		}
	}
	return nil
}
