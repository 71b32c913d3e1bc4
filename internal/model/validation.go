package model

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// recordFieldRule declares which measurement fields a record type requires.
// Fields outside the required set must be absent.
type recordFieldRule struct {
	requireBP    bool // systolic and diastolic
	requireValue bool // value and unit
}

// recordFieldRules is the per-type field-set table. Types not requiring any
// measurement carry notes only.
var recordFieldRules = map[HealthRecordType]recordFieldRule{
	RecordBloodPressure: {requireBP: true},
	RecordGlucose:       {requireValue: true},
	RecordWeight:        {requireValue: true},
	RecordHeartRate:     {requireValue: true},
	RecordSymptomLog:    {},
	RecordActivity:      {},
	RecordFoodIntake:    {},
	RecordSleep:         {},
	RecordOther:         {},
}

// RegisterRules installs the struct-level validation hooks for request types
// whose constraints span multiple fields.
func RegisterRules(v *validator.Validate) {
	v.RegisterStructValidation(validateHealthRecordInput, HealthRecordInput{})
	v.RegisterStructValidation(validateMedicationDates, CreateMedicationRequest{})
}

func recordTypesParam() string {
	names := make([]string, len(HealthRecordTypes))
	for i, t := range HealthRecordTypes {
		names[i] = string(t)
	}
	return strings.Join(names, " ")
}

func validateHealthRecordInput(sl validator.StructLevel) {
	in := sl.Current().Interface().(HealthRecordInput)
	if in.Type == "" {
		return // the field-level required tag reports this
	}

	rule, known := recordFieldRules[in.Type]
	if !known {
		sl.ReportError(in.Type, "type", "Type", "oneof", recordTypesParam())
		return
	}

	param := string(in.Type)

	switch {
	case rule.requireBP:
		if in.Systolic == nil {
			sl.ReportError(in.Systolic, "systolic", "Systolic", "required_for_type", param)
		}
		if in.Diastolic == nil {
			sl.ReportError(in.Diastolic, "diastolic", "Diastolic", "required_for_type", param)
		}
		if in.Value != nil {
			sl.ReportError(in.Value, "value", "Value", "forbidden_for_type", param)
		}
		if in.Unit != nil {
			sl.ReportError(in.Unit, "unit", "Unit", "forbidden_for_type", param)
		}
	case rule.requireValue:
		if in.Value == nil {
			sl.ReportError(in.Value, "value", "Value", "required_for_type", param)
		}
		if in.Unit == nil || *in.Unit == "" {
			sl.ReportError(in.Unit, "unit", "Unit", "required_for_type", param)
		}
		if in.Systolic != nil {
			sl.ReportError(in.Systolic, "systolic", "Systolic", "forbidden_for_type", param)
		}
		if in.Diastolic != nil {
			sl.ReportError(in.Diastolic, "diastolic", "Diastolic", "forbidden_for_type", param)
		}
	default:
		if in.Systolic != nil {
			sl.ReportError(in.Systolic, "systolic", "Systolic", "forbidden_for_type", param)
		}
		if in.Diastolic != nil {
			sl.ReportError(in.Diastolic, "diastolic", "Diastolic", "forbidden_for_type", param)
		}
		if in.Value != nil {
			sl.ReportError(in.Value, "value", "Value", "forbidden_for_type", param)
		}
		if in.Unit != nil {
			sl.ReportError(in.Unit, "unit", "Unit", "forbidden_for_type", param)
		}
	}
}

func validateMedicationDates(sl validator.StructLevel) {
	req := sl.Current().Interface().(CreateMedicationRequest)
	if req.EndDate != nil && !req.StartDate.IsZero() && req.EndDate.Before(req.StartDate) {
		sl.ReportError(req.EndDate, "end_date", "EndDate", "gtefield", "start_date")
	}
}
