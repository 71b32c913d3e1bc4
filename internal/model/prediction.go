package model

import (
	"time"

	"github.com/google/uuid"
)

// FeatureVector is the fixed 11-field input required by the external risk
// prediction service. Field names match its wire format.
type FeatureVector struct {
	Age         float64 `json:"age" validate:"gt=0,lte=130"`
	Gender      int     `json:"gender" validate:"oneof=0 1"`
	Height      float64 `json:"height" validate:"gt=0"`
	Weight      float64 `json:"weight" validate:"gt=0"`
	ApHi        int     `json:"ap_hi" validate:"gt=0"`
	ApLo        int     `json:"ap_lo" validate:"gt=0"`
	Cholesterol int     `json:"cholesterol" validate:"gte=1,lte=3"`
	Gluc        int     `json:"gluc" validate:"gte=1,lte=3"`
	Smoke       int     `json:"smoke" validate:"oneof=0 1"`
	Alco        int     `json:"alco" validate:"oneof=0 1"`
	Active      int     `json:"active" validate:"oneof=0 1"`
}

// BMI derives body mass index from the vector's height (cm) and weight (kg).
func (f *FeatureVector) BMI() float64 {
	meters := f.Height / 100
	return f.Weight / (meters * meters)
}

// PredictionProbabilities are the per-class probabilities returned by the
// prediction service.
type PredictionProbabilities struct {
	LowRisk  float64 `json:"low_risk"`
	HighRisk float64 `json:"high_risk"`
}

// Prediction is the domain result of one risk prediction call.
type Prediction struct {
	Class          int                     `json:"class"`
	Probabilities  PredictionProbabilities `json:"probabilities"`
	AlertTriggered bool                    `json:"alert_triggered"`
}

// PredictionSnapshot is one point-in-time set of vitals plus the derived BMI
// and prediction outputs. Snapshots are append-only and never updated.
type PredictionSnapshot struct {
	ID              uuid.UUID `json:"id" db:"id"`
	PatientID       uuid.UUID `json:"patient_id" db:"patient_id"`
	Age             float64   `json:"age" db:"age"`
	Gender          int       `json:"gender" db:"gender"`
	Height          float64   `json:"height" db:"height"`
	Weight          float64   `json:"weight" db:"weight"`
	ApHi            int       `json:"ap_hi" db:"ap_hi"`
	ApLo            int       `json:"ap_lo" db:"ap_lo"`
	Cholesterol     int       `json:"cholesterol" db:"cholesterol"`
	Gluc            int       `json:"gluc" db:"gluc"`
	Smoke           int       `json:"smoke" db:"smoke"`
	Alco            int       `json:"alco" db:"alco"`
	Active          int       `json:"active" db:"active"`
	BMI             float64   `json:"bmi" db:"bmi"`
	PredictionClass int       `json:"prediction_class" db:"prediction_class"`
	LowRiskProba    float64   `json:"low_risk_proba" db:"low_risk_proba"`
	HighRiskProba   float64   `json:"high_risk_proba" db:"high_risk_proba"`
	AlertTriggered  bool      `json:"alert_triggered" db:"alert_triggered"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// RecordVitalsRequest is the body for recording vitals with an inline
// prediction; it is exactly the feature vector.
type RecordVitalsRequest struct {
	FeatureVector
}

// PredictRiskRequest supplies every feature except the blood pressure pair,
// which is filled from the patient's latest stored blood_pressure record.
type PredictRiskRequest struct {
	Age         float64 `json:"age" validate:"gt=0,lte=130"`
	Gender      int     `json:"gender" validate:"oneof=0 1"`
	Height      float64 `json:"height" validate:"gt=0"`
	Weight      float64 `json:"weight" validate:"gt=0"`
	Cholesterol int     `json:"cholesterol" validate:"gte=1,lte=3"`
	Gluc        int     `json:"gluc" validate:"gte=1,lte=3"`
	Smoke       int     `json:"smoke" validate:"oneof=0 1"`
	Alco        int     `json:"alco" validate:"oneof=0 1"`
	Active      int     `json:"active" validate:"oneof=0 1"`
}
