package healthrecord

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitaltrack/vitaltrack-api/internal/model"
	apperrors "github.com/vitaltrack/vitaltrack-api/pkg/errors"
	"github.com/vitaltrack/vitaltrack-api/pkg/validator"
)

type fakePatientRepo struct {
	patients map[uuid.UUID]*model.Patient
}

func (f *fakePatientRepo) Create(_ context.Context, p *model.Patient) error {
	f.patients[p.ID] = p
	return nil
}

func (f *fakePatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, apperrors.NewNotFound("patient")
	}
	return p, nil
}

func (f *fakePatientRepo) Update(_ context.Context, p *model.Patient) error {
	f.patients[p.ID] = p
	return nil
}

func (f *fakePatientRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.patients, id)
	return nil
}

func (f *fakePatientRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*model.Patient, error) {
	var out []*model.Patient
	for _, p := range f.patients {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePatientRepo) List(_ context.Context) ([]*model.Patient, error) {
	var out []*model.Patient
	for _, p := range f.patients {
		out = append(out, p)
	}
	return out, nil
}

// fakeRecordRepo mirrors the transactional write: creating a glucose reading
// refreshes the owning patient's denormalized last_glucose.
type fakeRecordRepo struct {
	patients *fakePatientRepo
	records  map[uuid.UUID]*model.HealthRecord
}

func (f *fakeRecordRepo) Create(ctx context.Context, r *model.HealthRecord) error {
	f.records[r.ID] = r
	if r.Type == model.RecordGlucose && r.Value != nil {
		patient, err := f.patients.Get(ctx, r.PatientID)
		if err != nil {
			return err
		}
		patient.LastGlucose = r.Value
	}
	return nil
}

func (f *fakeRecordRepo) Get(_ context.Context, id uuid.UUID) (*model.HealthRecord, error) {
	r, ok := f.records[id]
	if !ok {
		return nil, apperrors.NewNotFound("health record")
	}
	return r, nil
}

func (f *fakeRecordRepo) Update(_ context.Context, r *model.HealthRecord) error {
	if _, ok := f.records[r.ID]; !ok {
		return apperrors.NewNotFound("health record")
	}
	f.records[r.ID] = r
	return nil
}

func (f *fakeRecordRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.records[id]; !ok {
		return apperrors.NewNotFound("health record")
	}
	delete(f.records, id)
	return nil
}

func (f *fakeRecordRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*model.HealthRecord, error) {
	var out []*model.HealthRecord
	for _, r := range f.records {
		if r.PatientID == patientID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecordedAt.After(out[j].RecordedAt) })
	return out, nil
}

func (f *fakeRecordRepo) ListByPatientAndType(ctx context.Context, patientID uuid.UUID, recordType model.HealthRecordType) ([]*model.HealthRecord, error) {
	all, _ := f.ListByPatient(ctx, patientID)
	var out []*model.HealthRecord
	for _, r := range all {
		if r.Type == recordType {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecordRepo) LatestByPatientAndType(ctx context.Context, patientID uuid.UUID, recordType model.HealthRecordType) (*model.HealthRecord, error) {
	matches, _ := f.ListByPatientAndType(ctx, patientID, recordType)
	if len(matches) == 0 {
		return nil, apperrors.NewNotFound("health record")
	}
	return matches[0], nil
}

type fakeSnapshotRepo struct {
	snapshots []*model.PredictionSnapshot
}

func (f *fakeSnapshotRepo) Append(_ context.Context, s *model.PredictionSnapshot) error {
	f.snapshots = append(f.snapshots, s)
	return nil
}

func (f *fakeSnapshotRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*model.PredictionSnapshot, error) {
	var out []*model.PredictionSnapshot
	for _, s := range f.snapshots {
		if s.PatientID == patientID {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func (f *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.NewNotFound("user")
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.NewNotFound("user")
}

func (f *fakeUserRepo) Update(_ context.Context, u *model.User) error {
	f.users[u.ID] = u
	return nil
}

type fakePredictor struct {
	result       *model.Prediction
	err          error
	calls        int
	lastFeatures *model.FeatureVector
}

func (f *fakePredictor) Predict(_ context.Context, features *model.FeatureVector) (*model.Prediction, error) {
	f.calls++
	f.lastFeatures = features
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeEmail struct {
	alerts []string
}

func (f *fakeEmail) SendWelcome(to, name string) error { return nil }

func (f *fakeEmail) SendRiskAlert(to, patientName string, highRiskProba float64) error {
	f.alerts = append(f.alerts, to)
	return nil
}

type fixture struct {
	svc       *Service
	patients  *fakePatientRepo
	records   *fakeRecordRepo
	snapshots *fakeSnapshotRepo
	users     *fakeUserRepo
	predictor *fakePredictor
	email     *fakeEmail

	owner     *model.Principal
	stranger  *model.Principal
	admin     *model.Principal
	patientID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	v := validator.New()
	model.RegisterRules(v.Engine())

	ownerID := uuid.New()
	patientID := uuid.New()

	patients := &fakePatientRepo{patients: map[uuid.UUID]*model.Patient{}}
	f := &fixture{
		patients:  patients,
		records:   &fakeRecordRepo{patients: patients, records: map[uuid.UUID]*model.HealthRecord{}},
		snapshots: &fakeSnapshotRepo{},
		users:     &fakeUserRepo{users: map[uuid.UUID]*model.User{}},
		predictor: &fakePredictor{result: &model.Prediction{
			Class: 0,
			Probabilities: model.PredictionProbabilities{
				LowRisk:  0.9,
				HighRisk: 0.1,
			},
		}},
		email:     &fakeEmail{},
		owner:     &model.Principal{ID: ownerID, Email: "owner@example.com", Role: model.RoleUser},
		stranger:  &model.Principal{ID: uuid.New(), Email: "other@example.com", Role: model.RoleUser},
		admin:     &model.Principal{ID: uuid.New(), Email: "admin@example.com", Role: model.RoleAdmin},
		patientID: patientID,
	}

	f.users.users[ownerID] = &model.User{
		Base:  model.Base{ID: ownerID},
		Email: "owner@example.com",
		Name:  "Owner",
		Role:  model.RoleUser,
	}
	f.patients.patients[patientID] = &model.Patient{
		Base:   model.Base{ID: patientID},
		UserID: ownerID,
		Name:   "Pat",
	}

	f.svc = NewService(f.records, f.snapshots, f.patients, f.users, f.predictor, f.email, v, nil)
	return f
}

func intPtr(i int) *int { return &i }

func bpInput(recordedAt time.Time) *model.HealthRecordInput {
	return &model.HealthRecordInput{
		Type:       model.RecordBloodPressure,
		Systolic:   intPtr(120),
		Diastolic:  intPtr(80),
		RecordedAt: recordedAt,
	}
}

func vitals() *model.RecordVitalsRequest {
	return &model.RecordVitalsRequest{FeatureVector: model.FeatureVector{
		Age: 52, Gender: 1, Height: 170, Weight: 70,
		ApHi: 140, ApLo: 90,
		Cholesterol: 2, Gluc: 1,
		Smoke: 0, Alco: 0, Active: 1,
	}}
}

func TestCreateRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	record, err := f.svc.Create(ctx, f.owner, f.patientID, bpInput(time.Now().Add(-time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, f.patientID, record.PatientID)
	assert.NotEqual(t, uuid.Nil, record.ID)
}

func TestCreateRecordOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.stranger, f.patientID, bpInput(time.Now()))
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	_, err = f.svc.Create(ctx, f.admin, f.patientID, bpInput(time.Now().Add(-time.Minute)))
	assert.NoError(t, err, "admins may act on any patient")

	_, err = f.svc.Create(ctx, f.owner, uuid.New(), bpInput(time.Now()))
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestCreateRecordValidatesFieldSet(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.owner, f.patientID, &model.HealthRecordInput{
		Type:       model.RecordGlucose,
		Systolic:   intPtr(120),
		RecordedAt: time.Now().Add(-time.Minute),
	})
	require.Error(t, err)
	appErr := apperrors.FromError(err)
	assert.Equal(t, apperrors.KindValidation, appErr.Kind)
	assert.GreaterOrEqual(t, len(appErr.Fields), 3, "all violations reported together")
}

func TestCreateGlucoseRecordRefreshesProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	value := 5.4
	unit := "mmol/L"
	_, err := f.svc.Create(ctx, f.owner, f.patientID, &model.HealthRecordInput{
		Type:       model.RecordGlucose,
		Value:      &value,
		Unit:       &unit,
		RecordedAt: time.Now().Add(-time.Minute),
	})
	require.NoError(t, err)

	patient := f.patients.patients[f.patientID]
	require.NotNil(t, patient.LastGlucose)
	assert.InDelta(t, 5.4, *patient.LastGlucose, 1e-9)

	// Non-glucose records leave the denormalized reading alone.
	_, err = f.svc.Create(ctx, f.owner, f.patientID, bpInput(time.Now().Add(-time.Second)))
	require.NoError(t, err)
	assert.InDelta(t, 5.4, *patient.LastGlucose, 1e-9)
}

func TestListForPatientOrdering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	base := time.Now().Add(-24 * time.Hour)
	for _, offset := range []time.Duration{2 * time.Hour, 0, time.Hour} {
		_, err := f.svc.Create(ctx, f.owner, f.patientID, bpInput(base.Add(offset)))
		require.NoError(t, err)
	}

	records, err := f.svc.ListForPatient(ctx, f.owner, f.patientID)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i := 1; i < len(records); i++ {
		assert.False(t, records[i].RecordedAt.After(records[i-1].RecordedAt),
			"records must be ordered most recent first")
	}
}

func TestListForPatientByTypeRejectsUnknownType(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ListForPatientByType(context.Background(), f.owner, f.patientID, "temperature")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestGetRecordTransitiveOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	record, err := f.svc.Create(ctx, f.owner, f.patientID, bpInput(time.Now().Add(-time.Hour)))
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, f.stranger, record.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	got, err := f.svc.Get(ctx, f.owner, record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, got.ID)
}

func TestUpdateRecordRevalidatesMergedState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	record, err := f.svc.Create(ctx, f.owner, f.patientID, bpInput(time.Now().Add(-time.Hour)))
	require.NoError(t, err)

	// Retyping to glucose without supplying value/unit must fail on the
	// merged state, which still carries the blood pressure pair.
	glucose := model.RecordGlucose
	_, err = f.svc.Update(ctx, f.owner, record.ID, &model.UpdateHealthRecordRequest{Type: &glucose})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	// A consistent patch passes.
	notes := "after morning walk"
	updated, err := f.svc.Update(ctx, f.owner, record.ID, &model.UpdateHealthRecordRequest{
		Systolic: intPtr(130),
		Notes:    &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, 130, *updated.Systolic)
	assert.Equal(t, notes, updated.Notes)
}

func TestDeleteRecordIsHard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	record, err := f.svc.Create(ctx, f.owner, f.patientID, bpInput(time.Now().Add(-time.Hour)))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, f.owner, record.ID))

	_, err = f.svc.Get(ctx, f.owner, record.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestRecordVitalsAppendsSnapshotWithBMI(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	snapshot, result, err := f.svc.RecordVitals(ctx, f.owner, f.patientID, vitals())
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	require.NotNil(t, result)

	assert.Equal(t, f.patientID, snapshot.PatientID)
	assert.InDelta(t, 24.22, snapshot.BMI, 0.01)
	assert.Equal(t, 140, snapshot.ApHi)
	assert.Equal(t, 90, snapshot.ApLo)
	assert.Equal(t, result.Class, snapshot.PredictionClass)
	assert.InDelta(t, result.Probabilities.HighRisk, snapshot.HighRiskProba, 1e-9)

	stored, err := f.snapshots.ListByPatient(ctx, f.patientID)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
	assert.Empty(t, f.email.alerts, "no alert email for a low-risk result")
}

func TestRecordVitalsPredictionFailurePersistsNothing(t *testing.T) {
	f := newFixture(t)
	f.predictor.err = apperrors.NewPredictionUnreachable(context.DeadlineExceeded)
	ctx := context.Background()

	_, _, err := f.svc.RecordVitals(ctx, f.owner, f.patientID, vitals())
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindPredictionUnreachable))
	assert.Empty(t, f.snapshots.snapshots, "failed predictions must leave no snapshot behind")
}

func TestRecordVitalsInvalidFeaturesSkipPrediction(t *testing.T) {
	f := newFixture(t)
	bad := vitals()
	bad.Gender = 7

	_, _, err := f.svc.RecordVitals(context.Background(), f.owner, f.patientID, bad)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	assert.Zero(t, f.predictor.calls, "invalid input must not reach the prediction service")
}

func TestRecordVitalsAlertSendsEmail(t *testing.T) {
	f := newFixture(t)
	f.predictor.result = &model.Prediction{
		Class: 1,
		Probabilities: model.PredictionProbabilities{
			LowRisk:  0.15,
			HighRisk: 0.85,
		},
		AlertTriggered: true,
	}

	snapshot, _, err := f.svc.RecordVitals(context.Background(), f.owner, f.patientID, vitals())
	require.NoError(t, err)
	assert.True(t, snapshot.AlertTriggered)
	require.Len(t, f.email.alerts, 1)
	assert.Equal(t, "owner@example.com", f.email.alerts[0])
}

func TestPredictRiskUsesLatestBloodPressure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	older := bpInput(time.Now().Add(-48 * time.Hour))
	newer := bpInput(time.Now().Add(-time.Hour))
	newer.Systolic = intPtr(150)
	newer.Diastolic = intPtr(95)

	_, err := f.svc.Create(ctx, f.owner, f.patientID, older)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.owner, f.patientID, newer)
	require.NoError(t, err)

	result, err := f.svc.PredictRisk(ctx, f.owner, f.patientID, &model.PredictRiskRequest{
		Age: 52, Gender: 1, Height: 170, Weight: 70,
		Cholesterol: 2, Gluc: 1,
		Smoke: 0, Alco: 0, Active: 1,
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	require.NotNil(t, f.predictor.lastFeatures)
	assert.Equal(t, 150, f.predictor.lastFeatures.ApHi)
	assert.Equal(t, 95, f.predictor.lastFeatures.ApLo)
	assert.Empty(t, f.snapshots.snapshots, "on-demand predictions persist nothing")
}

func TestPredictRiskRequiresStoredBloodPressure(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.PredictRisk(context.Background(), f.owner, f.patientID, &model.PredictRiskRequest{
		Age: 52, Gender: 1, Height: 170, Weight: 70,
		Cholesterol: 2, Gluc: 1,
		Smoke: 0, Alco: 0, Active: 1,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	assert.Zero(t, f.predictor.calls)
}

func TestListSnapshotsOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.RecordVitals(ctx, f.owner, f.patientID, vitals())
	require.NoError(t, err)

	_, err = f.svc.ListSnapshots(ctx, f.stranger, f.patientID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	snapshots, err := f.svc.ListSnapshots(ctx, f.owner, f.patientID)
	require.NoError(t, err)
	assert.Len(t, snapshots, 1)
}
