package healthrecord

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vitaltrack/vitaltrack-api/internal/handler"
	"github.com/vitaltrack/vitaltrack-api/internal/middleware"
	"github.com/vitaltrack/vitaltrack-api/internal/model"
	"github.com/vitaltrack/vitaltrack-api/internal/service/healthrecord"
	apperrors "github.com/vitaltrack/vitaltrack-api/pkg/errors"
	"github.com/vitaltrack/vitaltrack-api/pkg/httputil"
)

type Handler struct {
	service *healthrecord.Service
}

func NewHandler(service *healthrecord.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("/:id/healthrecords", h.Create)
		patients.GET("/:id/healthrecords", h.ListForPatient)
		patients.GET("/:id/healthrecords/type/:type", h.ListForPatientByType)
		patients.POST("/:id/healthrecords/predict-cvd-risk", h.PredictRisk)
	}

	records := r.Group("/healthrecords")
	{
		records.POST("", h.CreateDirect)
		records.GET("", h.ListDirect)
		records.GET("/type/:type", h.ListByTypeDirect)
		records.POST("/predict-cvd-risk", h.PredictRiskDirect)
		records.GET("/:id", h.Get)
		records.PUT("/:id", h.Update)
		records.DELETE("/:id", h.Delete)
	}
}

// createDirectRequest and predictDirectRequest carry the owning patient
// inline for the non-nested collection routes.
type createDirectRequest struct {
	PatientID uuid.UUID `json:"patient_id"`
	model.HealthRecordInput
}

type predictDirectRequest struct {
	PatientID uuid.UUID `json:"patient_id"`
	model.PredictRiskRequest
}

func missingPatientID() error {
	return apperrors.NewValidation([]apperrors.FieldError{{
		Field:   "patient_id",
		Message: "is required",
	}})
}

func (h *Handler) Create(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		_ = c.Error(apperrors.NewUnauthenticated("", nil))
		return
	}

	patientID, err := handler.ParseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var input model.HealthRecordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(handler.BindError(err))
		return
	}

	record, err := h.service.Create(c.Request.Context(), principal, patientID, &input)
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusCreated, record)
}

func (h *Handler) CreateDirect(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		_ = c.Error(apperrors.NewUnauthenticated("", nil))
		return
	}

	var req createDirectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(handler.BindError(err))
		return
	}
	if req.PatientID == uuid.Nil {
		_ = c.Error(missingPatientID())
		return
	}

	record, err := h.service.Create(c.Request.Context(), principal, req.PatientID, &req.HealthRecordInput)
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusCreated, record)
}

func (h *Handler) ListForPatient(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		_ = c.Error(apperrors.NewUnauthenticated("", nil))
		return
	}

	patientID, err := handler.ParseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	records, err := h.service.ListForPatient(c.Request.Context(), principal, patientID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, records)
}

func (h *Handler) ListDirect(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		_ = c.Error(apperrors.NewUnauthenticated("", nil))
		return
	}

	patientID, err := handler.QueryPatientID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	records, err := h.service.ListForPatient(c.Request.Context(), principal, patientID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, records)
}

func (h *Handler) ListForPatientByType(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		_ = c.Error(apperrors.NewUnauthenticated("", nil))
		return
	}

	patientID, err := handler.ParseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	recordType := model.HealthRecordType(c.Param("type"))
	records, err := h.service.ListForPatientByType(c.Request.Context(), principal, patientID, recordType)
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, records)
}

func (h *Handler) ListByTypeDirect(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		_ = c.Error(apperrors.NewUnauthenticated("", nil))
		return
	}

	patientID, err := handler.QueryPatientID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	recordType := model.HealthRecordType(c.Param("type"))
	records, err := h.service.ListForPatientByType(c.Request.Context(), principal, patientID, recordType)
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, records)
}

func (h *Handler) Get(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		_ = c.Error(apperrors.NewUnauthenticated("", nil))
		return
	}

	id, err := handler.ParseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	record, err := h.service.Get(c.Request.Context(), principal, id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, record)
}

func (h *Handler) Update(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		_ = c.Error(apperrors.NewUnauthenticated("", nil))
		return
	}

	id, err := handler.ParseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req model.UpdateHealthRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(handler.BindError(err))
		return
	}

	record, err := h.service.Update(c.Request.Context(), principal, id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, record)
}

func (h *Handler) Delete(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		_ = c.Error(apperrors.NewUnauthenticated("", nil))
		return
	}

	id, err := handler.ParseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), principal, id); err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"message": "health record deleted"})
}

// PredictRisk runs an on-demand prediction from the patient's latest stored
// blood-pressure reading plus the body-supplied features. Nothing persists.
func (h *Handler) PredictRisk(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		_ = c.Error(apperrors.NewUnauthenticated("", nil))
		return
	}

	patientID, err := handler.ParseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req model.PredictRiskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(handler.BindError(err))
		return
	}

	result, err := h.service.PredictRisk(c.Request.Context(), principal, patientID, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithPrediction(c, result)
}

func (h *Handler) PredictRiskDirect(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		_ = c.Error(apperrors.NewUnauthenticated("", nil))
		return
	}

	var req predictDirectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(handler.BindError(err))
		return
	}
	if req.PatientID == uuid.Nil {
		_ = c.Error(missingPatientID())
		return
	}

	result, err := h.service.PredictRisk(c.Request.Context(), principal, req.PatientID, &req.PredictRiskRequest)
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithPrediction(c, result)
}
