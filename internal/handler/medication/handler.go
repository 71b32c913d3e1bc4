package medication

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vitaltrack/vitaltrack-api/internal/handler"
	"github.com/vitaltrack/vitaltrack-api/internal/middleware"
	"github.com/vitaltrack/vitaltrack-api/internal/model"
	"github.com/vitaltrack/vitaltrack-api/internal/service/medication"
	apperrors "github.com/vitaltrack/vitaltrack-api/pkg/errors"
	"github.com/vitaltrack/vitaltrack-api/pkg/httputil"
)

type Handler struct {
	service *medication.Service
}

func NewHandler(service *medication.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("/:id/medications", h.Create)
		patients.GET("/:id/medications", h.ListForPatient)
	}

	medications := r.Group("/medications")
	{
		medications.POST("", h.CreateDirect)
		medications.GET("", h.ListDirect)
		medications.GET("/:id", h.Get)
		medications.PUT("/:id", h.Update)
		medications.DELETE("/:id", h.Delete)
	}
}

// createDirectRequest carries the owning patient inline for the non-nested
// collection route.
type createDirectRequest struct {
	PatientID uuid.UUID `json:"patient_id"`
	model.CreateMedicationRequest
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

	var req model.CreateMedicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(handler.BindError(err))
		return
	}

	created, err := h.service.Create(c.Request.Context(), principal, patientID, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusCreated, created)
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
		_ = c.Error(apperrors.NewValidation([]apperrors.FieldError{{
			Field:   "patient_id",
			Message: "is required",
		}}))
		return
	}

	created, err := h.service.Create(c.Request.Context(), principal, req.PatientID, &req.CreateMedicationRequest)
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusCreated, created)
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

	medications, err := h.service.ListForPatient(c.Request.Context(), principal, patientID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, medications)
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

	medications, err := h.service.ListForPatient(c.Request.Context(), principal, patientID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, medications)
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

	found, err := h.service.Get(c.Request.Context(), principal, id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, found)
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

	var req model.UpdateMedicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(handler.BindError(err))
		return
	}

	updated, err := h.service.Update(c.Request.Context(), principal, id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, updated)
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

	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"message": "medication deleted"})
}
