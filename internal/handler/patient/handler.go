package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vitaltrack/vitaltrack-api/internal/handler"
	"github.com/vitaltrack/vitaltrack-api/internal/middleware"
	"github.com/vitaltrack/vitaltrack-api/internal/model"
	"github.com/vitaltrack/vitaltrack-api/internal/service/healthrecord"
	"github.com/vitaltrack/vitaltrack-api/internal/service/patient"
	apperrors "github.com/vitaltrack/vitaltrack-api/pkg/errors"
	"github.com/vitaltrack/vitaltrack-api/pkg/httputil"
)

type Handler struct {
	service   *patient.Service
	recordSvc *healthrecord.Service
}

func NewHandler(service *patient.Service, recordSvc *healthrecord.Service) *Handler {
	return &Handler{service: service, recordSvc: recordSvc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("", h.Create)
		patients.GET("", h.List)
		patients.GET("/:id", h.Get)
		patients.PUT("/:id", h.Update)
		patients.DELETE("/:id", h.Delete)

		patients.POST("/:id/health-data", h.RecordVitals)
		patients.GET("/:id/health-data", h.ListSnapshots)
	}

	// Admin-only overview of every profile, regardless of owner.
	admin := r.Group("/admin", middleware.RequireRoles(model.RoleAdmin))
	admin.GET("/patients", h.List)
}

func (h *Handler) Create(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		_ = c.Error(apperrors.NewUnauthenticated("", nil))
		return
	}

	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(handler.BindError(err))
		return
	}

	created, err := h.service.Create(c.Request.Context(), principal, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusCreated, created)
}

func (h *Handler) List(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		_ = c.Error(apperrors.NewUnauthenticated("", nil))
		return
	}

	patients, err := h.service.List(c.Request.Context(), principal)
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, patients)
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

	var req model.UpdatePatientRequest
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

	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"message": "patient deleted"})
}

// RecordVitals records a feature vector, invokes the risk prediction and
// appends one snapshot to the patient's history.
func (h *Handler) RecordVitals(c *gin.Context) {
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

	var req model.RecordVitalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(handler.BindError(err))
		return
	}

	snapshot, result, err := h.recordSvc.RecordVitals(c.Request.Context(), principal, id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, httputil.Response{
		Success:    true,
		Data:       snapshot,
		Prediction: result,
	})
}

func (h *Handler) ListSnapshots(c *gin.Context) {
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

	snapshots, err := h.recordSvc.ListSnapshots(c.Request.Context(), principal, id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, snapshots)
}
