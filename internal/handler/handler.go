package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	apperrors "github.com/vitaltrack/vitaltrack-api/pkg/errors"
)

// Handler serves the operational endpoints.
type Handler struct {
	db    *sqlx.DB
	redis *redis.Client
}

func NewHandler(db *sqlx.DB, redisClient *redis.Client) *Handler {
	return &Handler{db: db, redis: redisClient}
}

func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ReadinessCheck verifies both backing stores are reachable.
func (h *Handler) ReadinessCheck(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.db.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "component": "database"})
		return
	}
	if err := h.redis.Ping(ctx).Err(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "component": "redis"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (h *Handler) MetricsHandler(c *gin.Context) {
	promhttp.Handler().ServeHTTP(c.Writer, c.Request)
}

// BindError wraps a JSON binding failure as a validation error.
func BindError(err error) error {
	return apperrors.NewValidation([]apperrors.FieldError{{
		Field:   "body",
		Message: err.Error(),
	}})
}

// ParseID parses a uuid path parameter, failing with a field-level
// validation error on malformed input.
func ParseID(c *gin.Context, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return uuid.Nil, apperrors.NewValidation([]apperrors.FieldError{{
			Field:   param,
			Message: "must be a valid UUID",
		}})
	}
	return id, nil
}

// QueryPatientID parses the required patient_id query parameter used by the
// non-nested collection routes.
func QueryPatientID(c *gin.Context) (uuid.UUID, error) {
	raw := c.Query("patient_id")
	if raw == "" {
		return uuid.Nil, apperrors.NewValidation([]apperrors.FieldError{{
			Field:   "patient_id",
			Message: "is required",
		}})
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.NewValidation([]apperrors.FieldError{{
			Field:   "patient_id",
			Message: "must be a valid UUID",
		}})
	}
	return id, nil
}
