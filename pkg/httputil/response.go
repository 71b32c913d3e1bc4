package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vitaltrack/vitaltrack-api/pkg/errors"
)

// Response wraps all API responses.
type Response struct {
	Success    bool                `json:"success"`
	Data       interface{}         `json:"data,omitempty"`
	Prediction interface{}         `json:"prediction,omitempty"`
	Error      string              `json:"error,omitempty"`
	Details    []errors.FieldError `json:"details,omitempty"`
}

// RespondWithSuccess sends a success envelope.
func RespondWithSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithPrediction sends a prediction result envelope.
func RespondWithPrediction(c *gin.Context, prediction interface{}) {
	c.JSON(http.StatusOK, Response{
		Success:    true,
		Prediction: prediction,
	})
}

// RespondWithError translates err into the failure envelope.
func RespondWithError(c *gin.Context, err error) {
	appErr := errors.FromError(err)
	c.JSON(appErr.StatusCode(), Response{
		Success: false,
		Error:   appErr.Message,
		Details: appErr.Fields,
	})
}
