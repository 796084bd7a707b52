package delivery

import (
	"errors"
	"net/http"

	"grouporder/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Response struct {
	Status  string            `json:"Status"`
	Message string            `json:"Message"`
	Data    interface{}       `json:"Data,omitempty"`
	Errors  map[string]string `json:"Errors,omitempty"`
}

func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Status:  "Success",
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Status:  "Fail",
		Message: message,
	})
}

func mapErrorToStatus(err error) int {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrInUse):
		return http.StatusConflict
	case domain.IsUpstream(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// FailWithError logs err and writes the envelope for its kind. Validation
// failures carry their per-field messages; server errors hide the cause.
func FailWithError(c *gin.Context, log *logrus.Logger, message string, err error) {
	statusCode := mapErrorToStatus(err)
	entry := log.WithFields(logrus.Fields{
		"path":        c.Request.URL.Path,
		"status_code": statusCode,
	})

	resp := Response{Status: "Fail", Message: message + ": " + err.Error()}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		resp.Errors = ve.Fields
	}
	if statusCode >= 500 {
		entry.Errorf("%s: %v", message, err)
		resp.Message = message
		_ = c.Error(err)
	} else {
		entry.Warnf("%s: %v", message, err)
	}
	c.JSON(statusCode, resp)
}
