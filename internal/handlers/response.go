package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/parlatrack/backend/internal/pkg/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondServiceError maps the service error taxonomy onto transport
// status codes.
func RespondServiceError(c *gin.Context, err error) {
	var refErr *apierr.ReferentialError
	var conflictErr *apierr.ConflictError
	switch {
	case errors.Is(err, apierr.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, apierr.ErrUnauthorized):
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, apierr.ErrInvalidArgument):
		RespondError(c, http.StatusUnprocessableEntity, "invalid_payload", err)
	case errors.As(err, &refErr):
		RespondError(c, http.StatusConflict, "referential_failure", err)
	case errors.As(err, &conflictErr):
		RespondError(c, http.StatusConflict, "concurrent_conflict", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal", err)
	}
}
