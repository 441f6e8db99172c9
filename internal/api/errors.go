package api

import (
	stderrors "errors"
	"net/http"

	"klaso-client/internal/db"
	"klaso-client/pkg/errors"

	"github.com/gin-gonic/gin"
)

// statusOf maps the error taxonomy onto gateway status codes. Backend 4xx
// answers are passed through; anything else from the backend is a 502.
func statusOf(err error) int {
	switch {
	case stderrors.Is(err, errors.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.IsValidation(err), stderrors.Is(err, errors.ErrInvalidFileFormat):
		return http.StatusBadRequest
	case stderrors.Is(err, errors.ErrNotInCache), stderrors.Is(err, db.ErrExportNotFound):
		return http.StatusNotFound
	case errors.IsRemote(err):
		if status := errors.RemoteStatus(err); status >= 400 && status < 500 {
			return status
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
	}

	body := gin.H{"error": err.Error()}

	var verrs errors.ValidationErrors
	if stderrors.As(err, &verrs) {
		details := make([]gin.H, 0, len(verrs))
		for _, v := range verrs {
			details = append(details, gin.H{"field": v.Field, "message": v.Message})
		}
		body = gin.H{"error": "Validation failed", "details": details}
	}
	if status == http.StatusInternalServerError {
		body = gin.H{"error": "Internal server error"}
	}

	c.JSON(status, body)
}
