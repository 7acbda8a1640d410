package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/yungbote/cardmarket-backend/internal/pkg/errors"
	"github.com/yungbote/cardmarket-backend/internal/pkg/logger"
	"github.com/yungbote/cardmarket-backend/internal/platform/apierr"
)

// FromError maps any service error onto a status and a stable code.
func FromError(err error) *apierr.Error {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return ae
	}
	if le := apierr.FromLedger(err); le != nil {
		return le
	}
	switch {
	case errors.Is(err, pkgerrors.ErrInvalidArgument):
		return apierr.New(http.StatusBadRequest, "invalid_request", err)
	case errors.Is(err, pkgerrors.ErrUnauthorized):
		return apierr.New(http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, pkgerrors.ErrNotFound):
		return apierr.New(http.StatusNotFound, "not_found", err)
	case errors.Is(err, pkgerrors.ErrConflict):
		return apierr.New(http.StatusConflict, "conflict", err)
	}
	return apierr.New(http.StatusInternalServerError, "internal_error", err)
}

// RespondAPIError renders err through FromError. Internal errors are logged and
// their detail is not sent to the client.
func RespondAPIError(c *gin.Context, log *logger.Logger, err error) {
	ae := FromError(err)
	if ae.Status >= http.StatusInternalServerError {
		if log != nil {
			log.Error("Request failed", "path", c.FullPath(), "error", err)
		}
		RespondError(c, ae.Status, ae.Code, errors.New("internal error"))
		return
	}
	RespondError(c, ae.Status, ae.Code, ae.Err)
}
