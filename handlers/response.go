package handlers

import (
	"SmartClinic/middlewares"
	"SmartClinic/services"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps a service error onto its HTTP status and envelope.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		middlewares.RespondJSON(c, http.StatusBadRequest, verr.Error(), gin.H{"errors": verr.Fields})
	case errors.Is(err, services.ErrUnauthorized),
		errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrRoleMismatch):
		middlewares.RespondJSON(c, http.StatusUnauthorized, err.Error(), nil)
	case errors.Is(err, services.ErrForbidden):
		middlewares.RespondJSON(c, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, services.ErrNotFound):
		middlewares.RespondJSON(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, services.ErrDuplicateEmail), errors.Is(err, services.ErrHospitalExists):
		middlewares.RespondJSON(c, http.StatusConflict, err.Error(), nil)
	default:
		log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		middlewares.RespondJSON(c, http.StatusInternalServerError, "internal server error", nil)
	}
}

// badRequest answers a malformed body or parameter.
func badRequest(c *gin.Context, message string) {
	middlewares.RespondJSON(c, http.StatusBadRequest, message, nil)
}

// paramID parses a positive numeric path parameter, answering 400 when it is not.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
