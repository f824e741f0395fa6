package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"prizedraw/domain/apperrors"
)

type errorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func statusForKind(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation, apperrors.KindState, apperrors.KindInsufficientFunds:
		return http.StatusBadRequest
	case apperrors.KindUnauthorized, apperrors.KindSignature:
		return http.StatusUnauthorized
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps a typed error to its status code and stable body. Untyped
// errors are logged with context and surfaced as a generic 500 so internals
// never leak.
func writeError(c *gin.Context, err error) {
	if typed := apperrors.As(err); typed != nil {
		c.JSON(statusForKind(typed.Kind), errorResponse{Error: errorBody{
			Code:    typed.Code,
			Message: typed.Message,
			Details: typed.Details,
		}})
		return
	}

	log.WithError(err).WithFields(log.Fields{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
	}).Error("Unhandled error")
	c.JSON(http.StatusInternalServerError, errorResponse{Error: errorBody{
		Code:    "internal_error",
		Message: "internal server error",
	}})
}

func abortWithError(c *gin.Context, err error) {
	writeError(c, err)
	c.Abort()
}
