package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/pantrykeeper/internal/common"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	codeInvalidInput     = "invalid_input"
	codeUnauthorized     = "unauthorized"
	codeTokenExpired     = "token_expired"
	codeNotFound         = "not_found"
	codeConflict         = "conflict"
	codeStoreUnavailable = "store_unavailable"
	codeInternal         = "internal"
)

// statusOf maps a service error to its HTTP status and error code.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrorInvalidInput):
		return http.StatusBadRequest, codeInvalidInput
	case errors.Is(err, common.ErrTokenExpired), errors.Is(err, common.ErrRefreshTokenExpired):
		return http.StatusUnauthorized, codeTokenExpired
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, codeUnauthorized
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, common.ErrorConflict):
		return http.StatusConflict, codeConflict
	case errors.Is(err, common.ErrorStoreUnavailable):
		return http.StatusServiceUnavailable, codeStoreUnavailable
	default:
		return http.StatusInternalServerError, codeInternal
	}
}

// writeError replies with the mapped status. Server-side failures get a
// generic message; the cause goes to the access log through c.Error.
func writeError(c *gin.Context, err error) {
	status, code := statusOf(err)
	_ = c.Error(err)

	msg := err.Error()
	if status >= http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Code: code, Message: msg})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Code: codeInvalidInput, Message: msg})
}
