// Package handlers implements the HTTP handlers of the scafsplit API.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/scaffold-split/pkg/errors"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// writeAppError maps err onto its HTTP status.  Errors without an AppError in
// the chain and server-side failures are masked.
func writeAppError(c *gin.Context, err error) {
	_ = c.Error(err)

	var ae *errors.AppError
	if !errors.As(err, &ae) {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    errors.ErrCodeInternal.String(),
			Message: errors.DefaultMessageForCode(errors.ErrCodeInternal),
		})
		return
	}

	status := errors.HTTPStatusForCode(ae.Code)
	if status >= http.StatusInternalServerError && ae.Code != errors.ErrCodeServiceUnavailable {
		c.JSON(status, ErrorResponse{
			Code:    ae.Code.String(),
			Message: errors.DefaultMessageForCode(ae.Code),
		})
		return
	}
	c.JSON(status, ErrorResponse{Code: ae.Code.String(), Message: ae.Message, Detail: ae.Detail})
}

// writeBindError reports a request body that could not be decoded.
func writeBindError(c *gin.Context, err error) {
	writeAppError(c, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body").
		WithDetail(err.Error()))
}

// parseLimit reads the limit query parameter, clamped to [1, maxListLimit].
func parseLimit(c *gin.Context) int {
	limit := defaultListLimit
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return limit
}

//Personal.AI order the ending
