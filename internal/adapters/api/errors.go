package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/andrescamacho/imperium/internal/application/common"
	"github.com/andrescamacho/imperium/internal/domain/shared"
)

const (
	codeUnauthenticated = "UNAUTHENTICATED"
	codeRateLimited     = "RATE_LIMITED"
	codeInternal        = "INTERNAL"
)

// errorResponse is the body of every non-2xx reply
type errorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Reasons []string `json:"reasons,omitempty"`
}

// statusFor maps a domain error code to an HTTP status
func statusFor(code shared.ErrorCode) int {
	switch code {
	case shared.CodeNotFound, shared.CodeNotOwned:
		return http.StatusNotFound
	case shared.CodeAlreadyInProgress:
		return http.StatusConflict
	case shared.CodeValidationFailed,
		shared.CodeInvalidLocation,
		shared.CodePrerequisitesNotMet,
		shared.CodeInsufficientFunds,
		shared.CodeInvalidState,
		shared.CodeNotCancellableYet:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// abortWithError writes the error reply for err. Errors without a domain
// code are logged and reported as INTERNAL without their message.
func abortWithError(c *gin.Context, err error) {
	code := shared.CodeOf(err)
	if code == "" {
		common.LoggerFromContext(c.Request.Context()).Error("request failed", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{
			Code:    codeInternal,
			Message: "internal error",
		})
		return
	}

	status := statusFor(code)
	reasons := shared.ReasonsOf(err)
	if len(reasons) == 0 && status == http.StatusBadRequest {
		reasons = []string{err.Error()}
	}
	c.AbortWithStatusJSON(status, errorResponse{
		Code:    string(code),
		Message: err.Error(),
		Reasons: reasons,
	})
}

// abortWithBindError reports a malformed request body or query string
func abortWithBindError(c *gin.Context, err error) {
	reasons := []string{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			reasons = append(reasons, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	} else {
		reasons = append(reasons, err.Error())
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{
		Code:    string(shared.CodeValidationFailed),
		Message: "malformed request",
		Reasons: reasons,
	})
}
