package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/y2750/cross-org-talent-manager-sub000/internal/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError maps a service error onto the wire. Unclassified errors are
// reported as internal without leaking their text.
func RespondError(c *gin.Context, err error) {
	status := apierr.StatusOf(err)
	code := apierr.CodeOf(err)
	msg := "internal error"
	if code != apierr.CodeInternal && err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

func RespondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: APIError{Message: message, Code: apierr.CodeInvalidArgument}})
}

func adminOnlyErr() error {
	return apierr.Unauthorized("admin role required")
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
