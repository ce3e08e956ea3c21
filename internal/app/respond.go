package app

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"buildhub/internal/service"
	"buildhub/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var errorStatus = []struct {
	err    error
	status int
}{
	{service.ErrInvalidCredentials, http.StatusUnauthorized},
	{service.ErrAccountDisabled, http.StatusForbidden},
	{service.ErrForbidden, http.StatusForbidden},

	{service.ErrUserNotFound, http.StatusNotFound},
	{service.ErrPostNotFound, http.StatusNotFound},
	{service.ErrCategoryNotFound, http.StatusNotFound},
	{service.ErrTagNotFound, http.StatusNotFound},
	{service.ErrCommentNotFound, http.StatusNotFound},
	{service.ErrParentNotFound, http.StatusNotFound},
	{service.ErrRuleNotFound, http.StatusNotFound},
	{service.ErrSubscriberNotFound, http.StatusNotFound},
	{service.ErrNewsletterNotFound, http.StatusNotFound},
	{service.ErrProjectNotFound, http.StatusNotFound},
	{service.ErrDiaryNotFound, http.StatusNotFound},

	{service.ErrEmailTaken, http.StatusConflict},
	{service.ErrUsernameTaken, http.StatusConflict},
	{service.ErrDuplicateSlug, http.StatusConflict},
	{service.ErrNewsletterSent, http.StatusConflict},

	{service.ErrCommentsClosed, http.StatusUnprocessableEntity},
	{service.ErrReactionNotAllowed, http.StatusUnprocessableEntity},

	{service.ErrInvalidRole, http.StatusBadRequest},
	{service.ErrParentMismatch, http.StatusBadRequest},
	{service.ErrInvalidContent, http.StatusBadRequest},
	{service.ErrAuthorRequired, http.StatusBadRequest},
	{service.ErrInvalidStatus, http.StatusBadRequest},
	{service.ErrInvalidRule, http.StatusBadRequest},
	{service.ErrInvalidToken, http.StatusBadRequest},
	{service.ErrInvalidDiaryEntry, http.StatusBadRequest},
	{service.ErrQueryTooShort, http.StatusBadRequest},

	{service.ErrUploadsDisabled, http.StatusServiceUnavailable},
}

// respondError maps service errors to HTTP statuses. Anything unknown is
// logged and reported as a 500 without leaking details.
func respondError(c *gin.Context, err error) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			util.ErrorResponse(c, e.status, err.Error(), nil)
			return
		}
	}

	zap.L().Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err))
	util.InternalServerError(c, "Internal server error")
}

// bindJSON decodes the body into req and writes a 400 with per-field
// messages when validation fails.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			util.ErrorResponse(c, http.StatusBadRequest, "Validation failed", fieldErrors(verrs))
			return false
		}
		util.BadRequest(c, "Invalid request body")
		return false
	}
	return true
}

func fieldErrors(verrs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[jsonFieldName(fe.Field())] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "alphanum":
		return "must contain only letters and digits"
	case "datetime":
		return fmt.Sprintf("must match the format %s", fe.Param())
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}

// jsonFieldName turns a Go field name such as AuthorEmail into author_email
func jsonFieldName(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && !(field[i-1] >= 'A' && field[i-1] <= 'Z') {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
