package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/holidaytable/holidaytable/internal/auth/domain"
	connectiondomain "github.com/holidaytable/holidaytable/internal/connection/domain"
	messagingdomain "github.com/holidaytable/holidaytable/internal/messaging/domain"
	notificationdomain "github.com/holidaytable/holidaytable/internal/notification/domain"
	profiledomain "github.com/holidaytable/holidaytable/internal/profile/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidSession),
		errors.Is(err, authdomain.ErrSessionExpired),
		errors.Is(err, authdomain.ErrSessionRevoked):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, connectiondomain.ErrNotAuthorized),
		errors.Is(err, profiledomain.ErrNotOwner),
		errors.Is(err, messagingdomain.ErrNotMatched):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: forbiddenMessage(err),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	case errors.Is(err, connectiondomain.ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many invitations, slow down",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog feeds the request logger's error_type/error_code
// fields without rendering a response.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status >= 500:
		return "internal", payload.Type
	case len(payload.Errors) > 0:
		return "validation", payload.Errors[0].Code
	default:
		return "domain", payload.Type
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, connectiondomain.ErrSelfInvitation),
		errors.Is(err, connectiondomain.ErrDateNotAvailable),
		errors.Is(err, profiledomain.ErrInvalidRole),
		errors.Is(err, profiledomain.ErrInvalidDates),
		errors.Is(err, messagingdomain.ErrEmptyBody),
		errors.Is(err, messagingdomain.ErrBodyTooLong):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, connectiondomain.ErrProfileNotFound),
		errors.Is(err, connectiondomain.ErrInvitationNotFound),
		errors.Is(err, profiledomain.ErrProfileNotFound),
		errors.Is(err, notificationdomain.ErrNotificationNotFound),
		errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, connectiondomain.ErrDuplicateConnection),
		errors.Is(err, connectiondomain.ErrAlreadyResponded),
		errors.Is(err, profiledomain.ErrProfileExists),
		errors.Is(err, authdomain.ErrUserExists):
		return true
	default:
		return false
	}
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, connectiondomain.ErrDuplicateConnection):
		return "an invitation already exists between these users"
	case errors.Is(err, connectiondomain.ErrAlreadyResponded):
		return "this invitation has already been responded to"
	case errors.Is(err, profiledomain.ErrProfileExists):
		return "profile already exists"
	default:
		return "conflict"
	}
}

func forbiddenMessage(err error) string {
	if errors.Is(err, messagingdomain.ErrNotMatched) {
		return "messaging requires a matched connection"
	}
	return "forbidden"
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	switch code {
	case "self_invitation", "duplicate_connection":
		return "to_user_id"
	case "date_not_available":
		return "date"
	case "invalid_role":
		return "role"
	case "invalid_dates":
		return "available_dates"
	case "empty_body", "body_too_long":
		return "body"
	case "invalid_request":
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case "self_invitation":
		return "you cannot invite yourself"
	case "date_not_available":
		return "that date is not available"
	case "empty_body":
		return "message body is required"
	case "body_too_long":
		return "message body is too long"
	default:
		return "invalid value"
	}
}
