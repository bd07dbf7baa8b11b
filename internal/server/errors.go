package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	attendancedomain "github.com/smallbiznis/gymdesk/internal/attendance/domain"
	authdomain "github.com/smallbiznis/gymdesk/internal/auth/domain"
	"github.com/smallbiznis/gymdesk/internal/authorization"
	dashboarddomain "github.com/smallbiznis/gymdesk/internal/dashboard/domain"
	memberdomain "github.com/smallbiznis/gymdesk/internal/member/domain"
	paymentdomain "github.com/smallbiznis/gymdesk/internal/payment/domain"
	plandomain "github.com/smallbiznis/gymdesk/internal/plan/domain"
	routinedomain "github.com/smallbiznis/gymdesk/internal/routine/domain"
	trainerdomain "github.com/smallbiznis/gymdesk/internal/trainer/domain"
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
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrServiceUnavailable = errors.New("service_unavailable")
	ErrRateLimited        = errors.New("rate_limited")
)

// validationSentinels are matched in order; the first hit becomes the
// error code reported to the client.
var validationSentinels = []error{
	ErrInvalidRequest,

	authdomain.ErrInvalidName,
	authdomain.ErrInvalidEmail,
	authdomain.ErrWeakPassword,
	authdomain.ErrInvalidRole,

	memberdomain.ErrInvalidID,
	memberdomain.ErrInvalidName,
	memberdomain.ErrInvalidPhone,
	memberdomain.ErrInvalidEmail,
	memberdomain.ErrInvalidStatus,
	memberdomain.ErrInvalidPlan,
	memberdomain.ErrInvalidTrainer,
	memberdomain.ErrInvalidTitle,

	trainerdomain.ErrInvalidID,
	trainerdomain.ErrInvalidName,
	trainerdomain.ErrInvalidPhone,
	trainerdomain.ErrInvalidEmail,
	trainerdomain.ErrInvalidExperience,
	trainerdomain.ErrInvalidSalary,

	plandomain.ErrInvalidID,
	plandomain.ErrInvalidName,
	plandomain.ErrInvalidDuration,
	plandomain.ErrInvalidPrice,
	plandomain.ErrInvalidFeatures,

	routinedomain.ErrInvalidMember,
	routinedomain.ErrInvalidTrainer,
	routinedomain.ErrInvalidName,
	routinedomain.ErrInvalidExercise,

	attendancedomain.ErrInvalidMember,

	paymentdomain.ErrInvalidMember,
	paymentdomain.ErrInvalidTotalAmount,
	paymentdomain.ErrInvalidPaidAmount,
	paymentdomain.ErrPaidExceedsTotal,
	paymentdomain.ErrPaidExceedsOrder,
	paymentdomain.ErrInvalidMethod,
	paymentdomain.ErrInvalidStatus,
	paymentdomain.ErrInvalidAmount,
	paymentdomain.ErrInvalidOrderID,
	paymentdomain.ErrInvalidPaymentID,
	paymentdomain.ErrInvalidPayload,
	paymentdomain.ErrOrderMemberMissing,

	dashboarddomain.ErrWindowTooLarge,
}

// validationFields names the request field for codes that do not follow
// the invalid_<field> convention.
var validationFields = map[string]string{
	authdomain.ErrWeakPassword.Error():        "password",
	paymentdomain.ErrPaidExceedsTotal.Error(): "paidAmount",
	paymentdomain.ErrPaidExceedsOrder.Error(): "paidAmount",
	dashboarddomain.ErrWindowTooLarge.Error(): "months",
}

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
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	var checkedIn *attendancedomain.AlreadyCheckedInError
	if errors.As(err, &checkedIn) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: checkedIn.Error(),
			Errors: []ValidationError{{
				Field:   "memberId",
				Code:    attendancedomain.ErrAlreadyCheckedIn.Error(),
				Message: checkedIn.Error(),
			}},
		}
	}

	if code, ok := validationErrorCode(err); ok {
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
	case errors.Is(err, paymentdomain.ErrSignatureMismatch):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_signature",
			Message: "signature verification failed",
		}
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidToken),
		errors.Is(err, authorization.ErrInvalidActor):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden),
		errors.Is(err, memberdomain.ErrNotAssigned):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, authdomain.ErrUserExists),
		errors.Is(err, memberdomain.ErrEmailTaken),
		errors.Is(err, plandomain.ErrCodeTaken):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case errors.Is(err, paymentdomain.ErrGateway),
		errors.Is(err, paymentdomain.ErrGatewayNotConfigured):
		return http.StatusInternalServerError, errorPayload{
			Type:    "gateway_error",
			Message: "payment gateway error",
		}
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog feeds the request log with the same type and code the
// client sees, without the error text.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	if status >= http.StatusInternalServerError && payload.Type == "internal_error" {
		return "internal_error", "internal_error"
	}
	return payload.Type, code
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func validationErrorCode(err error) (string, bool) {
	for _, sentinel := range validationSentinels {
		if errors.Is(err, sentinel) {
			return sentinel.Error(), true
		}
	}
	return "", false
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, memberdomain.ErrNotFound),
		errors.Is(err, trainerdomain.ErrNotFound),
		errors.Is(err, plandomain.ErrNotFound),
		errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, authdomain.ErrUserExists):
		return "user already exists"
	case errors.Is(err, memberdomain.ErrEmailTaken):
		return "email already registered"
	case errors.Is(err, plandomain.ErrCodeTaken):
		return "a plan with this name already exists"
	default:
		return "conflict"
	}
}

func validationErrorField(code string) string {
	if field, ok := validationFields[code]; ok {
		return field
	}
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return lowerCamel(strings.TrimPrefix(code, "invalid_"))
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case authdomain.ErrWeakPassword.Error():
		return "password must be at least 6 characters"
	case paymentdomain.ErrPaidExceedsTotal.Error():
		return "paid amount exceeds total amount"
	case paymentdomain.ErrPaidExceedsOrder.Error():
		return "paid amount exceeds the amount charged"
	case dashboarddomain.ErrWindowTooLarge.Error():
		return "months exceeds the longest supported window"
	default:
		return "invalid value"
	}
}

// lowerCamel turns member_id into memberId to match request bodies.
func lowerCamel(snake string) string {
	parts := strings.Split(snake, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] == "" {
			continue
		}
		parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
	}
	return strings.Join(parts, "")
}
