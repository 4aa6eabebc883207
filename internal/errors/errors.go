package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrTokenInvalid is returned when a token fails signature, type or claim checks.
	ErrTokenInvalid = errors.New("token is invalid")
	// ErrTokenExpired is returned when a token is past its expiry.
	ErrTokenExpired = errors.New("token has expired")
	// ErrStoreUnavailable is returned when the data store cannot answer in time.
	ErrStoreUnavailable = errors.New("data store unavailable")
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrForbidden is returned when the caller's role does not allow the operation.
	ErrForbidden = errors.New("operation not allowed for this role")
	// ErrUserAlreadyExists is returned when email or username is taken.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrDuplicateCode is returned when a catalogue code is taken.
	ErrDuplicateCode = errors.New("code already in use")
	// ErrInvalidRole is returned for a role outside the enumeration.
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidReference is returned when a referenced record is missing or of the wrong kind.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrInUse is returned when deleting a record that others depend on.
	ErrInUse = errors.New("record is referenced by other records")
	// ErrAlreadyEnrolled is returned for a duplicate inscription.
	ErrAlreadyEnrolled = errors.New("student already has an inscription for this filiere and year")
	// ErrInvalidStatus is returned for a forbidden inscription status transition.
	ErrInvalidStatus = errors.New("invalid inscription status transition")
	// ErrRejectionReasonRequired is returned when rejecting without a reason.
	ErrRejectionReasonRequired = errors.New("rejection reason is required")
	// ErrInvalidGrade is returned for a grade outside 0..20.
	ErrInvalidGrade = errors.New("grade must be between 0 and 20")
	// ErrInvalidAcademicYear is returned for a malformed academic year.
	ErrInvalidAcademicYear = errors.New("academic year must look like 2024-2025")
	// ErrStudentNotEnrolled is returned when grading a student outside the module's filiere.
	ErrStudentNotEnrolled = errors.New("student has no validated inscription for this module")
	// ErrPasswordTooLong is returned for a password bcrypt cannot hash.
	ErrPasswordTooLong = errors.New("password must be at most 72 bytes")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrTokenExpired):
		return NewHTTPError(http.StatusUnauthorized, ErrTokenExpired.Error(), "TOKEN_EXPIRED")
	case errors.Is(err, ErrTokenInvalid):
		return NewHTTPError(http.StatusUnauthorized, ErrTokenInvalid.Error(), "TOKEN_INVALID")
	case errors.Is(err, ErrStoreUnavailable):
		return NewHTTPError(http.StatusServiceUnavailable, ErrStoreUnavailable.Error(), "STORE_UNAVAILABLE")
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, ErrNotFound.Error(), "NOT_FOUND")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, ErrForbidden.Error(), "FORBIDDEN")
	case errors.Is(err, ErrUserAlreadyExists):
		return NewHTTPError(http.StatusConflict, ErrUserAlreadyExists.Error(), "USER_ALREADY_EXISTS")
	case errors.Is(err, ErrDuplicateCode):
		return NewHTTPError(http.StatusConflict, ErrDuplicateCode.Error(), "DUPLICATE_CODE")
	case errors.Is(err, ErrAlreadyEnrolled):
		return NewHTTPError(http.StatusConflict, ErrAlreadyEnrolled.Error(), "ALREADY_ENROLLED")
	case errors.Is(err, ErrInUse):
		return NewHTTPError(http.StatusConflict, ErrInUse.Error(), "IN_USE")
	case errors.Is(err, ErrInvalidRole):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidRole.Error(), "INVALID_ROLE")
	case errors.Is(err, ErrInvalidReference):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_REFERENCE")
	case errors.Is(err, ErrInvalidStatus):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidStatus.Error(), "INVALID_STATUS")
	case errors.Is(err, ErrRejectionReasonRequired):
		return NewHTTPError(http.StatusBadRequest, ErrRejectionReasonRequired.Error(), "REJECTION_REASON_REQUIRED")
	case errors.Is(err, ErrInvalidGrade):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidGrade.Error(), "INVALID_GRADE")
	case errors.Is(err, ErrInvalidAcademicYear):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidAcademicYear.Error(), "INVALID_ACADEMIC_YEAR")
	case errors.Is(err, ErrStudentNotEnrolled):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "STUDENT_NOT_ENROLLED")
	case errors.Is(err, ErrPasswordTooLong):
		return NewHTTPError(http.StatusBadRequest, ErrPasswordTooLong.Error(), "PASSWORD_TOO_LONG")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
