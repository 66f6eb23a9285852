package shared

import (
	"errors"
	"net/http"
	"strings"
)

// ErrorCode couples a numeric API code with its message template and HTTP status.
// ErrorCode values are comparable and satisfy error, so services return them
// directly and callers match them with errors.Is.
type ErrorCode struct {
	Code    int
	Key     string
	Message string
	Status  int
}

func (e ErrorCode) Error() string {
	return e.Message
}

// SuccessCode is reported in the envelope of every successful response.
const SuccessCode = 1000

var (
	ErrUncategorized = ErrorCode{Code: 9999, Key: "UNCATEGORIZED_EXCEPTION", Message: "Uncategorized error", Status: http.StatusInternalServerError}
	ErrInvalidKey    = ErrorCode{Code: 1001, Key: "INVALID_KEY", Message: "Invalid message key", Status: http.StatusBadRequest}
	ErrUserExisted   = ErrorCode{Code: 1002, Key: "USER_EXISTED", Message: "User existed", Status: http.StatusConflict}
	// ErrUsernameInvalid and the other {min} templates are rendered by Render.
	ErrUsernameInvalid  = ErrorCode{Code: 1003, Key: "USERNAME_INVALID", Message: "Username must be at least {min} characters", Status: http.StatusBadRequest}
	ErrInvalidPassword  = ErrorCode{Code: 1004, Key: "INVALID_PASSWORD", Message: "Password must be at least {min} characters", Status: http.StatusBadRequest}
	ErrUserNotExisted   = ErrorCode{Code: 1005, Key: "USER_NOT_EXISTED", Message: "User not existed", Status: http.StatusNotFound}
	ErrUnauthenticated  = ErrorCode{Code: 1006, Key: "UNAUTHENTICATED", Message: "Unauthenticated", Status: http.StatusUnauthorized}
	ErrUnauthorized     = ErrorCode{Code: 1007, Key: "UNAUTHORIZED", Message: "You do not have permission", Status: http.StatusForbidden}
	ErrInvalidDOB       = ErrorCode{Code: 1008, Key: "INVALID_DOB", Message: "Your age must be at least {min}", Status: http.StatusBadRequest}
	ErrMalformedRequest = ErrorCode{Code: 1009, Key: "MALFORMED_REQUEST", Message: "Malformed request body", Status: http.StatusBadRequest}
)

var (
	// ErrNotFound is returned by repositories when no row matches.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned by repositories on unique key violations.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// CodedError carries an ErrorCode together with its rendered message.
type CodedError struct {
	Code    ErrorCode
	Message string
}

// Render fills the {min} placeholder of code's template with param.
func Render(code ErrorCode, param string) *CodedError {
	return &CodedError{Code: code, Message: strings.ReplaceAll(code.Message, "{min}", param)}
}

func (e *CodedError) Error() string {
	return e.Message
}

func (e *CodedError) Unwrap() error {
	return e.Code
}

// CodeOf reports the ErrorCode and message carried by err. Errors without a
// code are reported as ErrUncategorized.
func CodeOf(err error) (ErrorCode, string) {
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Code, coded.Message
	}
	var code ErrorCode
	if errors.As(err, &code) {
		return code, code.Message
	}
	return ErrUncategorized, ErrUncategorized.Message
}
