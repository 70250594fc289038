package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeMissingParam       ErrorCode = "COMMON_017"
)

// Market Module Error Codes
const (
	ErrCodeUpstream         ErrorCode = "MARKET_001"
	ErrCodeUpstreamTimeout  ErrorCode = "MARKET_002"
	ErrCodeUpstreamResponse ErrorCode = "MARKET_003"
	ErrCodeNameIDNotFound   ErrorCode = "MARKET_004"
)

// Storage Module Error Codes
const (
	ErrCodeStorage            ErrorCode = "STORE_001"
	ErrCodeStorageKeyNotFound ErrorCode = "STORE_002"
	ErrCodeStorageBackend     ErrorCode = "STORE_003"
)

// Refresh Module Error Codes
const (
	ErrCodeRefreshInProgress ErrorCode = "REFRESH_001"
	ErrCodeRefreshNotRunning ErrorCode = "REFRESH_002"
	ErrCodeRefreshLocked     ErrorCode = "REFRESH_003"
)

// Aliases
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeMissingParam:       http.StatusBadRequest,

	// Upstream failures are relayed as 500 to keep the proxy contract.
	ErrCodeUpstream:         http.StatusInternalServerError,
	ErrCodeUpstreamTimeout:  http.StatusInternalServerError,
	ErrCodeUpstreamResponse: http.StatusInternalServerError,
	ErrCodeNameIDNotFound:   http.StatusNotFound,

	ErrCodeStorage:            http.StatusInternalServerError,
	ErrCodeStorageKeyNotFound: http.StatusNotFound,
	ErrCodeStorageBackend:     http.StatusServiceUnavailable,

	ErrCodeRefreshInProgress: http.StatusConflict,
	ErrCodeRefreshNotRunning: http.StatusConflict,
	ErrCodeRefreshLocked:     http.StatusConflict,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeCacheError:         "cache error",
	ErrCodeMissingParam:       "required parameter missing",

	ErrCodeUpstream:         "market API request failed",
	ErrCodeUpstreamTimeout:  "market API request timed out",
	ErrCodeUpstreamResponse: "market API returned an unreadable response",
	ErrCodeNameIDNotFound:   "item name id not found",

	ErrCodeStorage:            "storage error",
	ErrCodeStorageKeyNotFound: "storage key not found",
	ErrCodeStorageBackend:     "storage backend unavailable",

	ErrCodeRefreshInProgress: "price refresh already in progress",
	ErrCodeRefreshNotRunning: "no price refresh running",
	ErrCodeRefreshLocked:     "price refresh locked by another instance",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
