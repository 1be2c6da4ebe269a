package tools

// Error codes for tool failures. Registry codes (NOT_FOUND, INVALID_PARAMETER,
// TIMEOUT, ...) are used as is.
const (
	ErrCodeDivisionByZero   = "DIVISION_BY_ZERO"
	ErrCodeEmptyList        = "EMPTY_LIST"
	ErrCodeInvalidPrecision = "INVALID_PRECISION"
	ErrCodeInvalidTimezone  = "INVALID_TIMEZONE"
	ErrCodeInvalidDuration  = "INVALID_DURATION"
	ErrCodeDurationTooLong  = "DURATION_TOO_LONG"
	ErrCodeSimulatedFailure = "SIMULATED_FAILURE"
	ErrCodeInvalidRate      = "INVALID_RATE"
	ErrCodeRandomFailure    = "RANDOM_FAILURE"
	ErrCodeInvalidJSON      = "INVALID_JSON"
	ErrCodeInvalidDataType  = "INVALID_DATA_TYPE"
	ErrCodeSortError        = "SORT_ERROR"
	ErrCodeQueryError       = "QUERY_ERROR"
	ErrCodeInvalidSchema    = "INVALID_SCHEMA"
	ErrCodeEmptyTitle       = "EMPTY_TITLE"
	ErrCodeInvalidCount     = "INVALID_COUNT"
	ErrCodeStoreUnavailable = "STORE_UNAVAILABLE"
)
