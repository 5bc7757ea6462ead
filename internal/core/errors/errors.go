package errors

const (
	HttpInternalError         = "internal_error"
	HttpInvalidQueryError     = "invalid_query"
	HttpSchemaNotFoundError   = "schema_not_found"
	HttpRunInProgressError    = "run_in_progress"
	HttpInputUnavailableError = "input_unavailable"
	HttpComputationError      = "computation_failed"
	HttpPartialPublishError   = "partial_publish"
)

// ErrorResponse is the error response body for API errors.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
