package models

// APIResponse is the uniform envelope every endpoint returns. The
// storefront decides toast/alert rendering from it, so errors travel
// here rather than as bare HTTP failures. Details is for logs and
// support tooling; handlers must keep Error generic for end users.
type APIResponse struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Error      string      `json:"error,omitempty"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"status_code,omitempty"`
}

// OK wraps data in a successful envelope.
func OK(data interface{}, message string) APIResponse {
	return APIResponse{Success: true, Data: data, Message: message}
}

// Fail wraps a user-facing error message in a failed envelope.
func Fail(err string, statusCode int) APIResponse {
	return APIResponse{Success: false, Error: err, StatusCode: statusCode}
}
