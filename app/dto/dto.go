// Package dto defines request and response payloads exchanged with the HTTP layer
package dto

// APIResponse is the common response envelope
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

// Error carries a machine-readable code alongside the message
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SuccessResponse builds a success envelope
func SuccessResponse(message string, data any) APIResponse {
	return APIResponse{Success: true, Message: message, Data: data}
}

// ErrorResponse builds an error envelope
func ErrorResponse(code, message string) APIResponse {
	return APIResponse{Success: false, Error: &Error{Code: code, Message: message}}
}
