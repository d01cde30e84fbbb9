package responses

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// SuccessResponse represents a standard success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// ListResponse wraps a list of items
type ListResponse struct {
	Object string      `json:"object"`
	Data   interface{} `json:"data"`
}
