package transport

import "fmt"

// ErrorBody is the JSON shape of every non-2xx response.
type ErrorBody struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// FieldError is a validation failure attributable to one input field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Body() ErrorBody {
	return ErrorBody{Message: e.Message, Field: e.Field}
}
