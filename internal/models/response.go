package models

// DataResponse wraps every successful payload.
type DataResponse struct {
	Data interface{} `json:"data"`
}

// ErrorResponse is returned for not-found and internal failures.
type ErrorResponse struct {
	Error string `json:"error" example:"Prodcuto no encontrado"`
}

// FieldError describes one failed validation check.
type FieldError struct {
	Type     string      `json:"type" example:"field"`
	Value    interface{} `json:"value"`
	Msg      string      `json:"msg" example:"ID no valido"`
	Path     string      `json:"path" example:"id"`
	Location string      `json:"location" example:"params"`
}

// ValidationErrorResponse lists every failed check of a request.
type ValidationErrorResponse struct {
	Errors []FieldError `json:"errors"`
}

// MessageResponse is used by the demo endpoint.
type MessageResponse struct {
	Msg string `json:"msg" example:"Desde API"`
}
