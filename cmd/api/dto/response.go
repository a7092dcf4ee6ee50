package dto

// ErrorResponseDTO is the body of every error response.
// Error is the stable reason string from errs.Reason.
type ErrorResponseDTO struct {
	Error   string `json:"error" example:"duplicate_product"`
	Message string `json:"message,omitempty" example:"product already exists: https://www.bigbasket.com/pd/1/"`
}

// MessageResponseDTO is a plain message body.
type MessageResponseDTO struct {
	Message string `json:"message" example:"consumption logged successfully"`
}
