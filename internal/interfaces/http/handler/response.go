package handler

import "github.com/simbacrm/backend/internal/interfaces/http/dto"

// APIResponse mirrors the dto envelope with a typed data field so the
// OpenAPI annotations can name concrete payload types.
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse is the error envelope shape used in OpenAPI annotations.
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}
