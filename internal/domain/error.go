package domain

import (
	stderrors "errors"

	apperror "furnistock/internal/errors"
)

// ErrorResponse é a estrutura padronizada para respostas de erro na API.
// Reason carrega o motivo específico (ex.: INSUFFICIENT_STOCK) para o cliente decidir o que fazer.
type ErrorResponse struct {
	Code      int    `json:"code" example:"409"`
	Category  string `json:"category" example:"CONFLICT"`
	Reason    string `json:"reason" example:"INSUFFICIENT_STOCK"`
	Message   string `json:"message" example:"Conflito de estado: estoque insuficiente: disponível 0, solicitado 1"`
	Available *int   `json:"available,omitempty"`
	Requested *int   `json:"requested,omitempty"`
}

// NewErrorResponse traduz qualquer erro para o corpo de resposta padronizado.
func NewErrorResponse(err error) ErrorResponse {
	status, category, message := apperror.MapToHTTPStatus(err)
	resp := ErrorResponse{
		Code:     status,
		Category: category,
		Reason:   string(apperror.ReasonOf(err)),
		Message:  message,
	}

	var conflict *apperror.ConflictError
	if stderrors.As(err, &conflict) {
		available, requested := conflict.Available, conflict.Requested
		resp.Available = &available
		resp.Requested = &requested
	}
	return resp
}
