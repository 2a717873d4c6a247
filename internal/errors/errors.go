package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Reason identifica o tipo específico de falha dentro de uma categoria.
// É o valor que o chamador (Handler, cliente do serviço) usa para decidir o que fazer.
type Reason string

const (
	// Erros de entrada da fábrica de variantes (nunca re-tentados).
	ReasonUnknownVariantKind   Reason = "UNKNOWN_VARIANT_KIND"
	ReasonMissingAttribute     Reason = "MISSING_ATTRIBUTE"
	ReasonInvalidAttributeType Reason = "INVALID_ATTRIBUTE_TYPE"
	ReasonInvalidQuantity      Reason = "INVALID_QUANTITY"
	ReasonInvalidDirection     Reason = "INVALID_DIRECTION"

	// Falhas de regra de negócio.
	ReasonItemNotFound      Reason = "ITEM_NOT_FOUND"
	ReasonInsufficientStock Reason = "INSUFFICIENT_STOCK"

	// Falha transitória de infraestrutura (única elegível para retry).
	ReasonPersistenceFailure Reason = "PERSISTENCE_FAILURE"

	// Erros de entrada das consultas.
	ReasonUnknownColumn Reason = "UNKNOWN_COLUMN"
	ReasonInvalidRange  Reason = "INVALID_RANGE"

	ReasonInvalidInput Reason = "INVALID_INPUT"
	ReasonUnauthorized Reason = "UNAUTHORIZED"
	ReasonForbidden    Reason = "FORBIDDEN"
	ReasonInternal     Reason = "INTERNAL"
	ReasonUnknown      Reason = "UNKNOWN"
)

// AppError é a interface central para todos os erros customizados do FurniStock.
// Ela permite que o código externo (Handler) acesse a Categoria, o Motivo e a Mensagem do erro.
type AppError interface {
	Error() string    // Implementa a interface error padrão do Go
	Category() string // Categoria do erro (e.g., "VALIDATION_ERROR", "NOT_FOUND", "INTERNAL_ERROR")
	Reason() Reason   // Tipo específico da falha
	HTTPStatus() int  // Código HTTP sugerido para o Handler
	Unwrap() error    // Permite encapsular erros subjacentes (original error)
}

// --- Tipos de Erro Específicos (Erros de Domínio) ---

// ValidationError representa falhas de validação de dados de entrada.
type ValidationError struct {
	Code Reason
	Msg  string
}

func (e *ValidationError) Error() string    { return fmt.Sprintf("Erro de Validação: %s", e.Msg) }
func (e *ValidationError) Category() string { return "VALIDATION_ERROR" }
func (e *ValidationError) Reason() Reason   { return e.Code }
func (e *ValidationError) HTTPStatus() int  { return http.StatusBadRequest } // 400
func (e *ValidationError) Unwrap() error    { return nil }

// NewValidationError cria um novo erro de validação genérico.
func NewValidationError(msg string) AppError {
	return &ValidationError{Code: ReasonInvalidInput, Msg: msg}
}

// NewUnknownVariantKindError rejeita um tipo de móvel fora do conjunto fechado.
func NewUnknownVariantKindError(kind string) AppError {
	return &ValidationError{Code: ReasonUnknownVariantKind, Msg: fmt.Sprintf("tipo de móvel desconhecido: %q", kind)}
}

// NewMissingAttributeError indica que um atributo obrigatório do tipo não foi informado.
func NewMissingAttributeError(kind, attribute string) AppError {
	return &ValidationError{Code: ReasonMissingAttribute, Msg: fmt.Sprintf("atributo obrigatório %q ausente para %s", attribute, kind)}
}

// NewInvalidAttributeTypeError indica que o valor de um atributo não tem o tipo esperado.
func NewInvalidAttributeTypeError(attribute, expected string, got interface{}) AppError {
	return &ValidationError{
		Code: ReasonInvalidAttributeType,
		Msg:  fmt.Sprintf("atributo %q deve ser %s, recebido %T", attribute, expected, got),
	}
}

func NewInvalidQuantityError(quantity int) AppError {
	return &ValidationError{Code: ReasonInvalidQuantity, Msg: fmt.Sprintf("a quantidade deve estar entre 1 e 2147483647, recebido %d", quantity)}
}

// NewQuantityLimitError é retornado quando o ajuste levaria a quantidade além do limite da coluna.
func NewQuantityLimitError(current, delta, max int) AppError {
	return &ValidationError{Code: ReasonInvalidQuantity, Msg: fmt.Sprintf("ajuste de %d sobre %d excede o máximo de %d unidades", delta, current, max)}
}

func NewInvalidDirectionError(direction string) AppError {
	return &ValidationError{Code: ReasonInvalidDirection, Msg: fmt.Sprintf("direção de ajuste desconhecida: %q", direction)}
}

// NewUnknownColumnError protege as consultas contra nomes de coluna arbitrários.
func NewUnknownColumnError(column string) AppError {
	return &ValidationError{Code: ReasonUnknownColumn, Msg: fmt.Sprintf("coluna desconhecida: %q", column)}
}

// NewInvalidRangeError rejeita uma faixa de preço com mínimo maior que o máximo.
func NewInvalidRangeError(min, max string) AppError {
	return &ValidationError{Code: ReasonInvalidRange, Msg: fmt.Sprintf("faixa de preço inválida: mínimo %s maior que máximo %s", min, max)}
}

// NotFoundError representa a ausência de um recurso solicitado.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string    { return fmt.Sprintf("Recurso não encontrado: %s", e.Msg) }
func (e *NotFoundError) Category() string { return "NOT_FOUND" }
func (e *NotFoundError) Reason() Reason   { return ReasonItemNotFound }
func (e *NotFoundError) HTTPStatus() int  { return http.StatusNotFound } // 404
func (e *NotFoundError) Unwrap() error    { return nil }

// NewNotFoundError cria um novo erro de item de estoque não encontrado.
func NewNotFoundError(msg string) AppError {
	return &NotFoundError{Msg: msg}
}

// ConflictError representa um conflito com o estado atual do estoque.
type ConflictError struct {
	Msg       string
	Available int
	Requested int
}

func (e *ConflictError) Error() string    { return fmt.Sprintf("Conflito de estado: %s", e.Msg) }
func (e *ConflictError) Category() string { return "CONFLICT" }
func (e *ConflictError) Reason() Reason   { return ReasonInsufficientStock }
func (e *ConflictError) HTTPStatus() int  { return http.StatusConflict } // 409
func (e *ConflictError) Unwrap() error    { return nil }

// NewInsufficientStockError é retornado quando a reserva deixaria a quantidade negativa.
func NewInsufficientStockError(available, requested int) AppError {
	return &ConflictError{
		Msg:       fmt.Sprintf("estoque insuficiente: disponível %d, solicitado %d", available, requested),
		Available: available,
		Requested: requested,
	}
}

// UnauthorizedError representa falhas de autenticação (401) ou autorização (403).
type UnauthorizedError struct {
	Msg       string
	Forbidden bool
}

func (e *UnauthorizedError) Error() string    { return fmt.Sprintf("Não autorizado: %s", e.Msg) }
func (e *UnauthorizedError) Category() string { return "UNAUTHORIZED" }
func (e *UnauthorizedError) Reason() Reason {
	if e.Forbidden {
		return ReasonForbidden
	}
	return ReasonUnauthorized
}
func (e *UnauthorizedError) HTTPStatus() int {
	if e.Forbidden {
		return http.StatusForbidden
	}
	return http.StatusUnauthorized
}
func (e *UnauthorizedError) Unwrap() error { return nil }

func NewUnauthorizedError(msg string) AppError {
	return &UnauthorizedError{Msg: msg}
}

func NewForbiddenError(msg string) AppError {
	return &UnauthorizedError{Msg: msg, Forbidden: true}
}

// --- Tipos de Erro de Infraestrutura (Encapsulamento) ---

// InternalError representa falhas inesperadas no servidor, serviço ou repositório.
type InternalError struct {
	Code Reason
	Msg  string
	Err  error // Erro original subjacente (e.g., erro do driver SQL)
}

func (e *InternalError) Error() string    { return fmt.Sprintf("Erro Interno: %s", e.Msg) }
func (e *InternalError) Category() string { return "INTERNAL_ERROR" }
func (e *InternalError) Reason() Reason   { return e.Code }
func (e *InternalError) HTTPStatus() int  { return http.StatusInternalServerError } // 500
func (e *InternalError) Unwrap() error    { return e.Err }

// NewInternalError cria um erro de servidor (para falhas de lógica ou código não esperado).
func NewInternalError(msg string, err error) AppError {
	return &InternalError{Code: ReasonInternal, Msg: msg, Err: err}
}

// NewDBError cria um PersistenceFailure: a transação já foi desfeita e o chamador pode re-tentar.
func NewDBError(msg string, err error) AppError {
	detail := msg
	if err != nil {
		detail = fmt.Sprintf("%s (DB): %s", msg, err.Error())
	}
	return &InternalError{Code: ReasonPersistenceFailure, Msg: detail, Err: err}
}

// --- Helpers ---

// ReasonOf extrai o motivo de qualquer erro da cadeia. Erros não tipados viram ReasonUnknown.
func ReasonOf(err error) Reason {
	if err == nil {
		return ""
	}
	var appErr AppError
	if stderrors.As(err, &appErr) {
		return appErr.Reason()
	}
	return ReasonUnknown
}

// IsReason informa se o erro carrega o motivo indicado.
func IsReason(err error, reason Reason) bool {
	return err != nil && ReasonOf(err) == reason
}

// IsRetryable é verdadeiro apenas para PersistenceFailure.
func IsRetryable(err error) bool {
	return IsReason(err, ReasonPersistenceFailure)
}

// MapToHTTPStatus recebe um erro e o traduz para o código HTTP e corpo de resposta.
func MapToHTTPStatus(err error) (int, string, string) {
	var appErr AppError
	if stderrors.As(err, &appErr) {
		// O erro é tipado (ValidationError, NotFoundError, etc.)
		return appErr.HTTPStatus(), appErr.Category(), appErr.Error()
	}

	// Erro não tipado: tratar como erro interno genérico.
	return http.StatusInternalServerError, "UNKNOWN_ERROR", "Ocorreu um erro inesperado."
}
