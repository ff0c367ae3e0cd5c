package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error é um erro de aplicação com código. Para errors.Is, dois erros são
// iguais quando os códigos coincidem.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Cause   error  `json:"-"`
}

// Code identifica uma classe de falha.
type Code string

const (
	CodeNoTenant           Code = "NO_TENANT"
	CodeUnresolvedTenant   Code = "UNRESOLVED_TENANT"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeNotFound           Code = "NOT_FOUND"
	CodeRateLimited        Code = "RATE_LIMITED"
	CodeFetch              Code = "FETCH_ERROR"
	CodeWrite              Code = "WRITE_ERROR"
	CodeValidation         Code = "VALIDATION_ERROR"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeBusy               Code = "BUSY"
	CodeSessionChanged     Code = "SESSION_CHANGED"
	CodeInternal           Code = "INTERNAL_ERROR"
)

// Sentinelas para uso com errors.Is.
var (
	ErrNoTenant           = New(CodeNoTenant, "nenhuma unidade resolvida")
	ErrUnresolvedTenant   = New(CodeUnresolvedTenant, "não foi possível resolver a unidade")
	ErrInvalidCredentials = New(CodeInvalidCredentials, "credenciais inválidas")
	ErrNotFound           = New(CodeNotFound, "registro não encontrado")
	ErrRateLimited        = New(CodeRateLimited, "muitas tentativas")
	ErrFetch              = New(CodeFetch, "falha ao carregar oitivas")
	ErrWrite              = New(CodeWrite, "falha ao gravar oitiva")
	ErrValidation         = New(CodeValidation, "dados inválidos")
	ErrUnauthorized       = New(CodeUnauthorized, "sessão inválida")
	ErrBusy               = New(CodeBusy, "operação em andamento")
	ErrSessionChanged     = New(CodeSessionChanged, "sessão alterada durante a operação")
)

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New cria um erro com código.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap envolve err com um código. err nil resulta em nil.
func Wrap(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Cause: err}
}

// WithDetails retorna uma cópia de e com details.
func (e *Error) WithDetails(details string) *Error {
	if e == nil {
		return nil
	}
	return &Error{Code: e.Code, Message: e.Message, Details: details, Cause: e.Cause}
}

// CodeOf extrai o código do *Error mais externo da cadeia de err. Erros
// sem código resultam em CodeInternal.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// HTTPStatus converte o código no status HTTP da resposta.
func (e *Error) HTTPStatus() int {
	if e == nil {
		return http.StatusOK
	}
	switch e.Code {
	case CodeNoTenant, CodeUnauthorized, CodeInvalidCredentials:
		return http.StatusUnauthorized
	case CodeUnresolvedTenant:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeValidation:
		return http.StatusBadRequest
	case CodeBusy, CodeSessionChanged:
		return http.StatusConflict
	case CodeFetch, CodeWrite:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage é a notificação curta mostrada ao usuário.
func (e *Error) UserMessage() string {
	if e == nil {
		return ""
	}
	switch e.Code {
	case CodeNoTenant:
		return "Nenhuma unidade selecionada!"
	case CodeUnresolvedTenant:
		return "Não foi possível identificar a unidade deste usuário."
	case CodeInvalidCredentials:
		return "E-mail ou senha incorretos."
	case CodeNotFound:
		if e.Details != "" {
			return e.Details
		}
		return "Usuário não encontrado."
	case CodeRateLimited:
		return "Muitas tentativas. Tente novamente mais tarde."
	case CodeFetch:
		return "Erro ao carregar dados."
	case CodeWrite:
		if e.Details != "" {
			return e.Details
		}
		return "Erro ao salvar."
	case CodeValidation:
		if e.Details != "" {
			return "Preencha os campos obrigatórios: " + e.Details + "."
		}
		return "Preencha os campos obrigatórios."
	case CodeUnauthorized:
		return "Sessão expirada. Entre novamente."
	case CodeBusy:
		return "Aguarde, salvando..."
	case CodeSessionChanged:
		return "A sessão foi encerrada."
	default:
		return "Erro inesperado."
	}
}

// From retorna err como *Error, envolvendo erros sem código como internos.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, CodeInternal, "erro interno")
}
