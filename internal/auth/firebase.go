package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"oitivas-pro/internal/tenant"
	"oitivas-pro/pkg/apperr"
)

// FirebaseAuthenticator faz login com e-mail e senha pela API REST do
// Identity Toolkit e valida ID tokens com o Admin SDK.
type FirebaseAuthenticator struct {
	relyingParty *identitytoolkit.RelyingpartyService
	client       *fbauth.Client
}

// NewFirebaseAuthenticator precisa da Web API key do projeto. client pode
// ser nil quando não há validação de token.
func NewFirebaseAuthenticator(ctx context.Context, apiKey string, client *fbauth.Client) (*FirebaseAuthenticator, error) {
	svc, err := identitytoolkit.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("error creating identity toolkit service: %w", err)
	}
	return &FirebaseAuthenticator{relyingParty: svc.Relyingparty, client: client}, nil
}

func (a *FirebaseAuthenticator) SignIn(ctx context.Context, email, password string) (tenant.Principal, error) {
	resp, err := a.relyingParty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return tenant.Principal{}, signInError(err)
	}
	return tenant.Principal{UID: resp.LocalId, Email: resp.Email}, nil
}

// VerifyToken converte um ID token do Firebase emitido ao navegador em
// principal.
func (a *FirebaseAuthenticator) VerifyToken(ctx context.Context, idToken string) (tenant.Principal, error) {
	if a.client == nil {
		return tenant.Principal{}, apperr.ErrUnauthorized
	}
	tok, err := a.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return tenant.Principal{}, apperr.Wrap(err, apperr.CodeUnauthorized, "token inválido")
	}
	email, _ := tok.Claims["email"].(string)
	return tenant.Principal{UID: tok.UID, Email: email}, nil
}

// signInError traduz as mensagens de erro do Identity Toolkit para os
// códigos de autenticação.
func signInError(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return apperr.Wrap(err, apperr.CodeInternal, "falha na autenticação")
	}

	reason := gerr.Message
	if i := strings.IndexAny(reason, " :"); i >= 0 {
		reason = reason[:i]
	}
	switch reason {
	case "INVALID_LOGIN_CREDENTIALS", "INVALID_PASSWORD", "INVALID_EMAIL", "MISSING_PASSWORD", "USER_DISABLED":
		return apperr.Wrap(err, apperr.CodeInvalidCredentials, "credenciais inválidas")
	case "EMAIL_NOT_FOUND":
		return apperr.Wrap(err, apperr.CodeNotFound, "usuário não encontrado")
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		return apperr.Wrap(err, apperr.CodeRateLimited, "muitas tentativas")
	default:
		return apperr.Wrap(err, apperr.CodeInternal, "falha na autenticação")
	}
}
