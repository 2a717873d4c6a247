package middleware

import (
	"context"
	"net/http"
	"strings"

	"furnistock/internal/domain"
	apperror "furnistock/internal/errors"
	"furnistock/internal/pkg/token"
)

// ContextKey é um tipo não exportado de fato (int) para evitar colisão com chaves string no contexto.
type ContextKey int

const (
	UserClaimsKey ContextKey = iota
	RequestIDKey
)

// UserClaims representa os dados do chamador extraídos do token JWT,
// que serão anexados ao contexto.
type UserClaims struct {
	Subject string
	Role    domain.Role
}

// TokenService define o contrato de validação necessário para o middleware.
type TokenService interface {
	ValidateToken(tokenString string) (*token.CustomClaims, error)
}

// NewAuthMiddleware valida o JWT do header Authorization e anexa as claims ao contexto.
func NewAuthMiddleware(tokenSvc TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Extrair o Token do Header Authorization: Bearer <token>
			tokenString, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || tokenString == "" {
				writeError(w, apperror.NewUnauthorizedError("Token de autorização ausente ou malformado."))
				return
			}

			// 2. Validar o Token
			claims, err := tokenSvc.ValidateToken(tokenString)
			if err != nil {
				writeError(w, apperror.NewUnauthorizedError("Token inválido ou expirado."))
				return
			}
			role := domain.Role(claims.Role)
			if !role.Valid() {
				writeError(w, apperror.NewForbiddenError("Papel desconhecido no token."))
				return
			}

			// 3. Anexar Claims ao Contexto
			ctx := context.WithValue(r.Context(), UserClaimsKey, UserClaims{Subject: claims.Subject, Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserClaimsFromContext é uma função utilitária para extrair as claims no handler.
func GetUserClaimsFromContext(ctx context.Context) (UserClaims, bool) {
	claims, ok := ctx.Value(UserClaimsKey).(UserClaims)
	return claims, ok
}

// RequireRole deixa passar apenas chamadores com um dos papéis informados. Deve vir depois do NewAuthMiddleware.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetUserClaimsFromContext(r.Context())
			if !ok {
				writeError(w, apperror.NewUnauthorizedError("Autorização necessária. Token não processado."))
				return
			}

			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, apperror.NewForbiddenError("Acesso negado. Você não tem a permissão necessária."))
		})
	}
}
