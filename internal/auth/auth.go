// Package auth проверяет токены доступа и кладет аутентифицированного
// пользователя в контекст запроса. Токены выпускает внешний сервис
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/GoArmGo/PhotoGallery/internal/domain"
)

// Claims: полезная нагрузка токена; sub содержит UUID пользователя
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Verifier проверяет HS256-токены общим секретом
type Verifier struct {
	secret []byte
	issuer string
}

func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer}
}

// Verify проверяет подпись и срок действия и возвращает principal
func (v *Verifier) Verify(tokenString string) (domain.Principal, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("auth: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return domain.Principal{}, errors.New("auth: invalid token claims")
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil || id == uuid.Nil {
		return domain.Principal{}, fmt.Errorf("auth: subject %q is not a user id", claims.Subject)
	}

	name := claims.Name
	if name == "" {
		name = claims.Email
	}
	return domain.Principal{ID: id, Email: claims.Email, Name: name}, nil
}

type principalKey struct{}

// WithPrincipal возвращает контекст с аутентифицированным пользователем
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext возвращает пользователя запроса или нулевой Principal
func FromContext(ctx context.Context) domain.Principal {
	p, _ := ctx.Value(principalKey{}).(domain.Principal)
	return p
}

// ContextProvider реализует ports.PrincipalProvider поверх контекста запроса
type ContextProvider struct{}

func (ContextProvider) Principal(ctx context.Context) domain.Principal {
	return FromContext(ctx)
}
