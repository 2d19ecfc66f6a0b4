package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/aulacheck/aulacheck/core"
)

// appJWTConfig is the default JWT auth middleware config. Tokens are issued by
// the identity provider; we only verify the shared-secret signature here.
var appJWTConfig = middleware.JWTConfig{
	SigningKey:    []byte(core.Conf.SecretKey),
	SigningMethod: middleware.AlgorithmHS256,
	ContextKey:    "principalToken",
	Claims:        new(Claims),
}

// Claims represents the authorization claims transmitted via a JWT.
// Subject carries the principal id.
type Claims struct {
	jwt.StandardClaims
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

func GetPrincipalClaims(prin core.Principal) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    core.Conf.AppName,
			Subject:   prin.ID,
			Audience:  "AulaCheck",
			ExpiresAt: now.Add(core.Conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Name:  prin.Name,
		Email: prin.Email,
	}
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(appJWTConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(appJWTConfig.SigningKey)
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(appJWTConfig.ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextPrincipal(ctx echo.Context) (core.Principal, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return core.Principal{}, err
	}
	return core.Principal{ID: claims.Subject, Name: claims.Name, Email: claims.Email}, nil
}
