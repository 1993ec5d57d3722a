package http

import (
	"errors"
	"net/http"
	"strings"

	"fooddelivery/internal/core/domain/model/kernel"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const actorContextKey = "actor"

// Claims carries the identity the service relies on: the subject is the
// caller's id and role is one of the kernel roles.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator turns HS256 bearer tokens into kernel actors.
type Authenticator struct {
	secret []byte
	parser *jwt.Parser
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}
}

// Actor validates tokenStr and returns the actor it names.
func (a *Authenticator) Actor(tokenStr string) (kernel.Actor, error) {
	var claims Claims
	_, err := a.parser.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil {
		return kernel.Actor{}, err
	}

	id, err := kernel.UUIDFromString(claims.Subject)
	if err != nil {
		return kernel.Actor{}, err
	}
	role, err := kernel.ParseRole(claims.Role)
	if err != nil {
		return kernel.Actor{}, err
	}
	if role == kernel.RoleSystem {
		return kernel.Actor{}, errors.New("system role is not accepted from callers")
	}
	return kernel.NewActor(id, role)
}

// Issue signs a token for actor. Used by tests and local tooling.
func (a *Authenticator) Issue(actor kernel.Actor, claims jwt.RegisteredClaims) (string, error) {
	claims.Subject = actor.ID().String()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Role: string(actor.Role()), RegisteredClaims: claims})
	return token.SignedString(a.secret)
}

// Middleware rejects requests without a valid bearer token and stores the actor
// on the echo context.
func (a *Authenticator) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			tokenStr, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenStr == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			actor, err := a.Actor(tokenStr)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token").SetInternal(err)
			}

			c.Set(actorContextKey, actor)
			return next(c)
		}
	}
}

func actorFrom(c echo.Context) (kernel.Actor, error) {
	actor, ok := c.Get(actorContextKey).(kernel.Actor)
	if !ok {
		return kernel.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing actor")
	}
	return actor, nil
}
