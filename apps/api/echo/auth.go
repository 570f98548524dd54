package echoapi

import (
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/raresamza/mythesis/core"
	"github.com/raresamza/mythesis/core/user"
)

const sessionTokenKey = "sessionToken"

// Claims is the session serialized into the token issued at login. Handlers
// restore a user.Session from it; no ambient session state is kept server-side.
type Claims struct {
	jwt.StandardClaims
	UserID int    `json:"uid"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Type   string `json:"type,omitempty"`
}

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    sessionTokenKey,
		Claims:        new(Claims),
	}
}

func GetSessionClaims(sess user.Session, conf *core.Config) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.New().String(),
			Issuer:    conf.AppName,
			Subject:   strconv.Itoa(sess.ID),
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		UserID: sess.ID,
		Name:   sess.Name,
		Email:  sess.Email,
		Type:   sess.Type,
	}
}

// GenerateToken generates a signed JWT token string representing the session Claims.
func GenerateToken(claims *Claims, conf *core.Config) (string, error) {
	method := jwt.GetSigningMethod(middleware.AlgorithmHS256)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextSession(ctx echo.Context) (user.Session, error) {
	if token, ok := ctx.Get(sessionTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return user.Session{
				ID:    claims.UserID,
				Name:  claims.Name,
				Email: claims.Email,
				Type:  claims.Type,
			}, nil
		}
	}
	return user.Session{}, errUnauthorized
}
