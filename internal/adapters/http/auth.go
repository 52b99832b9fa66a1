package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/famo7/meetopia-api/internal/core"
	"github.com/famo7/meetopia-api/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

var (
	ErrTokenMissing = errors.New("no token provided")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

const principalKey = "principal"

type tokenClaims struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// JWTVerifier checks HS256 bearer tokens carrying {userId, email}.
type JWTVerifier struct {
	secret []byte
	now    func() time.Time
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret), now: time.Now}
}

func (v *JWTVerifier) Verify(token string) (core.Principal, error) {
	if token == "" {
		return core.Principal{}, ErrTokenMissing
	}
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return core.Principal{}, ErrTokenExpired
		}
		return core.Principal{}, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	if claims.UserID <= 0 {
		return core.Principal{}, fmt.Errorf("%w: missing userId", ErrTokenInvalid)
	}
	return core.Principal{UserID: domain.UserID(claims.UserID), Email: claims.Email}, nil
}

// bearerToken takes the token from the Authorization header, falling back to
// the token query parameter since browsers cannot set headers on websocket
// handshakes.
func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return c.Query("token")
}

// BearerAuth rejects requests without a valid token. A nil verifier lets
// everything through.
func BearerAuth(v *JWTVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if v == nil {
			c.Next()
			return
		}
		p, err := v.Verify(bearerToken(c))
		if err != nil {
			status := http.StatusForbidden
			if errors.Is(err, ErrTokenMissing) || errors.Is(err, ErrTokenExpired) {
				status = http.StatusUnauthorized
			}
			log.Warn().Err(err).Str("module", "adapters.http").Str("path", c.FullPath()).Msg("auth rejected")
			c.AbortWithStatusJSON(status, gin.H{"message": rootMessage(err)})
			return
		}
		c.Set(principalKey, &p)
		c.Next()
	}
}

func rootMessage(err error) string {
	for _, sentinel := range []error{ErrTokenMissing, ErrTokenExpired, ErrTokenInvalid} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return ErrTokenInvalid.Error()
}

// PrincipalFrom returns the authenticated principal, or nil when auth is off.
func PrincipalFrom(c *gin.Context) *core.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*core.Principal)
	return p
}
