package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"flamewars/internal/models"
)

const CallerKey = "caller"
const AuthErrorKey = "auth_error"

var (
	ErrMissingCredential = errors.New("missing credential")
	ErrInvalidCredential = errors.New("invalid credential")
)

// Authenticator resolves an opaque credential to the calling user.
type Authenticator interface {
	Authenticate(ctx context.Context, credential string) (models.Author, error)
}

// Claims 令牌中携带的身份信息
type Claims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// JWTAuthenticator verifies HS256 tokens signed with a shared secret.
type JWTAuthenticator struct {
	secret []byte
	issuer string
}

func NewJWTAuthenticator(secret, issuer string) (*JWTAuthenticator, error) {
	if secret == "" {
		return nil, errors.New("auth secret is empty")
	}
	return &JWTAuthenticator{secret: []byte(secret), issuer: issuer}, nil
}

func (a *JWTAuthenticator) Authenticate(ctx context.Context, credential string) (models.Author, error) {
	if credential == "" {
		return models.Author{}, ErrMissingCredential
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(credential, &claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return models.Author{}, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	if claims.Subject == "" {
		return models.Author{}, fmt.Errorf("%w: no subject", ErrInvalidCredential)
	}

	name := claims.Name
	if name == "" {
		name = claims.Subject
	}
	return models.Author{ID: claims.Subject, Name: name}, nil
}

// SignToken issues a token accepted by JWTAuthenticator.
func SignToken(secret, issuer string, author models.Author, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Name: author.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   author.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// LoadCaller resolves the bearer token, if any, and stores the caller in
// the context. It never aborts: handlers decide whether identity is needed
// and in which order relative to input validation.
func LoadCaller(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token != "" {
			author, err := auth.Authenticate(c.Request.Context(), token)
			if err != nil {
				c.Set(AuthErrorKey, err)
			} else {
				c.Set(CallerKey, author)
			}
		}
		c.Next()
	}
}

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// ResolveCaller returns the caller loaded by LoadCaller, falling back to a
// credential carried in the request body.
func ResolveCaller(c *gin.Context, auth Authenticator, bodyCredential string) (models.Author, error) {
	if v, ok := c.Get(CallerKey); ok {
		return v.(models.Author), nil
	}
	if v, ok := c.Get(AuthErrorKey); ok {
		return models.Author{}, v.(error)
	}
	if bodyCredential == "" {
		return models.Author{}, ErrMissingCredential
	}
	return auth.Authenticate(c.Request.Context(), bodyCredential)
}
