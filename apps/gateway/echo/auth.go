package echoapi

import (
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/access"
)

const authScheme = "Bearer"

// Claims represents the session claims transmitted via the portal JWT.
// Sign-in (handled upstream by the Masomo API) sets the session cookie;
// the gateway only ever verifies it.
type Claims struct {
	jwt.StandardClaims
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// NewSessionClaims builds session claims for an identity; mainly for tests
// and local tooling, the portal itself receives sessions minted upstream.
func NewSessionClaims(conf *core.Config, identity, username, email string) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   identity,
			Audience:  "Academia",
			ExpiresAt: now.Add(conf.Server.SessionExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Username: username,
		Email:    email,
	}
}

// GenerateSessionToken signs claims into a session token string.
func GenerateSessionToken(conf *core.Config, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing session token")
	}
	return ss, nil
}

func parseSessionToken(tokenStr string, secret []byte) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return secret, nil
	})
	if err != nil {
		return Claims{}, errors.Wrap(err, "parsing session token")
	}
	if !token.Valid {
		return Claims{}, access.ErrUnauthenticated
	}
	return claims, nil
}

// contextSession adapts a verified session to the gate's Session contract.
type contextSession struct {
	claims Claims
	conf   *core.Config
}

var _ access.Session = contextSession{}

func (s contextSession) Identity() access.Identity {
	return access.Identity(s.claims.Subject)
}

// Credential re-signs short-lived claims for the profile service; the
// long-lived session token itself never leaves the gateway.
func (s contextSession) Credential() (string, error) {
	now := time.Now()
	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    s.claims.Issuer,
			Subject:   s.claims.Subject,
			Audience:  s.claims.Audience,
			ExpiresAt: now.Add(s.conf.Server.CredentialExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Username: s.claims.Username,
		Email:    s.claims.Email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(s.conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing credential")
	}
	return ss, nil
}

// getContextSession extracts the caller's session from the request: the
// session cookie first, a bearer Authorization header as a fallback.
// A missing, malformed or expired token yields no session; the gate turns
// that into a sign-in redirect on protected routes.
func getContextSession(ctx echo.Context, conf *core.Config) access.Session {
	tokenStr := sessionTokenFromRequest(ctx, conf)
	if tokenStr == "" {
		return nil
	}
	claims, err := parseSessionToken(tokenStr, []byte(conf.SecretKey))
	if err != nil || claims.Subject == "" {
		return nil
	}
	return contextSession{claims: claims, conf: conf}
}

func sessionTokenFromRequest(ctx echo.Context, conf *core.Config) string {
	if cookie, err := ctx.Cookie(conf.Server.SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	auth := ctx.Request().Header.Get(echo.HeaderAuthorization)
	if len(auth) > len(authScheme) && strings.EqualFold(auth[:len(authScheme)], authScheme) {
		return strings.TrimSpace(auth[len(authScheme):])
	}
	return ""
}
