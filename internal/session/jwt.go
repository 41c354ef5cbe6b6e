package session

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	jwt "github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// Aliasing it so we can use it in the struct literal for composition
type jwtRegisteredClaims = jwt.RegisteredClaims

type jwtClaims struct {
	SessionData
	jwtRegisteredClaims
}

// JWTSessionHandler keeps the whole session in a signed cookie. Logging out
// revokes the token ID so a copied cookie stops working too.
type JWTSessionHandler struct {
	Secret       []byte
	CookieName   string
	CookieSecure bool
	Lifetime     time.Duration

	mu      sync.Mutex
	revoked map[string]time.Time
}

func (s *JWTSessionHandler) Start(c echo.Context, data SessionData) error {
	now := time.Now()
	sessExpiryTime := now.Add(s.Lifetime)

	sessClaims := &jwtClaims{
		SessionData: data,
		jwtRegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(sessExpiryTime),
		},
	}

	sessToken := jwt.NewWithClaims(jwtSigningMethod, sessClaims)

	signedSessToken, err := sessToken.SignedString(s.Secret)
	if err != nil {
		return fmt.Errorf("couldn't sign session JWT: %w", err)
	}

	c.SetCookie(&http.Cookie{
		Name:     s.CookieName,
		Value:    signedSessToken,
		Path:     "/",
		Secure:   s.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  sessExpiryTime,
	})

	return nil
}

func (s *JWTSessionHandler) Destroy(c echo.Context) error {
	if claims, err := s.parse(c); err == nil {
		s.revoke(claims.ID, claims.ExpiresAt.Time)
	}

	c.SetCookie(&http.Cookie{
		Name:     s.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
	return nil
}

func (s *JWTSessionHandler) GetSessionData(c echo.Context) (*SessionData, error) {
	claims, err := s.parse(c)
	if err != nil {
		return nil, err
	}

	if s.isRevoked(claims.ID) {
		return nil, ErrInvalidSession
	}

	return &claims.SessionData, nil
}

func (s *JWTSessionHandler) parse(c echo.Context) (*jwtClaims, error) {
	authCookie, err := c.Cookie(s.CookieName)
	if err != nil || authCookie.Value == "" {
		return nil, ErrInvalidSession
	}

	decoder := jwt.NewParser(jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}))

	claims := new(jwtClaims)

	token, err := decoder.ParseWithClaims(authCookie.Value, claims, func(token *jwt.Token) (interface{}, error) {
		return s.Secret, nil
	})

	if err != nil || !token.Valid || claims.ExpiresAt == nil {
		return nil, ErrInvalidSession
	}

	return claims, nil
}

func (s *JWTSessionHandler) revoke(id string, expiry time.Time) {
	if id == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.revoked == nil {
		s.revoked = make(map[string]time.Time)
	}

	// The parser already rejects expired tokens, no need to remember them
	now := time.Now()
	for k, exp := range s.revoked {
		if exp.Before(now) {
			delete(s.revoked, k)
		}
	}

	s.revoked[id] = expiry
}

func (s *JWTSessionHandler) isRevoked(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.revoked[id]
	return ok
}
