package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTService emite y valida los tokens de acceso de la API.
type JWTService struct {
	secret    []byte
	accessTTL time.Duration
	issuer    string
	revoked   RevokedTokenStore
	now       func() time.Time
}

type AccessToken struct {
	Token     string    `json:"access_token"`
	ExpiresAt time.Time `json:"expires_at"`
	ExpiresIn int64     `json:"expires_in"`
}

type Claims struct {
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

var (
	ErrJWTInvalid = errors.New("jwt invalid")
	ErrJWTExpired = errors.New("jwt expired")
	ErrJWTRevoked = errors.New("jwt revoked")
)

func NewJWTService(secret string, accessTTL time.Duration) *JWTService {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	return &JWTService{
		secret:    []byte(secret),
		accessTTL: accessTTL,
		issuer:    "persona-llm",
		revoked:   NewMemoryRevokedTokenStore(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func NewJWTServiceWithStore(secret string, accessTTL time.Duration, store RevokedTokenStore) *JWTService {
	svc := NewJWTService(secret, accessTTL)
	if store != nil {
		svc.revoked = store
	}
	return svc
}

// Enabled indica si hay secreto configurado; sin secreto la API no exige token.
func (s *JWTService) Enabled() bool {
	return s != nil && len(s.secret) > 0
}

// IssueAccessToken firma un token para el sujeto dado (un cliente de la API o un operador).
func (s *JWTService) IssueAccessToken(subject string) (AccessToken, error) {
	if !s.Enabled() {
		return AccessToken{}, ErrJWTInvalid
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return AccessToken{}, ErrJWTInvalid
	}

	now := s.now()
	exp := now.Add(s.accessTTL)
	claims := Claims{
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{
		Token:     signed,
		ExpiresAt: exp,
		ExpiresIn: int64(s.accessTTL.Seconds()),
	}, nil
}

func (s *JWTService) ParseAccessToken(accessToken string) (Claims, error) {
	if !s.Enabled() {
		return Claims{}, ErrJWTInvalid
	}
	if strings.TrimSpace(accessToken) == "" {
		return Claims{}, ErrJWTInvalid
	}
	claims, err := s.parseToken(accessToken)
	if err != nil {
		return Claims{}, err
	}
	if claims.TokenType != "access" {
		return Claims{}, ErrJWTInvalid
	}
	if !s.isValidClaims(claims) {
		return Claims{}, ErrJWTInvalid
	}
	if s.revoked != nil && claims.ID != "" {
		revoked, err := s.revoked.IsRevoked(claims.ID)
		if err != nil {
			return Claims{}, ErrJWTInvalid
		}
		if revoked {
			return Claims{}, ErrJWTRevoked
		}
	}
	return claims, nil
}

// Revoke invalida el token hasta su expiración natural.
func (s *JWTService) Revoke(accessToken string) error {
	claims, err := s.ParseAccessToken(accessToken)
	if err != nil {
		return err
	}
	if claims.ID == "" || s.revoked == nil {
		return ErrJWTInvalid
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	return s.revoked.Revoke(claims.ID, ttl)
}

func (s *JWTService) parseToken(tokenString string) (Claims, error) {
	var claims Claims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrJWTExpired
		}
		return Claims{}, ErrJWTInvalid
	}
	return claims, nil
}

func (s *JWTService) isValidClaims(claims Claims) bool {
	if strings.TrimSpace(claims.Subject) == "" {
		return false
	}
	return strings.TrimSpace(claims.Issuer) == s.issuer
}
