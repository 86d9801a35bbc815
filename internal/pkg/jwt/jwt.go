package jwt

import (
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const TokenTypeAccess = "access"

// AccessClaims identifies the dashboard viewer carried by an access token.
type AccessClaims struct {
	StaffID  string
	Name     string
	Position string
}

type Service interface {
	GenerateAccessToken(claims AccessClaims, ttl time.Duration) (token string, expiresAt int64, err error)
	ParseAccessToken(tokenString string) (AccessClaims, error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	tokenAuth  *jwtauth.JWTAuth
	defaultTTL time.Duration
	now        func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// NewJWTService signs with HS256. ttl is used when GenerateAccessToken gets
// a non-positive ttl.
func NewJWTService(secretKey string, ttl time.Duration) Service {
	return &JWTService{
		tokenAuth:  jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		defaultTTL: ttl,
		now:        time.Now,
	}
}

func (j *JWTService) GenerateAccessToken(claims AccessClaims, ttl time.Duration) (token string, expiresAt int64, err error) {
	if claims.StaffID == "" {
		return "", 0, errors.New("staff id is required")
	}
	if ttl <= 0 {
		ttl = j.defaultTTL
	}
	if ttl <= 0 {
		return "", 0, errors.New("token ttl must be positive")
	}
	expiresAt = j.now().Add(ttl).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"staff_id": claims.StaffID,
		"name":     claims.Name,
		"position": claims.Position,
		"type":     TokenTypeAccess,
		"exp":      expiresAt,
	})
	return tokenString, expiresAt, err
}

// ParseAccessToken verifies tokenString and returns its claims.
func (j *JWTService) ParseAccessToken(tokenString string) (AccessClaims, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return AccessClaims{}, err
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != TokenTypeAccess {
		return AccessClaims{}, jwt.ErrInvalidJWT()
	}

	claims := AccessClaims{
		StaffID:  stringClaim(token, "staff_id"),
		Name:     stringClaim(token, "name"),
		Position: stringClaim(token, "position"),
	}
	if claims.StaffID == "" {
		return AccessClaims{}, jwt.ErrInvalidJWT()
	}
	return claims, nil
}

func stringClaim(token jwt.Token, key string) string {
	v, ok := token.Get(key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
