package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"

	UserTypeUser    = "User"
	UserTypeSubUser = "SubUser"
)

var ErrWrongTokenType = errors.New("wrong token type")

// Claims carries the caller identity the request pipeline needs to resolve
// grants without another lookup.
type Claims struct {
	UserID       string `json:"user_id"`
	CompanyID    string `json:"company_id"`
	CompanyType  string `json:"company_type"`
	UserType     string `json:"user_type"`
	Role         string `json:"role,omitempty"`
	CustomRoleID string `json:"custom_role_id,omitempty"`
	TokenType    string `json:"typ"`
	jwt.RegisteredClaims
}

func Issue(secret string, claims Claims, tokenType string, ttl time.Duration, now time.Time) (string, error) {
	claims.TokenType = tokenType
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.UserID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func Parse(secret, raw, tokenType string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.TokenType != tokenType {
		return nil, ErrWrongTokenType
	}
	if claims.UserID == "" || claims.CompanyID == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func IsExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}
