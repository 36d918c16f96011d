package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the authenticated caller carried by a token.
type Identity struct {
	UserID   int64    `json:"user_id"`
	TenantID int64    `json:"tenant_id"`
	Roles    []string `json:"roles"`
}

// Claims 自定义 JWT claims
type Claims struct {
	UserID   int64    `json:"user_id"`
	TenantID int64    `json:"tenant_id"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// GenerateJWT creates a token for id valid for ttl from now.
func GenerateJWT(id Identity, secret string, ttl time.Duration, now time.Time) (string, error) {
	claims := Claims{
		UserID:   id.UserID,
		TenantID: id.TenantID,
		Roles:    id.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(id.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseJWT validates token and extracts the caller identity.
func ParseJWT(tokenStr, secret string) (Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Identity{}, err
	}
	if !token.Valid {
		return Identity{}, jwt.ErrTokenInvalidClaims
	}
	if claims.UserID == 0 || claims.TenantID == 0 {
		return Identity{}, errors.Join(jwt.ErrTokenMalformed, errors.New("missing user or tenant"))
	}

	return Identity{
		UserID:   claims.UserID,
		TenantID: claims.TenantID,
		Roles:    claims.Roles,
	}, nil
}

// ExtractToken reads a bearer token from the Authorization header.
func ExtractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return parts[1]
}
