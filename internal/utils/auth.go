package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/xelth-com/tradetrack/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	return string(bytes), err
}

// CheckPasswordHash compares a password with a hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GenerateToken issues the access token for a user
func GenerateToken(user *models.User, secret string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	claims := jwt.MapClaims{
		"id":           user.ID,
		"email":        user.Email,
		"name":         user.Name,
		"organization": string(user.Organization),
		"role":         string(user.Role),
		"exp":          time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken parses and validates a token
func ValidateToken(tokenString string, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// ActorFromClaims rebuilds the caller identity from validated claims
func ActorFromClaims(claims jwt.MapClaims) (models.Actor, error) {
	str := func(key string) string {
		v, _ := claims[key].(string)
		return v
	}
	a := models.Actor{
		UserID:       str("id"),
		Email:        str("email"),
		Name:         str("name"),
		Organization: models.Organization(str("organization")),
		Role:         models.Role(str("role")),
	}
	if a.UserID == "" {
		return models.Actor{}, errors.New("token has no subject")
	}
	return a, nil
}
