package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rajivgeraev/flippy-swaps/internal/models"
)

// ErrInvalidToken токен не прошел проверку
var ErrInvalidToken = errors.New("invalid token")

// JWTService отвечает за создание и валидацию JWT токенов
type JWTService struct {
	secretKey string
	ttl       time.Duration
}

// NewJWTService создаёт новый экземпляр JWTService
func NewJWTService(secretKey string, ttl time.Duration) *JWTService {
	if ttl <= 0 {
		ttl = 72 * time.Hour // 3 дня
	}
	return &JWTService{secretKey: secretKey, ttl: ttl}
}

// GenerateToken создаёт JWT токен с данными пользователя
func (s *JWTService) GenerateToken(identity models.Identity) (string, error) {
	if identity.ID == "" {
		return "", fmt.Errorf("user id is required")
	}

	claims := jwt.MapClaims{
		"sub":         identity.ID,
		"user_id":     identity.ID,
		"email":       identity.Email,
		"given_name":  identity.FirstName,
		"family_name": identity.LastName,
		"picture":     identity.Picture,
		"iat":         time.Now().Unix(),
		"exp":         time.Now().Add(s.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secretKey))
}

// ValidateToken проверяет JWT токен
func (s *JWTService) ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.secretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
}

// ExtractIdentity проверяет токен и возвращает данные пользователя
func (s *JWTService) ExtractIdentity(tokenString string) (models.Identity, error) {
	token, err := s.ValidateToken(tokenString)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return models.Identity{}, ErrInvalidToken
	}

	identity := models.Identity{
		ID:        claimString(claims, "sub"),
		Email:     claimString(claims, "email"),
		FirstName: claimString(claims, "given_name"),
		LastName:  claimString(claims, "family_name"),
		Picture:   claimString(claims, "picture"),
	}
	if identity.ID == "" {
		identity.ID = claimString(claims, "user_id")
	}
	if identity.ID == "" {
		return models.Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return identity, nil
}

// ExtractUserID возвращает ID пользователя из токена
func (s *JWTService) ExtractUserID(tokenString string) (string, error) {
	identity, err := s.ExtractIdentity(tokenString)
	if err != nil {
		return "", err
	}
	return identity.ID, nil
}

func claimString(claims jwt.MapClaims, key string) string {
	value, _ := claims[key].(string)
	return value
}
