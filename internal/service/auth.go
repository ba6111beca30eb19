package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rocketscienceinc/president-backend/internal/apperror"
	"github.com/rocketscienceinc/president-backend/internal/entity"
)

const tokenTTL = 24 * time.Hour

type Claims struct {
	UserID string `json:"userId"`
	Handle string `json:"handle"`
	jwt.RegisteredClaims
}

type AuthService interface {
	GenerateToken(identity entity.Identity) (string, error)
	ParseToken(token string) (entity.Identity, error)
}

type authServiceImpl struct {
	secretKey string
	now       func() time.Time
}

func NewAuthService(secretKey string) AuthService {
	return &authServiceImpl{
		secretKey: secretKey,
		now:       time.Now,
	}
}

func (that *authServiceImpl) GenerateToken(identity entity.Identity) (string, error) {
	now := that.now()
	claims := &Claims{
		UserID: identity.PlayerID,
		Handle: identity.Handle,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.PlayerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(that.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ParseToken verifies an HS256 token and returns the identity it carries.
func (that *authServiceImpl) ParseToken(tokenString string) (entity.Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(that.secretKey), nil
	}, jwt.WithTimeFunc(that.now))
	if err != nil {
		return entity.Identity{}, fmt.Errorf("%w: %w", apperror.ErrUnauthorized, err)
	}

	if !token.Valid || claims.UserID == "" {
		return entity.Identity{}, apperror.ErrUnauthorized
	}

	return entity.Identity{PlayerID: claims.UserID, Handle: claims.Handle}, nil
}
