package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carried by caregiver access tokens.
type Claims struct {
	CaregiverID uuid.UUID `json:"caregiver_id"`
	Email       string    `json:"email"`
	jwt.RegisteredClaims
}

type JWTService interface {
	GenerateAccessToken(caregiverID uuid.UUID, email string) (string, time.Time, error)
	ValidateToken(token string) (*Claims, error)
}

type jwtService struct {
	secret []byte
	expiry time.Duration
	issuer string
}

func NewJWTService(secret string, expiry time.Duration) JWTService {
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &jwtService{
		secret: []byte(secret),
		expiry: expiry,
		issuer: "carewatch-api",
	}
}

func (s *jwtService) GenerateAccessToken(caregiverID uuid.UUID, email string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.expiry)
	claims := Claims{
		CaregiverID: caregiverID,
		Email:       email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caregiverID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (s *jwtService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(s.issuer))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.CaregiverID == uuid.Nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
