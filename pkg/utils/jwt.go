package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType 令牌类型
type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"

	issuer = "footstep"
)

// ErrWrongTokenType 令牌类型不匹配
var ErrWrongTokenType = errors.New("wrong token type")

// Claims 自定义JWT Claims
type Claims struct {
	UserID uint      `json:"user_id"`
	Email  string    `json:"email"`
	Type   TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// TokenPair 访问令牌与刷新令牌
type TokenPair struct {
	AccessToken      string    `json:"accessToken"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshTokenID   string    `json:"-"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

// TokenIssuer 签发和校验令牌
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenIssuer 创建令牌签发器
func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// RefreshTTL 刷新令牌有效期
func (i *TokenIssuer) RefreshTTL() time.Duration {
	return i.refreshTTL
}

// GeneratePair 生成令牌对
func (i *TokenIssuer) GeneratePair(userID uint, email string) (*TokenPair, error) {
	now := i.now()
	access, accessExp, _, err := i.sign(userID, email, AccessToken, now, i.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, refreshID, err := i.sign(userID, email, RefreshToken, now, i.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		RefreshTokenID:   refreshID,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (i *TokenIssuer) sign(userID uint, email string, typ TokenType, now time.Time, ttl time.Duration) (string, time.Time, string, error) {
	expireTime := now.Add(ttl)
	id := uuid.NewString()

	claims := Claims{
		UserID: userID,
		Email:  email,
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expireTime),
			Issuer:    issuer,
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, "", err
	}
	return token, expireTime, id, nil
}

// Parse 验证JWT Token并检查类型
func (i *TokenIssuer) Parse(tokenString string, want TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return i.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.Type != want {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}
