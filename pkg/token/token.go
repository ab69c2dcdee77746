package token

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// 令牌类型，写入 token_type 声明，防止刷新令牌被当作访问令牌使用
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var (
	ErrInvalidToken = errors.New("令牌无效或已过期")
	ErrWrongType    = errors.New("令牌类型不匹配")
)

// Claims 是签入JWT的声明
type Claims struct {
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// UserID 从 sub 声明中解析用户ID
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}

// Pair 是登录和注册时返回的令牌对
type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Issuer 负责签发和校验HS256令牌
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// GenerateSecretKey 生成一个密码学安全的32字节随机密钥。
func GenerateSecretKey() []byte {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic("无法生成安全的密钥: " + err.Error())
	}
	return key
}

// NewIssuer 创建签发器。secret 为空时生成随机密钥，此时重启后旧令牌全部失效。
func NewIssuer(secret string, accessTTL, refreshTTL time.Duration) *Issuer {
	key := []byte(secret)
	if secret == "" {
		logrus.Warn("未配置 auth.secretKey，使用随机生成的JWT密钥，重启后所有令牌将失效。")
		key = GenerateSecretKey()
	}
	return &Issuer{secret: key, accessTTL: accessTTL, refreshTTL: refreshTTL, now: time.Now}
}

func (i *Issuer) sign(userID uint, typ string, ttl time.Duration) (string, error) {
	now := i.now()
	jti, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("无法生成令牌ID: %w", err)
	}
	claims := Claims{
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti.String(),
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// IssuePair 为用户签发访问令牌和刷新令牌
func (i *Issuer) IssuePair(userID uint) (Pair, error) {
	access, err := i.sign(userID, TypeAccess, i.accessTTL)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := i.sign(userID, TypeRefresh, i.refreshTTL)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

// Parse 校验签名、过期时间和令牌类型。typ 为空时不检查类型。
func (i *Issuer) Parse(tokenStr, typ string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if typ != "" && claims.TokenType != typ {
		return nil, ErrWrongType
	}
	return claims, nil
}

// Refresh 用刷新令牌换取新的访问令牌
func (i *Issuer) Refresh(refreshToken string) (string, error) {
	claims, err := i.Parse(refreshToken, TypeRefresh)
	if err != nil {
		return "", err
	}
	userID, err := claims.UserID()
	if err != nil {
		return "", err
	}
	return i.sign(userID, TypeAccess, i.accessTTL)
}
