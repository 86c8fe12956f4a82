package authinfra

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	errNoSecret     = errors.New("webhook secret not configured")
)

// Claims 定義 webhook token 的 payload，Source 為上游策略名稱。
type Claims struct {
	Source string `json:"source"`
	jwt.RegisteredClaims
}

// WebhookVerifier 驗證上游送來的 Bearer JWT 或 X-API-Key。
// secret 與 keyHash 都未設定時不做驗證。
type WebhookVerifier struct {
	secret  []byte
	keyHash string
	hasher  BcryptHasher
	now     func() time.Time
}

// NewWebhookVerifier 建立驗證器。
func NewWebhookVerifier(secret, apiKeyHash string) *WebhookVerifier {
	return &WebhookVerifier{
		secret:  []byte(secret),
		keyHash: apiKeyHash,
		now:     time.Now,
	}
}

// Enabled reports whether any credential is configured.
func (v *WebhookVerifier) Enabled() bool {
	return v != nil && (len(v.secret) > 0 || v.keyHash != "")
}

// IssueToken 簽發 HS256 token，ttl <= 0 代表不過期。
func (v *WebhookVerifier) IssueToken(source string, ttl time.Duration) (string, error) {
	if len(v.secret) == 0 {
		return "", errNoSecret
	}
	now := v.now()
	claims := Claims{
		Source: source,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

// ParseToken 驗證並解析 token。
func (v *WebhookVerifier) ParseToken(token string) (Claims, error) {
	if len(v.secret) == 0 {
		return Claims{}, errNoSecret
	}
	var claims Claims
	tkn, err := jwt.ParseWithClaims(token, &claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	}, jwt.WithTimeFunc(v.now))
	if err != nil {
		return Claims{}, err
	}
	if !tkn.Valid {
		return Claims{}, errors.New("invalid token")
	}
	return claims, nil
}

// Verify checks the Authorization header first, then the API key. It returns
// the token's source claim when a token was used.
func (v *WebhookVerifier) Verify(authorization, apiKey string) (string, error) {
	if !v.Enabled() {
		return "", nil
	}
	if token, ok := bearerToken(authorization); ok && len(v.secret) > 0 {
		claims, err := v.ParseToken(token)
		if err == nil {
			return claims.Source, nil
		}
		if apiKey == "" {
			return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
	}
	if apiKey != "" && v.hasher.Compare(v.keyHash, apiKey) {
		return "", nil
	}
	return "", ErrUnauthorized
}

func bearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
