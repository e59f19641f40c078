package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const defaultTenantClaim = "organization_id"

type tenantKey struct{}

// TenantAuth 从请求中识别租户
//   - 配置了 secret：必须携带 Authorization: Bearer <HMAC JWT>，租户取自 claim
//   - 未配置 secret（本地开发）：读取 X-Tenant-Id
type TenantAuth struct {
	secret []byte
	claim  string
	logger *zap.Logger
}

func NewTenantAuth(secret, claim string, logger *zap.Logger) *TenantAuth {
	if claim == "" {
		claim = defaultTenantClaim
	}
	return &TenantAuth{secret: []byte(secret), claim: claim, logger: logger}
}

// Tenant 解析请求的租户 ID
func (a *TenantAuth) Tenant(r *http.Request) (string, error) {
	if len(a.secret) == 0 {
		orgID := strings.TrimSpace(r.Header.Get("X-Tenant-Id"))
		if orgID == "" {
			return "", errors.New("X-Tenant-Id header required")
		}
		return orgID, nil
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header required")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("authorization header must be in format 'Bearer <token>'")
	}

	token, err := jwt.Parse(strings.TrimSpace(parts[1]), func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}
	orgID, _ := claims[a.claim].(string)
	if orgID == "" {
		return "", fmt.Errorf("token has no %s claim", a.claim)
	}
	return orgID, nil
}

// Require 包装需要租户身份的 handler
func (a *TenantAuth) Require(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := a.Tenant(r)
		if err != nil {
			a.logger.Debug("Unauthorized request", zap.String("path", r.URL.Path), zap.Error(err))
			writeJSON(w, http.StatusUnauthorized, Fail(err.Error()))
			return
		}
		h(w, r.WithContext(context.WithValue(r.Context(), tenantKey{}, orgID)))
	}
}

// tenantFrom 取 Require 写入的租户 ID
func tenantFrom(r *http.Request) string {
	orgID, _ := r.Context().Value(tenantKey{}).(string)
	return orgID
}
