package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"videogen-service/pkg/config"
	"videogen-service/pkg/errno"
	"videogen-service/pkg/restapi"
)

// Claims 访问令牌声明，只关心 user_uuid
type Claims struct {
	UserUUID string `json:"user_uuid"`
	jwt.RegisteredClaims
}

// AuthMiddleware 解析请求方身份。
// 配置了密钥时只接受 Bearer JWT；未配置密钥时信任网关注入的 X-User-UUID。
func AuthMiddleware(cfg config.JWTConfig) gin.HandlerFunc {
	secret := []byte(cfg.Secret)
	return func(c *gin.Context) {
		if len(secret) > 0 {
			header := c.GetHeader("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				restapi.Failed(c, errno.Errorf(errno.ErrUnauthorized, "bearer token required"))
				return
			}
			userUUID, err := parseToken(strings.TrimPrefix(header, "Bearer "), secret, cfg.Issuer)
			if err != nil {
				restapi.Failed(c, errno.NewBizError(errno.ErrUnauthorized, err))
				return
			}
			c.Set(ContextKeyUserUUID, userUUID)
			c.Next()
			return
		}

		userUUID := strings.TrimSpace(c.GetHeader("X-User-UUID"))
		if userUUID == "" {
			restapi.Failed(c, errno.ErrUserUUIDRequired)
			return
		}
		c.Set(ContextKeyUserUUID, userUUID)
		c.Next()
	}
}

func parseToken(tokenString string, secret []byte, issuer string) (string, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, opts...)
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("token is not valid")
	}
	if claims.UserUUID == "" {
		return "", errors.New("token has no user_uuid claim")
	}
	return claims.UserUUID, nil
}
