package repo

import "context"

// AccountRepository 读取用户已授权的TikTok账号令牌，刷新流程不在本服务内
type AccountRepository interface {
	GetAccessToken(ctx context.Context, userUUID, accountID string) (string, error)
}
