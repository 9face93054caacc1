package po

import "time"

// TikTokPost 发布记录持久化对象，进度不落库
type TikTokPost struct {
	BaseModel
	PostUUID     string     `gorm:"column:post_uuid;type:varchar(36);uniqueIndex" json:"post_uuid"`
	VideoUUID    string     `gorm:"column:video_uuid;type:varchar(36);index" json:"video_uuid"`
	UserUUID     string     `gorm:"column:user_uuid;type:varchar(36);index" json:"user_uuid"`
	AccountID    string     `gorm:"column:account_id;type:varchar(128)" json:"account_id"`
	Caption      string     `gorm:"column:caption;type:varchar(2200)" json:"caption"`
	Status       string     `gorm:"column:status;type:varchar(20);index" json:"status"` // pending, processing, completed, failed
	PublishID    string     `gorm:"column:publish_id;type:varchar(128);index" json:"publish_id"`
	PublicID     string     `gorm:"column:public_id;type:varchar(128)" json:"public_id"`
	ErrorMessage string     `gorm:"column:error_message;type:text" json:"error_message"`
	PostedAt     *time.Time `gorm:"column:posted_at" json:"posted_at"`
}

// TableName 指定表名
func (TikTokPost) TableName() string {
	return "tiktok_posts"
}

// TikTokAccount 用户授权的TikTok账号，令牌由授权流程写入
type TikTokAccount struct {
	BaseModel
	UserUUID    string     `gorm:"column:user_uuid;type:varchar(36);uniqueIndex:idx_tiktok_accounts_owner,priority:1" json:"user_uuid"`
	AccountID   string     `gorm:"column:account_id;type:varchar(128);uniqueIndex:idx_tiktok_accounts_owner,priority:2" json:"account_id"`
	AccessToken string     `gorm:"column:access_token;type:text" json:"-"`
	ExpiresAt   *time.Time `gorm:"column:expires_at" json:"expires_at"`
}

// TableName 指定表名
func (TikTokAccount) TableName() string {
	return "tiktok_accounts"
}
