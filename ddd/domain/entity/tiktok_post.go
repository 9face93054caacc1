package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"videogen-service/ddd/domain/vo"
	"videogen-service/pkg/errno"
)

// TikTokPost 发布记录，进度由状态推导
type TikTokPost struct {
	postUUID     string
	videoUUID    string
	userUUID     string
	accountID    string
	caption      string
	status       vo.PostStatus
	publishID    string
	publicID     string
	errorMessage string
	postedAt     *time.Time
	createdAt    time.Time
	updatedAt    time.Time
}

// NewTikTokPost 创建待发布记录
func NewTikTokPost(userUUID, videoUUID, accountID, caption string) (*TikTokPost, error) {
	if strings.TrimSpace(userUUID) == "" {
		return nil, errno.ErrUserUUIDRequired
	}
	if strings.TrimSpace(videoUUID) == "" {
		return nil, errno.ErrVideoUUIDRequired
	}
	if strings.TrimSpace(accountID) == "" {
		return nil, errno.ErrAccountRequired
	}
	now := time.Now()
	return &TikTokPost{
		postUUID:  uuid.NewString(),
		videoUUID: videoUUID,
		userUUID:  userUUID,
		accountID: accountID,
		caption:   caption,
		status:    vo.PostStatusPending,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// TikTokPostAttrs 从存储恢复实体时使用
type TikTokPostAttrs struct {
	PostUUID     string
	VideoUUID    string
	UserUUID     string
	AccountID    string
	Caption      string
	Status       vo.PostStatus
	PublishID    string
	PublicID     string
	ErrorMessage string
	PostedAt     *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RestoreTikTokPost 按存储数据重建实体
func RestoreTikTokPost(a TikTokPostAttrs) *TikTokPost {
	return &TikTokPost{
		postUUID:     a.PostUUID,
		videoUUID:    a.VideoUUID,
		userUUID:     a.UserUUID,
		accountID:    a.AccountID,
		caption:      a.Caption,
		status:       a.Status,
		publishID:    a.PublishID,
		publicID:     a.PublicID,
		errorMessage: a.ErrorMessage,
		postedAt:     a.PostedAt,
		createdAt:    a.CreatedAt,
		updatedAt:    a.UpdatedAt,
	}
}

func (p *TikTokPost) PostUUID() string      { return p.postUUID }
func (p *TikTokPost) VideoUUID() string     { return p.videoUUID }
func (p *TikTokPost) UserUUID() string      { return p.userUUID }
func (p *TikTokPost) AccountID() string     { return p.accountID }
func (p *TikTokPost) Caption() string       { return p.caption }
func (p *TikTokPost) Status() vo.PostStatus { return p.status }
func (p *TikTokPost) PublishID() string     { return p.publishID }
func (p *TikTokPost) PublicID() string      { return p.publicID }
func (p *TikTokPost) ErrorMessage() string  { return p.errorMessage }
func (p *TikTokPost) PostedAt() *time.Time  { return p.postedAt }
func (p *TikTokPost) CreatedAt() time.Time  { return p.createdAt }
func (p *TikTokPost) UpdatedAt() time.Time  { return p.updatedAt }

// Progress 纯粹由状态决定
func (p *TikTokPost) Progress() int { return p.status.Progress() }

// ShouldContinuePolling 发布未结束时继续轮询
func (p *TikTokPost) ShouldContinuePolling() bool { return !p.status.IsTerminal() }

// PostTransition 发布记录状态迁移
type PostTransition struct {
	From         []vo.PostStatus
	To           vo.PostStatus
	PublishID    string
	PublicID     string
	ErrorMessage string
	PostedAt     *time.Time
}

// Validate 检查迁移是否在状态表内，失败必须带原因
func (t PostTransition) Validate() error {
	if len(t.From) == 0 {
		return errno.Errorf(errno.ErrInvalidTransition, "no source status for %s", t.To)
	}
	for _, s := range t.From {
		if !s.CanTransitionTo(t.To) {
			return errno.Errorf(errno.ErrInvalidTransition, "%s -> %s is not allowed", s, t.To)
		}
	}
	if t.To == vo.PostStatusFailed && strings.TrimSpace(t.ErrorMessage) == "" {
		return errno.Errorf(errno.ErrInvalidParam, "failed post requires error message")
	}
	return nil
}

// AcceptPost 发布请求已被平台受理
func AcceptPost(publishID string) PostTransition {
	return PostTransition{From: []vo.PostStatus{vo.PostStatusPending}, To: vo.PostStatusProcessing, PublishID: publishID}
}

// RejectPost 发布请求被同步拒绝
func RejectPost(reason string) PostTransition {
	return PostTransition{From: []vo.PostStatus{vo.PostStatusPending}, To: vo.PostStatusFailed, ErrorMessage: reason}
}

// CompletePost 平台发布完成
func CompletePost(publicID string, at time.Time) PostTransition {
	return PostTransition{
		From:     []vo.PostStatus{vo.PostStatusProcessing},
		To:       vo.PostStatusCompleted,
		PublicID: publicID,
		PostedAt: &at,
	}
}

// FailPost 平台发布失败或超时
func FailPost(reason string) PostTransition {
	return PostTransition{From: []vo.PostStatus{vo.PostStatusProcessing}, To: vo.PostStatusFailed, ErrorMessage: reason}
}
