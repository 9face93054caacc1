package cqe

import (
	"strings"

	"videogen-service/ddd/domain/vo"
	"videogen-service/pkg/errno"
)

// CreateVideoReq 创建草稿视频
type CreateVideoReq struct {
	UserUUID    string `json:"-"`
	Provider    string `json:"provider" binding:"required"`
	Title       string `json:"title"`
	Script      string `json:"script"`
	Prompt      string `json:"prompt"`
	ImageURL    string `json:"image_url"`
	ProductRef  string `json:"product_ref"`
	AvatarID    string `json:"avatar_id"`
	VoiceID     string `json:"voice_id"`
	Model       string `json:"model"`
	AspectRatio string `json:"aspect_ratio"`
	Duration    int    `json:"duration"`
}

func (r *CreateVideoReq) Validate() error {
	if strings.TrimSpace(r.UserUUID) == "" {
		return errno.ErrUserUUIDRequired
	}
	provider, err := vo.ParseProviderType(r.Provider)
	if err != nil {
		return errno.NewBizError(errno.ErrUnknownProvider, err)
	}
	if r.Duration < 0 {
		return errno.Errorf(errno.ErrInvalidParam, "duration must not be negative")
	}
	if err := r.Params().Validate(provider); err != nil {
		return errno.NewBizError(errno.ErrInvalidParam, err)
	}
	return nil
}

// ProviderType 已校验的服务类型
func (r *CreateVideoReq) ProviderType() vo.ProviderType {
	p, _ := vo.ParseProviderType(r.Provider)
	return p
}

// Params 转换为生成参数
func (r *CreateVideoReq) Params() vo.GenerationParams {
	return vo.GenerationParams{
		Title:       r.Title,
		Script:      r.Script,
		Prompt:      r.Prompt,
		ImageURL:    r.ImageURL,
		ProductRef:  r.ProductRef,
		AvatarID:    r.AvatarID,
		VoiceID:     r.VoiceID,
		Model:       r.Model,
		AspectRatio: r.AspectRatio,
		Duration:    r.Duration,
	}
}

// VideoActionReq 针对单个视频的操作（派发、取消、查询）
type VideoActionReq struct {
	UserUUID  string
	VideoUUID string
}

func (r *VideoActionReq) Validate() error {
	if strings.TrimSpace(r.UserUUID) == "" {
		return errno.ErrUserUUIDRequired
	}
	if strings.TrimSpace(r.VideoUUID) == "" {
		return errno.ErrVideoUUIDRequired
	}
	return nil
}
