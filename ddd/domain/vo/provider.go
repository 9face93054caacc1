package vo

import (
	"fmt"
	"strings"
)

// ProviderType 生成服务类型标签，决定使用哪个适配器
type ProviderType string

const (
	// ProviderAvatar 数字人口播（形象+音色，标题+脚本）
	ProviderAvatar ProviderType = "avatar"
	// ProviderText2Video 文生视频（模型、画幅、时长，提示词+参考图）
	ProviderText2Video ProviderType = "text2video"
)

func (p ProviderType) String() string { return string(p) }

// IsValid 检查类型是否受支持
func (p ProviderType) IsValid() bool {
	return p == ProviderAvatar || p == ProviderText2Video
}

// ParseProviderType 解析类型标签
func ParseProviderType(s string) (ProviderType, error) {
	p := ProviderType(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", fmt.Errorf("unknown provider type %q", s)
	}
	return p, nil
}

// GenerationParams 单个视频的生成参数。
// Config 为批量共享配置，Item 字段为单条输入，二者由适配器合并。
type GenerationParams struct {
	Title       string `json:"title,omitempty"`
	Script      string `json:"script,omitempty"`
	Prompt      string `json:"prompt,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	ProductRef  string `json:"product_ref,omitempty"`
	AvatarID    string `json:"avatar_id,omitempty"`
	VoiceID     string `json:"voice_id,omitempty"`
	Model       string `json:"model,omitempty"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
	Duration    int    `json:"duration,omitempty"`
}

// ProviderConfig 批量任务共享的服务参数
type ProviderConfig struct {
	AvatarID    string `json:"avatar_id,omitempty"`
	VoiceID     string `json:"voice_id,omitempty"`
	Model       string `json:"model,omitempty"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
	Duration    int    `json:"duration,omitempty"`
}

// Merge 以共享配置补全单条参数中缺省的字段
func (p GenerationParams) Merge(cfg ProviderConfig) GenerationParams {
	if p.AvatarID == "" {
		p.AvatarID = cfg.AvatarID
	}
	if p.VoiceID == "" {
		p.VoiceID = cfg.VoiceID
	}
	if p.Model == "" {
		p.Model = cfg.Model
	}
	if p.AspectRatio == "" {
		p.AspectRatio = cfg.AspectRatio
	}
	if p.Duration == 0 {
		p.Duration = cfg.Duration
	}
	return p
}

// Validate 按服务类型检查必填字段
func (p GenerationParams) Validate(provider ProviderType) error {
	switch provider {
	case ProviderAvatar:
		if strings.TrimSpace(p.Script) == "" {
			return fmt.Errorf("script is required for avatar videos")
		}
	case ProviderText2Video:
		if strings.TrimSpace(p.Prompt) == "" {
			return fmt.Errorf("prompt is required for text2video videos")
		}
	default:
		return fmt.Errorf("unknown provider type %q", provider)
	}
	return nil
}
